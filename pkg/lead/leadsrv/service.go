package leadsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/asyncx"
	"github.com/Abraxas-365/leadgate/pkg/kernel"
	"github.com/Abraxas-365/leadgate/pkg/lead"
	"github.com/Abraxas-365/leadgate/pkg/logx"
	"github.com/Abraxas-365/leadgate/pkg/metricx"
	"github.com/google/uuid"
)

// Submitter validates a form and forwards it. Forwarding is best effort:
// once validation passes the caller always gets an Ack.
type Submitter struct {
	validator *lead.Validator
	crm       lead.CRM
	audit     lead.AuditSink
	metrics   *metricx.Metrics
	timeout   time.Duration
	now       func() time.Time
	newID     func() string
}

// NewSubmitter accepts nil crm and audit.
func NewSubmitter(crm lead.CRM, audit lead.AuditSink, metrics *metricx.Metrics, outboundTimeout time.Duration) *Submitter {
	return &Submitter{
		validator: lead.NewValidator(),
		crm:       crm,
		audit:     audit,
		metrics:   metrics,
		timeout:   outboundTimeout,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *Submitter) Submit(ctx context.Context, in *lead.FormInput) (*lead.Ack, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	sub := lead.Sanitize(in, s.newID(), s.now())
	log := logx.WithFields(logx.Fields{
		"submission_id": sub.ID,
		"email":         logx.MaskEmail(sub.Email),
		"request_id":    kernel.RequestID(ctx),
	})
	log.Info("form submission received")

	crm := s.forward(ctx, sub)
	if crm.Status == lead.CRMError {
		log.WithField("detail", crm.Detail).Warn("CRM forwarding failed, form accepted")
	}

	if s.audit != nil {
		_, err := asyncx.WithTimeout(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.audit.Record(ctx, sub, crm)
		})
		if err != nil {
			log.WithError(err).Warn("audit sink failed, form accepted")
		}
	}

	s.metrics.LeadSubmitted(string(crm.Status))
	ack := sub.Ack()
	return &ack, nil
}

func (s *Submitter) forward(ctx context.Context, sub *lead.Submission) lead.CRMResult {
	if s.crm == nil {
		return lead.CRMResult{Status: lead.CRMSkipped}
	}
	res, err := asyncx.WithTimeout(ctx, s.timeout, func(ctx context.Context) (lead.CRMResult, error) {
		return s.crm.UpsertContact(ctx, sub), nil
	})
	if err != nil {
		return lead.CRMResult{Status: lead.CRMError, Detail: err.Error()}
	}
	return res
}
