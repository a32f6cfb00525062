package leadinfra

import (
	"context"

	"github.com/Abraxas-365/leadgate/pkg/lead"
	"github.com/Abraxas-365/leadgate/pkg/logx"
)

// LogxAuditSink writes a structured audit line per submission. Contact
// details are masked.
type LogxAuditSink struct{}

func NewLogxAuditSink() *LogxAuditSink {
	return &LogxAuditSink{}
}

func (LogxAuditSink) Record(_ context.Context, s *lead.Submission, crm lead.CRMResult) error {
	logx.WithFields(logx.Fields{
		"audit_event":      "lead_submitted",
		"submission_id":    s.ID,
		"email":            logx.MaskEmail(s.Email),
		"company":          s.CompanyName,
		"product_interest": s.ProductInterest,
		"utm_source":       s.UTMSource,
		"crm_status":       crm.Status,
		"submitted_at":     s.SubmittedAt,
	}).Info("Audit: lead submitted")
	return nil
}
