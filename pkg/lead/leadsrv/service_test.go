package leadsrv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/errx"
	"github.com/Abraxas-365/leadgate/pkg/lead"
)

type fakeCRM struct {
	res   lead.CRMResult
	delay time.Duration
	got   *lead.Submission
}

func (f *fakeCRM) UpsertContact(ctx context.Context, s *lead.Submission) lead.CRMResult {
	f.got = s
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
		}
	}
	return f.res
}

type fakeAudit struct {
	crm lead.CRMResult
	sub *lead.Submission
	err error
}

func (f *fakeAudit) Record(_ context.Context, s *lead.Submission, crm lead.CRMResult) error {
	f.sub, f.crm = s, crm
	return f.err
}

func input() *lead.FormInput {
	return &lead.FormInput{
		FirstName: " Ada ",
		LastName:  "Lovelace",
		Email:     "Ada@Example.com",
		Phone:     "+441234567890",
	}
}

func newSubmitter(crm lead.CRM, audit lead.AuditSink) *Submitter {
	s := NewSubmitter(crm, audit, nil, time.Second)
	s.newID = func() string { return "sub-1" }
	s.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestSubmit_ForwardsAndAcks(t *testing.T) {
	crm := &fakeCRM{res: lead.CRMResult{Status: lead.CRMDuplicate}}
	audit := &fakeAudit{}

	ack, err := newSubmitter(crm, audit).Submit(context.Background(), input())
	if err != nil {
		t.Fatal(err)
	}
	if *ack != (lead.Ack{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}) {
		t.Fatalf("ack = %+v", ack)
	}
	if crm.got.ID != "sub-1" || audit.sub != crm.got {
		t.Fatal("CRM and audit should see the same sanitized submission")
	}
	if audit.crm.Status != lead.CRMDuplicate {
		t.Fatalf("audit crm = %+v", audit.crm)
	}
}

func TestSubmit_DownstreamFailuresAreNonFatal(t *testing.T) {
	crm := &fakeCRM{res: lead.CRMResult{Status: lead.CRMError, Detail: "500"}}
	audit := &fakeAudit{err: errors.New("webhook down")}

	if _, err := newSubmitter(crm, audit).Submit(context.Background(), input()); err != nil {
		t.Fatalf("downstream failure surfaced: %v", err)
	}
}

func TestSubmit_CRMTimeout(t *testing.T) {
	crm := &fakeCRM{delay: time.Second, res: lead.CRMResult{Status: lead.CRMSuccess}}
	audit := &fakeAudit{}
	s := newSubmitter(crm, audit)
	s.timeout = 10 * time.Millisecond

	if _, err := s.Submit(context.Background(), input()); err != nil {
		t.Fatal(err)
	}
	if audit.crm.Status != lead.CRMError {
		t.Fatalf("timed-out CRM status = %s, want error", audit.crm.Status)
	}
}

func TestSubmit_NoCRMConfigured(t *testing.T) {
	audit := &fakeAudit{}
	if _, err := newSubmitter(nil, audit).Submit(context.Background(), input()); err != nil {
		t.Fatal(err)
	}
	if audit.crm.Status != lead.CRMSkipped {
		t.Fatalf("status = %s", audit.crm.Status)
	}
}

func TestSubmit_Invalid(t *testing.T) {
	crm := &fakeCRM{}
	in := input()
	in.Phone = "1234567890"

	_, err := newSubmitter(crm, nil).Submit(context.Background(), in)
	if !errx.HasCode(err, lead.CodeValidationFailed) {
		t.Fatalf("err = %v", err)
	}
	if crm.got != nil {
		t.Fatal("invalid submissions must not be forwarded")
	}
}
