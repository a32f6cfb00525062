package leadinfra

import (
	"context"
	"errors"

	"github.com/Abraxas-365/leadgate/pkg/asyncx"
	"github.com/Abraxas-365/leadgate/pkg/lead"
)

// MultiSink fans a record out to every sink concurrently and joins the
// failures.
type MultiSink []lead.AuditSink

func (m MultiSink) Record(ctx context.Context, s *lead.Submission, crm lead.CRMResult) error {
	fns := make([]func(context.Context) (struct{}, error), len(m))
	for i, sink := range m {
		fns[i] = func(ctx context.Context) (struct{}, error) {
			return struct{}{}, sink.Record(ctx, s, crm)
		}
	}

	var errs []error
	for _, r := range asyncx.AllSettled(ctx, fns...) {
		if !r.OK() {
			errs = append(errs, r.Err)
		}
	}
	return errors.Join(errs...)
}
