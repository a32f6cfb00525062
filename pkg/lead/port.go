package lead

import "context"

// CRM forwards a submission to the sales system.
type CRM interface {
	UpsertContact(ctx context.Context, s *Submission) CRMResult
}

// AuditSink records a submission with its CRM outcome. Errors are logged
// by the caller only.
type AuditSink interface {
	Record(ctx context.Context, s *Submission, crm CRMResult) error
}
