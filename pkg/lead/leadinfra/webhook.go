package leadinfra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/asyncx"
	"github.com/Abraxas-365/leadgate/pkg/errx"
	"github.com/Abraxas-365/leadgate/pkg/lead"
)

const webhookSource = "otp-form"

// AuditRecord is the document written by every audit sink.
type AuditRecord struct {
	*lead.Submission
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	CRM       lead.CRMResult `json:"crm"`
}

func newAuditRecord(s *lead.Submission, crm lead.CRMResult, now time.Time) AuditRecord {
	return AuditRecord{Submission: s, Timestamp: now.UTC(), Source: webhookSource, CRM: crm}
}

// WebhookSink posts each audit record to a URL. 5xx and transport errors
// are retried, other statuses are not.
type WebhookSink struct {
	url      string
	client   *http.Client
	attempts int
	backoff  time.Duration
	now      func() time.Time
}

func NewWebhookSink(url string, client *http.Client) *WebhookSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookSink{url: url, client: client, attempts: 3, backoff: 200 * time.Millisecond, now: time.Now}
}

func (w *WebhookSink) Record(ctx context.Context, s *lead.Submission, crm lead.CRMResult) error {
	body, err := json.Marshal(newAuditRecord(s, crm, w.now()))
	if err != nil {
		return errx.Wrap(err, "failed to encode webhook payload", errx.TypeInternal)
	}

	_, err = asyncx.RetryWithBackoff(ctx, w.attempts, w.backoff, func(ctx context.Context) (int, error) {
		return w.post(ctx, body)
	})
	if err != nil {
		return errx.Wrap(err, "webhook delivery failed", errx.TypeExternal).WithDetail("submission_id", s.ID)
	}
	return nil
}

func (w *WebhookSink) post(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return 0, &asyncx.Permanent{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode/100 == 2:
		return resp.StatusCode, nil
	case resp.StatusCode >= 500:
		return resp.StatusCode, fmt.Errorf("webhook returned %d", resp.StatusCode)
	default:
		return resp.StatusCode, &asyncx.Permanent{Err: fmt.Errorf("webhook returned %d", resp.StatusCode)}
	}
}
