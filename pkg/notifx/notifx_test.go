package notifx

import (
	"context"
	"strings"
	"testing"

	"github.com/Abraxas-365/leadgate/pkg/errx"
)

type recordingSender struct {
	sent []EmailMessage
}

func (r *recordingSender) SendEmail(_ context.Context, msg EmailMessage) error {
	r.sent = append(r.sent, msg)
	return nil
}

func TestClient_SendTemplatedEmail(t *testing.T) {
	rec := &recordingSender{}
	c := NewClient(rec, Sender{Name: "CipherBC", Address: "noreply@cipherbc.com"})
	if err := c.RegisterTemplate("otp", `<p>Code: <b>{{.Code}}</b></p>`); err != nil {
		t.Fatal(err)
	}

	err := c.SendTemplatedEmail(context.Background(), "otp", map[string]string{"Code": "123456"}, EmailMessage{
		To:       []string{"a@b.com"},
		Subject:  "hi",
		TextBody: "Code: 123456",
	})
	if err != nil {
		t.Fatalf("SendTemplatedEmail: %v", err)
	}

	got := rec.sent[0]
	if !strings.Contains(got.HTMLBody, "<b>123456</b>") || got.TextBody != "Code: 123456" {
		t.Fatalf("bodies = %q / %q", got.HTMLBody, got.TextBody)
	}
	if got.Header() != "CipherBC <noreply@cipherbc.com>" {
		t.Fatalf("Header = %q", got.Header())
	}
}

func TestClient_RejectsInvalidMessages(t *testing.T) {
	c := NewClient(&recordingSender{}, Sender{Address: "noreply@cipherbc.com"})
	cases := []EmailMessage{
		{Subject: "no recipients"},
		{To: []string{"a@b.com"}},
	}
	for _, msg := range cases {
		if err := c.SendEmail(context.Background(), msg); !errx.HasCode(err, ErrInvalidMessage) {
			t.Errorf("SendEmail(%+v) = %v, want INVALID_MESSAGE", msg, err)
		}
	}
}

func TestClient_UnknownTemplate(t *testing.T) {
	c := NewClient(&recordingSender{}, Sender{Address: "x@y.z"})
	err := c.SendTemplatedEmail(context.Background(), "missing", nil, EmailMessage{To: []string{"a@b.com"}, Subject: "s"})
	if !errx.HasCode(err, ErrTemplateNotFound) {
		t.Fatalf("err = %v", err)
	}
}
