package notifxresend

import (
	"context"

	"github.com/Abraxas-365/leadgate/pkg/notifx"
	"github.com/resend/resend-go/v2"
)

// ResendProvider implements notifx.EmailSender with the Resend API.
type ResendProvider struct {
	client *resend.Client
}

func NewResendProvider(apiKey string) *ResendProvider {
	return &ResendProvider{client: resend.NewClient(apiKey)}
}

func toRequest(msg notifx.EmailMessage) *resend.SendEmailRequest {
	req := &resend.SendEmailRequest{
		From:    msg.Header(),
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		Text:    msg.TextBody,
		ReplyTo: msg.ReplyTo,
	}
	for k, v := range msg.Tags {
		req.Tags = append(req.Tags, resend.Tag{Name: k, Value: v})
	}
	return req
}

func (p *ResendProvider) SendEmail(ctx context.Context, msg notifx.EmailMessage) error {
	if _, err := p.client.Emails.SendWithContext(ctx, toRequest(msg)); err != nil {
		return notifx.ErrSend("resend", err)
	}
	return nil
}
