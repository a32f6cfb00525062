package otpinfra

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/kernel"
	"github.com/Abraxas-365/leadgate/pkg/notifx"
)

const otpTemplate = "otp_email"

//go:embed templates/otp_email.html
var otpEmailHTML string

type otpEmailData struct {
	Code             string
	ExpiresInMinutes int
	Year             int
	SenderName       string
}

// NotifxMailer delivers OTP codes through a notifx.Client.
type NotifxMailer struct {
	client     *notifx.Client
	senderName string
	ttl        time.Duration
	now        func() time.Time
}

func NewNotifxMailer(client *notifx.Client, senderName string, ttl time.Duration) (*NotifxMailer, error) {
	if err := client.RegisterTemplate(otpTemplate, otpEmailHTML); err != nil {
		return nil, err
	}
	return &NotifxMailer{client: client, senderName: senderName, ttl: ttl, now: time.Now}, nil
}

func (m *NotifxMailer) SendOTP(ctx context.Context, email kernel.Email, code string) error {
	minutes := int(m.ttl / time.Minute)
	data := otpEmailData{
		Code:             code,
		ExpiresInMinutes: minutes,
		Year:             m.now().Year(),
		SenderName:       m.senderName,
	}

	return m.client.SendTemplatedEmail(ctx, otpTemplate, data, notifx.EmailMessage{
		To:      []string{email.String()},
		Subject: "Your verification code is " + code,
		TextBody: fmt.Sprintf(
			"Your verification code is: %s. This code will expire in %d minutes. Do not share this code with anyone.",
			code, minutes),
		Tags: map[string]string{"category": "otp"},
	})
}
