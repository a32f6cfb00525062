package notifxsmtp

import (
	"context"

	"github.com/Abraxas-365/leadgate/pkg/notifx"
	"gopkg.in/gomail.v2"
)

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	Dial() (gomail.SendCloser, error)
}

// SMTPProvider implements notifx.EmailSender over plain SMTP.
type SMTPProvider struct {
	dialer Dialer
}

func NewSMTPProvider(host string, port int, user, pass string) *SMTPProvider {
	return &SMTPProvider{dialer: gomail.NewDialer(host, port, user, pass)}
}

// NewWithDialer is used by tests.
func NewWithDialer(d Dialer) *SMTPProvider {
	return &SMTPProvider{dialer: d}
}

func buildMessage(msg notifx.EmailMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", msg.From, msg.FromName)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.TextBody)
	}
	return m
}

// SendEmail dials per message. gomail takes no context, so ctx is checked
// again once the connection is up and nothing is sent if it ended while
// dialing. A message already handed to the server is not recalled.
func (p *SMTPProvider) SendEmail(ctx context.Context, msg notifx.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return notifx.ErrSend("smtp", err)
	}
	sc, err := p.dialer.Dial()
	if err != nil {
		return notifx.ErrSend("smtp", err)
	}
	defer sc.Close()

	if err := ctx.Err(); err != nil {
		return notifx.ErrSend("smtp", err)
	}
	if err := gomail.Send(sc, buildMessage(msg)); err != nil {
		return notifx.ErrSend("smtp", err)
	}
	return nil
}
