package notifxconsole

import (
	"context"

	"github.com/Abraxas-365/leadgate/pkg/logx"
	"github.com/Abraxas-365/leadgate/pkg/notifx"
)

// ConsoleProvider prints emails to the terminal via logx. Intended for development and testing.
type ConsoleProvider struct{}

// NewConsoleProvider creates a new console email provider.
func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{}
}

// SendEmail logs the email details instead of sending it. Subject and body
// may carry a code, so they only appear at DEBUG.
func (p *ConsoleProvider) SendEmail(_ context.Context, msg notifx.EmailMessage) error {
	masked := make([]string, len(msg.To))
	for i, to := range msg.To {
		masked[i] = logx.MaskEmail(to)
	}

	logx.WithFields(logx.Fields{
		"from": msg.Header(),
		"to":   masked,
	}).Info("notifx/console: email sent (dev mode)")

	logx.Debugf("notifx/console: subject: %s", msg.Subject)
	if msg.TextBody != "" {
		logx.Debugf("notifx/console: text body:\n%s", msg.TextBody)
	}
	return nil
}
