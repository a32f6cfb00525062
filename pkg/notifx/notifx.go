package notifx

import (
	"context"
)

// EmailSender sends a single email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

// Client is the main entry point for sending notifications.
type Client struct {
	provider  EmailSender
	sender    Sender
	templates *TemplateRegistry
}

// NewClient creates a new notification client. sender fills in From on
// messages that leave it empty.
func NewClient(provider EmailSender, sender Sender) *Client {
	return &Client{
		provider:  provider,
		sender:    sender,
		templates: NewTemplateRegistry(),
	}
}

// SendEmail sends an email through the configured provider.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage) error {
	if c.provider == nil {
		return notifxErrors.New(ErrNoProvider)
	}
	c.sender.Apply(&msg)
	if len(msg.To) == 0 {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no recipients")
	}
	if msg.Subject == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty subject")
	}
	if msg.From == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no sender")
	}
	return c.provider.SendEmail(ctx, msg)
}

// RegisterTemplate parses and stores a named template for later use.
func (c *Client) RegisterTemplate(name, tmplString string) error {
	return c.templates.Register(name, tmplString)
}

// SendTemplatedEmail renders a template into the HTML body and sends the
// resulting email. A TextBody already on msg is kept.
func (c *Client) SendTemplatedEmail(ctx context.Context, templateName string, data interface{}, msg EmailMessage) error {
	body, err := c.templates.Render(templateName, data)
	if err != nil {
		return err
	}

	msg.HTMLBody = body
	return c.SendEmail(ctx, msg)
}
