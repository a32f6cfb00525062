package notifx

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	From     string            `json:"from"`
	FromName string            `json:"from_name,omitempty"`
	To       []string          `json:"to"`
	ReplyTo  string            `json:"reply_to,omitempty"`
	Subject  string            `json:"subject"`
	TextBody string            `json:"text_body,omitempty"`
	HTMLBody string            `json:"html_body,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// Sender is a display name plus address.
type Sender struct {
	Name    string
	Address string
}

// Apply fills From/FromName on msg when unset.
func (s Sender) Apply(msg *EmailMessage) {
	if msg.From == "" {
		msg.From = s.Address
	}
	if msg.FromName == "" {
		msg.FromName = s.Name
	}
}

// Header renders the sender as `Name <address>`.
func (m EmailMessage) Header() string {
	if m.FromName == "" {
		return m.From
	}
	return m.FromName + " <" + m.From + ">"
}
