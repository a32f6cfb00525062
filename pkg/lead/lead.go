package lead

import (
	"time"
)

// FormInput is the submit-form request body as received.
type FormInput struct {
	FirstName       string   `json:"firstName" validate:"minname"`
	LastName        string   `json:"lastName"`
	CompanyName     string   `json:"companyName"`
	Email           string   `json:"email" validate:"leademail"`
	Phone           string   `json:"phone" validate:"phoneplus,phonecountry,phonelen"`
	LinkedinURL     string   `json:"linkedinUrl" validate:"linkedin"`
	Telegram        string   `json:"telegram"`
	ProductInterest []string `json:"productInterest"`
	Message         string   `json:"message"`

	Attribution
}

// Attribution carries optional campaign parameters captured by the embed.
type Attribution struct {
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMTerm     string `json:"utm_term,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
	LandingPage string `json:"landingPage,omitempty"`
}

// Submission is a validated, sanitized form. It is forwarded and never
// stored by the service itself.
type Submission struct {
	ID              string    `json:"submissionId"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	CompanyName     string    `json:"companyName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	LinkedinURL     string    `json:"linkedinUrl"`
	Telegram        string    `json:"telegram"`
	ProductInterest []string  `json:"productInterest"`
	Message         string    `json:"message"`
	SubmittedAt     time.Time `json:"submittedAt"`

	Attribution
}

// Ack is returned to the client on success.
type Ack struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (s *Submission) Ack() Ack {
	return Ack{FirstName: s.FirstName, LastName: s.LastName, Email: s.Email}
}

type CRMStatus string

const (
	CRMSuccess   CRMStatus = "success"
	CRMDuplicate CRMStatus = "duplicate"
	CRMError     CRMStatus = "error"
	CRMSkipped   CRMStatus = "skipped"
)

// CRMResult is the outcome of forwarding a submission. It never fails the
// submission.
type CRMResult struct {
	Status    CRMStatus `json:"status"`
	Method    string    `json:"method,omitempty"`
	ContactID string    `json:"contactId,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}
