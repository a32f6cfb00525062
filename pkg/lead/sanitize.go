package lead

import (
	"strings"
	"time"
)

// Sanitize trims every string, lower-cases the email and stamps id and
// submission time. in must already be valid.
func Sanitize(in *FormInput, id string, now time.Time) *Submission {
	interests := make([]string, 0, len(in.ProductInterest))
	for _, p := range in.ProductInterest {
		if p = strings.TrimSpace(p); p != "" {
			interests = append(interests, p)
		}
	}

	return &Submission{
		ID:              id,
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		CompanyName:     strings.TrimSpace(in.CompanyName),
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:           strings.TrimSpace(in.Phone),
		LinkedinURL:     strings.TrimSpace(in.LinkedinURL),
		Telegram:        strings.TrimSpace(in.Telegram),
		ProductInterest: interests,
		Message:         strings.TrimSpace(in.Message),
		SubmittedAt:     now.UTC(),
		Attribution: Attribution{
			UTMSource:   strings.TrimSpace(in.UTMSource),
			UTMMedium:   strings.TrimSpace(in.UTMMedium),
			UTMCampaign: strings.TrimSpace(in.UTMCampaign),
			UTMTerm:     strings.TrimSpace(in.UTMTerm),
			UTMContent:  strings.TrimSpace(in.UTMContent),
			Referrer:    strings.TrimSpace(in.Referrer),
			LandingPage: strings.TrimSpace(in.LandingPage),
		},
	}
}
