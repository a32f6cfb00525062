package notifxbrevo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/Abraxas-365/leadgate/pkg/notifx"
)

const DefaultBaseURL = "https://api.brevo.com"

type contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      contact   `json:"sender"`
	To          []contact `json:"to"`
	ReplyTo     *contact  `json:"replyTo,omitempty"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent,omitempty"`
	TextContent string    `json:"textContent,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// BrevoProvider implements notifx.EmailSender with the Brevo v3
// transactional email endpoint.
type BrevoProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewBrevoProvider(apiKey, baseURL string, client *http.Client) *BrevoProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &BrevoProvider{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func toRequest(msg notifx.EmailMessage) sendRequest {
	req := sendRequest{
		Sender:      contact{Name: msg.FromName, Email: msg.From},
		Subject:     msg.Subject,
		HTMLContent: msg.HTMLBody,
		TextContent: msg.TextBody,
	}
	for _, to := range msg.To {
		req.To = append(req.To, contact{Email: to})
	}
	if msg.ReplyTo != "" {
		req.ReplyTo = &contact{Email: msg.ReplyTo}
	}
	for _, v := range msg.Tags {
		req.Tags = append(req.Tags, v)
	}
	sort.Strings(req.Tags)
	return req
}

func (p *BrevoProvider) SendEmail(ctx context.Context, msg notifx.EmailMessage) error {
	body, err := json.Marshal(toRequest(msg))
	if err != nil {
		return notifx.ErrSend("brevo", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return notifx.ErrSend("brevo", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return notifx.ErrSend("brevo", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return notifx.ErrSend("brevo", fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))).
			WithDetail("status", resp.StatusCode)
	}
	return nil
}
