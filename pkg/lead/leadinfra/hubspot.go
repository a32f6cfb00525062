package leadinfra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Abraxas-365/leadgate/pkg/lead"
	"github.com/Abraxas-365/leadgate/pkg/logx"
)

// HubSpotConfig selects the Forms API when PortalID and FormGUID are set,
// else the Contacts API when AccessToken is set.
type HubSpotConfig struct {
	PortalID     string
	FormGUID     string
	AccessToken  string
	FormsBaseURL string
	APIBaseURL   string
	PageURI      string
	PageName     string
}

// HubSpotCRM implements lead.CRM.
type HubSpotCRM struct {
	cfg    HubSpotConfig
	client *http.Client
}

func NewHubSpotCRM(cfg HubSpotConfig, client *http.Client) *HubSpotCRM {
	if client == nil {
		client = http.DefaultClient
	}
	cfg.FormsBaseURL = strings.TrimRight(cfg.FormsBaseURL, "/")
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return &HubSpotCRM{cfg: cfg, client: client}
}

type formField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type formContext struct {
	PageURI  string `json:"pageUri"`
	PageName string `json:"pageName"`
}

type formPayload struct {
	Fields  []formField `json:"fields"`
	Context formContext `json:"context"`
}

type contactPayload struct {
	Properties map[string]string `json:"properties"`
}

func (h *HubSpotCRM) UpsertContact(ctx context.Context, s *lead.Submission) lead.CRMResult {
	var res lead.CRMResult
	switch {
	case h.cfg.PortalID != "" && h.cfg.FormGUID != "":
		res = h.submitForm(ctx, s)
	case h.cfg.AccessToken != "":
		res = h.createContact(ctx, s)
	default:
		return lead.CRMResult{Status: lead.CRMSkipped, Detail: "no HubSpot configuration"}
	}

	entry := logx.WithFields(logx.Fields{
		"submission_id": s.ID,
		"method":        res.Method,
		"crm_status":    res.Status,
	})
	if res.Status == lead.CRMError {
		entry.WithField("detail", res.Detail).Warn("HubSpot submission failed, form accepted")
	} else {
		entry.Info("HubSpot submission completed")
	}
	return res
}

func (h *HubSpotCRM) submitForm(ctx context.Context, s *lead.Submission) lead.CRMResult {
	fields := []formField{
		{"firstname", s.FirstName},
		{"lastname", s.LastName},
		{"email", s.Email},
		{"phone", s.Phone},
		{"company", s.CompanyName},
		{"message", s.Message},
	}
	fields = append(fields, optionalProperties(s)...)

	url := fmt.Sprintf("%s/submissions/v3/integration/submit/%s/%s", h.cfg.FormsBaseURL, h.cfg.PortalID, h.cfg.FormGUID)
	payload := formPayload{
		Fields:  fields,
		Context: formContext{PageURI: h.cfg.PageURI, PageName: h.cfg.PageName},
	}
	res, _ := h.post(ctx, url, "", payload)
	res.Method = "forms-api"
	return res
}

func (h *HubSpotCRM) createContact(ctx context.Context, s *lead.Submission) lead.CRMResult {
	lastName := s.LastName
	if lastName == "" {
		lastName = s.FirstName
	}
	props := map[string]string{
		"firstname":      s.FirstName,
		"lastname":       lastName,
		"email":          s.Email,
		"phone":          s.Phone,
		"company":        s.CompanyName,
		"message":        s.Message,
		"hs_lead_status": "NEW",
		"lifecyclestage": "lead",
	}
	for _, f := range optionalProperties(s) {
		props[f.Name] = f.Value
	}

	res, body := h.post(ctx, h.cfg.APIBaseURL+"/crm/v3/objects/contacts", h.cfg.AccessToken, contactPayload{Properties: props})
	res.Method = "contacts-api"
	if res.Status == lead.CRMSuccess {
		var created struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(body, &created) == nil {
			res.ContactID = created.ID
		}
	}
	return res
}

func optionalProperties(s *lead.Submission) []formField {
	var out []formField
	if s.LinkedinURL != "" {
		out = append(out, formField{"linkedin_url", s.LinkedinURL})
	}
	if s.Telegram != "" {
		out = append(out, formField{"telegram", s.Telegram})
	}
	if len(s.ProductInterest) > 0 {
		out = append(out, formField{"product_interest", strings.Join(s.ProductInterest, ", ")})
	}
	return out
}

// post maps 2xx to Success, 409 to Duplicate and everything else to Error.
func (h *HubSpotCRM) post(ctx context.Context, url, bearer string, payload any) (lead.CRMResult, []byte) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return lead.CRMResult{Status: lead.CRMError, Detail: err.Error()}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return lead.CRMResult{Status: lead.CRMError, Detail: err.Error()}, nil
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return lead.CRMResult{Status: lead.CRMError, Detail: err.Error()}, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode/100 == 2:
		return lead.CRMResult{Status: lead.CRMSuccess}, body
	case resp.StatusCode == http.StatusConflict:
		return lead.CRMResult{Status: lead.CRMDuplicate, Detail: "contact already exists"}, body
	default:
		return lead.CRMResult{
			Status: lead.CRMError,
			Detail: fmt.Sprintf("HubSpot returned %d: %s", resp.StatusCode, bytes.TrimSpace(body)),
		}, body
	}
}
