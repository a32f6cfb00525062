package leadapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/leadgate/pkg/httpx"
	"github.com/Abraxas-365/leadgate/pkg/lead"
	"github.com/Abraxas-365/leadgate/pkg/lead/leadsrv"
)

type failingCRM struct{}

func (failingCRM) UpsertContact(context.Context, *lead.Submission) lead.CRMResult {
	return lead.CRMResult{Status: lead.CRMError, Detail: "hubspot down"}
}

type failingSink struct{}

func (failingSink) Record(context.Context, *lead.Submission, lead.CRMResult) error {
	return errors.New("webhook down")
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(false)})
	NewHandlers(leadsrv.NewSubmitter(failingCRM{}, failingSink{}, nil, time.Second)).RegisterRoutes(app.Group("/api"))
	return app
}

func post(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/submit-form", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestSubmitForm_DownstreamFailuresStillAcknowledged(t *testing.T) {
	status, body := post(t, newApp(), `{"firstName":" Ada ","lastName":"Lovelace","email":"Ada@Example.com","phone":"+44 20 7946 0958"}`)
	if status != 200 || body["success"] != true || body["message"] != "Form submitted successfully" {
		t.Fatalf("submit = %d %v", status, body)
	}
	data := body["data"].(map[string]any)
	if data["firstName"] != "Ada" || data["email"] != "ada@example.com" || data["lastName"] != "Lovelace" {
		t.Fatalf("data = %v", data)
	}
}

func TestSubmitForm_ValidationListsEveryViolation(t *testing.T) {
	status, body := post(t, newApp(), `{"firstName":"A","email":"bad","phone":"123","linkedinUrl":"https://example.com"}`)
	if status != 400 {
		t.Fatalf("status = %d", status)
	}
	errs, _ := body["errors"].([]any)
	if len(errs) != 4 {
		t.Fatalf("errors = %v", body["errors"])
	}
	if !strings.HasPrefix(body["error"].(string), "Validation failed: ") {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestSubmitForm_Methods(t *testing.T) {
	app := newApp()
	if status, _ := post(t, app, `{`); status != 400 {
		t.Fatalf("bad json = %d", status)
	}
	resp, _ := app.Test(httptest.NewRequest("PUT", "/api/submit-form", nil))
	if resp.StatusCode != 405 {
		t.Fatalf("PUT = %d", resp.StatusCode)
	}
}
