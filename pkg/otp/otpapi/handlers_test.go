package otpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/leadgate/pkg/httpx"
	"github.com/Abraxas-365/leadgate/pkg/kernel"
	"github.com/Abraxas-365/leadgate/pkg/otp/otpsrv"
	"github.com/Abraxas-365/leadgate/pkg/otp/otptoken"
	"github.com/Abraxas-365/leadgate/pkg/ratelimit"
)

type captureMailer struct{ code string }

func (m *captureMailer) SendOTP(_ context.Context, _ kernel.Email, code string) error {
	m.code = code
	return nil
}

func newApp(max int) (*fiber.App, *captureMailer) {
	codec := otptoken.NewEnvelopeCodec("test-secret")
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Policy{Window: time.Hour, Max: max})
	mailer := &captureMailer{}

	issuer := otpsrv.NewIssuer(limiter, codec, mailer, nil, otpsrv.IssuerConfig{TTL: 5 * time.Minute, OutboundTimeout: time.Second})
	verifier := otpsrv.NewVerifier(codec, nil, nil)

	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(false)})
	NewHandlers(issuer, verifier).RegisterRoutes(app.Group("/api"))
	return app, mailer
}

func post(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
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

func TestSendAndVerify(t *testing.T) {
	app, mailer := newApp(10)

	status, body := post(t, app, "/api/send-otp", `{"email":"a@b.com"}`)
	if status != 200 || body["success"] != true || body["expiresIn"] != float64(300) {
		t.Fatalf("send = %d %v", status, body)
	}
	token := body["token"].(string)

	status, body = post(t, app, "/api/verify-otp", `{"email":"A@B.COM","otp":"`+mailer.code+`","token":"`+token+`"}`)
	if status != 200 || body["valid"] != true {
		t.Fatalf("verify = %d %v", status, body)
	}

	status, body = post(t, app, "/api/verify-otp", `{"email":"a@b.com","otp":"12345","token":"`+token+`"}`)
	if status != 400 || body["valid"] != false || body["error"] != "Invalid OTP format. OTP must be 6 digits." {
		t.Fatalf("malformed = %d %v", status, body)
	}
}

func TestSendOTP_Errors(t *testing.T) {
	app, _ := newApp(1)

	if status, body := post(t, app, "/api/send-otp", `{"email":"nope"}`); status != 400 || body["error"] != "Invalid email address" {
		t.Fatalf("invalid email = %d %v", status, body)
	}
	if status, _ := post(t, app, "/api/send-otp", `not json`); status != 400 {
		t.Fatalf("bad json = %d", status)
	}

	post(t, app, "/api/send-otp", `{"email":"a@b.com"}`)
	status, body := post(t, app, "/api/send-otp", `{"email":"a@b.com"}`)
	if status != 429 || !strings.HasPrefix(body["error"].(string), "Too many OTP requests") {
		t.Fatalf("rate limited = %d %v", status, body)
	}
	if body["retry_after_minutes"] != float64(60) {
		t.Fatalf("retry_after_minutes = %v", body["retry_after_minutes"])
	}
}

func TestMethods(t *testing.T) {
	app, _ := newApp(10)

	resp, _ := app.Test(httptest.NewRequest("OPTIONS", "/api/send-otp", nil))
	if resp.StatusCode != 200 {
		t.Fatalf("OPTIONS = %d", resp.StatusCode)
	}
	resp, _ = app.Test(httptest.NewRequest("GET", "/api/verify-otp", nil))
	if resp.StatusCode != 405 {
		t.Fatalf("GET = %d", resp.StatusCode)
	}
}
