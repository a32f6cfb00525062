package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/Abraxas-365/leadgate/pkg/errx"
)

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(false)})
	PostOnly(app, "/echo", func(c *fiber.Ctx) error {
		var v map[string]any
		if err := BindJSON(c, &v); err != nil {
			return err
		}
		return c.JSON(v)
	})
	app.Post("/internal", func(c *fiber.Ctx) error {
		return errx.Wrap(errors.New("pq: connection refused"), "db down", errx.TypeInternal)
	})
	app.Post("/plain", func(c *fiber.Ctx) error { return errors.New("boom") })
	app.Use(NotFound)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var m map[string]any
	json.Unmarshal(raw, &m)
	return resp.StatusCode, m, string(raw)
}

func TestPostOnly(t *testing.T) {
	app := newApp()

	if status, body, _ := do(t, app, "POST", "/echo", `{"a":1}`); status != 200 || body["a"] != float64(1) {
		t.Fatalf("POST = %d %v", status, body)
	}
	if status, _, raw := do(t, app, "OPTIONS", "/echo", ""); status != 200 || raw != "" {
		t.Fatalf("OPTIONS = %d %q", status, raw)
	}
	for _, m := range []string{"GET", "PUT", "DELETE"} {
		status, body, _ := do(t, app, m, "/echo", "")
		if status != 405 || body["error"] != "Method not allowed" {
			t.Fatalf("%s = %d %v", m, status, body)
		}
	}
}

func TestErrorHandler(t *testing.T) {
	app := newApp()

	status, body, _ := do(t, app, "POST", "/echo", `{"a":`)
	if status != 400 || body["code"] != CodeInvalidJSON.Code {
		t.Fatalf("bad json = %d %v", status, body)
	}

	status, body, raw := do(t, app, "POST", "/internal", "")
	if status != 500 || strings.Contains(raw, "connection refused") || body["error"] != genericMessage {
		t.Fatalf("internal = %d %s", status, raw)
	}

	status, body, _ = do(t, app, "POST", "/plain", "")
	if status != 500 || body["error"] != genericMessage {
		t.Fatalf("plain = %d %v", status, body)
	}

	status, _, _ = do(t, app, "GET", "/nope", "")
	if status != 404 {
		t.Fatalf("not found = %d", status)
	}
}

func TestCORS_PreflightIs200(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(cors.Config{AllowOrigins: "*", AllowMethods: "POST, OPTIONS"}))
	PostOnly(app, "/x", func(c *fiber.Ctx) error { return c.SendStatus(200) })

	req := httptest.NewRequest("OPTIONS", "/x", nil)
	req.Header.Set("Origin", "https://cipherbc.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("preflight status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("allow-origin = %q", resp.Header.Get("Access-Control-Allow-Origin"))
	}
}
