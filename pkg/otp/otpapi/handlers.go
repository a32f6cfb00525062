package otpapi

import (
	"context"

	"github.com/Abraxas-365/leadgate/pkg/errx"
	"github.com/Abraxas-365/leadgate/pkg/httpx"
	"github.com/Abraxas-365/leadgate/pkg/otp"
	"github.com/gofiber/fiber/v2"
)

type Issuer interface {
	Issue(ctx context.Context, rawEmail string) (*otp.Issued, error)
}

type Verifier interface {
	Verify(ctx context.Context, rawEmail, rawCode, token string) error
}

type Handlers struct {
	issuer   Issuer
	verifier Verifier
}

func NewHandlers(issuer Issuer, verifier Verifier) *Handlers {
	return &Handlers{issuer: issuer, verifier: verifier}
}

// RegisterRoutes mounts send-otp and verify-otp on r. mw runs before both
// (the IP throttle in production).
func (h *Handlers) RegisterRoutes(r fiber.Router, mw ...fiber.Handler) {
	httpx.PostOnly(r, "/send-otp", chain(mw, h.SendOTP)...)
	httpx.PostOnly(r, "/verify-otp", chain(mw, h.VerifyOTP)...)
}

func chain(mw []fiber.Handler, h fiber.Handler) []fiber.Handler {
	return append(append([]fiber.Handler{}, mw...), h)
}

type sendRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
	Token string `json:"token"`
}

func (h *Handlers) SendOTP(c *fiber.Ctx) error {
	var req sendRequest
	if err := httpx.BindJSON(c, &req); err != nil {
		return err
	}

	issued, err := h.issuer.Issue(httpx.Context(c), req.Email)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "OTP sent successfully",
		"token":     issued.Token,
		"expiresIn": issued.ExpiresIn,
	})
}

func (h *Handlers) VerifyOTP(c *fiber.Ctx) error {
	var req verifyRequest
	if err := httpx.BindJSON(c, &req); err != nil {
		return err
	}

	if err := h.verifier.Verify(httpx.Context(c), req.Email, req.OTP, req.Token); err != nil {
		var e *errx.Error
		if errx.As(err, &e) && e.Status() < 500 {
			return e.WithDetail("valid", false)
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"valid":   true,
		"message": "OTP verified successfully",
	})
}
