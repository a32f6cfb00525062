package leadapi

import (
	"context"

	"github.com/Abraxas-365/leadgate/pkg/httpx"
	"github.com/Abraxas-365/leadgate/pkg/lead"
	"github.com/gofiber/fiber/v2"
)

type Submitter interface {
	Submit(ctx context.Context, in *lead.FormInput) (*lead.Ack, error)
}

type Handlers struct {
	submitter Submitter
}

func NewHandlers(submitter Submitter) *Handlers {
	return &Handlers{submitter: submitter}
}

func (h *Handlers) RegisterRoutes(r fiber.Router, mw ...fiber.Handler) {
	handlers := append(append([]fiber.Handler{}, mw...), h.SubmitForm)
	httpx.PostOnly(r, "/submit-form", handlers...)
}

func (h *Handlers) SubmitForm(c *fiber.Ctx) error {
	var in lead.FormInput
	if err := httpx.BindJSON(c, &in); err != nil {
		return err
	}

	ack, err := h.submitter.Submit(httpx.Context(c), &in)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Form submitted successfully",
		"data":    ack,
	})
}
