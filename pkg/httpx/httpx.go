// Package httpx holds the Fiber glue shared by every API module: error
// rendering, body binding and the POST-only route shape.
package httpx

import (
	"context"
	"net/http"

	"github.com/Abraxas-365/leadgate/pkg/errx"
	"github.com/Abraxas-365/leadgate/pkg/kernel"
	"github.com/Abraxas-365/leadgate/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const RequestIDHeader = "X-Request-ID"

var httpErrors = errx.NewRegistry("HTTP")

var (
	CodeInvalidJSON      = httpErrors.Register("INVALID_JSON", errx.TypeValidation, http.StatusBadRequest, "Invalid JSON body")
	CodeMethodNotAllowed = httpErrors.Register("METHOD_NOT_ALLOWED", errx.TypeValidation, http.StatusMethodNotAllowed, "Method not allowed")
	CodeNotFound         = httpErrors.Register("NOT_FOUND", errx.TypeValidation, http.StatusNotFound, "Route not found")
)

const genericMessage = "An unexpected error occurred. Please try again."

// BindJSON decodes the request body into v whatever the Content-Type.
func BindJSON(c *fiber.Ctx, v any) error {
	if err := c.App().Config().JSONDecoder(c.Body(), v); err != nil {
		return httpErrors.NewWithCause(CodeInvalidJSON, err)
	}
	return nil
}

// MethodNotAllowed answers every method a route does not serve.
func MethodNotAllowed(c *fiber.Ctx) error {
	return httpErrors.New(CodeMethodNotAllowed)
}

// NotFound is the terminal handler for unmatched paths.
func NotFound(c *fiber.Ctx) error {
	return httpErrors.New(CodeNotFound).WithDetail("path", c.Path())
}

// Preflight answers OPTIONS with 200 and an empty body. CORS headers are
// set by the cors middleware ahead of it.
func Preflight(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodOptions {
		return c.Next()
	}
	c.Status(fiber.StatusOK)
	return c.Send(nil)
}

// CORS wraps the cors middleware so preflight answers 200 instead of 204.
func CORS(cfg cors.Config) fiber.Handler {
	mw := cors.New(cfg)
	return func(c *fiber.Ctx) error {
		err := mw(c)
		if c.Method() == fiber.MethodOptions && c.Response().StatusCode() == fiber.StatusNoContent {
			c.Status(fiber.StatusOK)
		}
		return err
	}
}

// Context returns the request's user context carrying the request id set by
// the requestid middleware.
func Context(c *fiber.Ctx) context.Context {
	id, _ := c.Locals("requestid").(string)
	return kernel.WithRequestID(c.UserContext(), id)
}

// PostOnly mounts handlers at path with OPTIONS answered by Preflight and
// every other method rejected with 405.
func PostOnly(r fiber.Router, path string, handlers ...fiber.Handler) {
	r.Post(path, handlers...)
	r.Options(path, Preflight)
	r.All(path, MethodNotAllowed)
}

// ErrorHandler renders *errx.Error bodies. Internal errors and anything
// else become a generic 500; debug adds the underlying cause.
func ErrorHandler(debug bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		requestID := c.GetRespHeader(RequestIDHeader, c.Get(RequestIDHeader))
		log := logx.WithFields(logx.Fields{
			"path":       c.Path(),
			"method":     c.Method(),
			"ip":         c.IP(),
			"request_id": requestID,
		})

		var fe *fiber.Error
		if errx.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error":      fe.Message,
				"request_id": requestID,
			})
		}

		var e *errx.Error
		if !errx.As(err, &e) {
			log.WithError(err).Error("unhandled request error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":      genericMessage,
				"code":       "INTERNAL_ERROR",
				"request_id": requestID,
			})
		}

		status := e.Status()
		body := e.Body()
		if e.Type == errx.TypeInternal {
			log.WithError(err).Error("internal error")
			body = map[string]interface{}{"error": genericMessage, "code": e.Code}
		} else if status >= 500 {
			log.WithError(err).Error("request failed")
		} else {
			log.WithField("code", e.Code).Debug("request rejected")
		}

		if debug && e.Err != nil {
			body["underlying_error"] = e.Err.Error()
		}
		body["request_id"] = requestID
		return c.Status(status).JSON(body)
	}
}
