package otp

import (
	"fmt"
	"net/http"

	"github.com/Abraxas-365/leadgate/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("OTP")

var (
	CodeInvalidEmail        = ErrRegistry.Register("INVALID_EMAIL", errx.TypeValidation, http.StatusBadRequest, "Invalid email address")
	CodeRateLimited         = ErrRegistry.Register("RATE_LIMITED", errx.TypeRateLimit, http.StatusTooManyRequests, "Too many OTP requests")
	CodeEmailDeliveryFailed = ErrRegistry.Register("EMAIL_DELIVERY_FAILED", errx.TypeExternal, http.StatusInternalServerError, "Failed to send email. Please try again.")
	CodeMissingFields       = ErrRegistry.Register("MISSING_FIELDS", errx.TypeValidation, http.StatusBadRequest, "Email, OTP and token are required")
	CodeMalformedCode       = ErrRegistry.Register("MALFORMED_CODE", errx.TypeValidation, http.StatusBadRequest, "Invalid OTP format. OTP must be 6 digits.")
	CodeInvalidToken        = ErrRegistry.Register("INVALID_TOKEN", errx.TypeIntegrity, http.StatusBadRequest, "Invalid or tampered token")
	CodeEmailMismatch       = ErrRegistry.Register("EMAIL_MISMATCH", errx.TypeIntegrity, http.StatusBadRequest, "Email does not match the OTP request")
	CodeOTPExpired          = ErrRegistry.Register("OTP_EXPIRED", errx.TypeBusiness, http.StatusBadRequest, "OTP has expired. Please request a new OTP.")
	CodeCodeMismatch        = ErrRegistry.Register("CODE_MISMATCH", errx.TypeBusiness, http.StatusBadRequest, "Invalid OTP. Please check and try again.")
	CodeOTPAlreadyUsed      = ErrRegistry.Register("ALREADY_USED", errx.TypeBusiness, http.StatusBadRequest, "OTP has already been used. Please request a new OTP.")
)

func ErrInvalidEmail() *errx.Error   { return ErrRegistry.New(CodeInvalidEmail) }
func ErrMissingFields() *errx.Error  { return ErrRegistry.New(CodeMissingFields) }
func ErrMalformedCode() *errx.Error  { return ErrRegistry.New(CodeMalformedCode) }
func ErrInvalidToken() *errx.Error   { return ErrRegistry.New(CodeInvalidToken) }
func ErrEmailMismatch() *errx.Error  { return ErrRegistry.New(CodeEmailMismatch) }
func ErrOTPExpired() *errx.Error     { return ErrRegistry.New(CodeOTPExpired) }
func ErrCodeMismatch() *errx.Error   { return ErrRegistry.New(CodeCodeMismatch) }
func ErrOTPAlreadyUsed() *errx.Error { return ErrRegistry.New(CodeOTPAlreadyUsed) }

// ErrRateLimited carries the retry hint both in the message and as a detail.
func ErrRateLimited(retryAfterMinutes int) *errx.Error {
	return ErrRegistry.NewWithMessage(CodeRateLimited,
		fmt.Sprintf("Too many OTP requests. Please try again in %d minutes.", retryAfterMinutes)).
		WithDetail("retry_after_minutes", retryAfterMinutes)
}

// ErrEmailDeliveryFailed wraps the mailer failure without exposing it.
func ErrEmailDeliveryFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeEmailDeliveryFailed, cause)
}
