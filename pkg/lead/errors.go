package lead

import (
	"net/http"
	"strings"

	"github.com/Abraxas-365/leadgate/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("LEAD")

var (
	CodeValidationFailed = ErrRegistry.Register("VALIDATION_FAILED", errx.TypeValidation, http.StatusBadRequest, "Validation failed")
)

// ErrValidationFailed lists every violation, both in the message and under
// the "errors" detail.
func ErrValidationFailed(violations []string) *errx.Error {
	return ErrRegistry.NewWithMessage(CodeValidationFailed, "Validation failed: "+strings.Join(violations, ", ")).
		WithDetail("errors", violations)
}
