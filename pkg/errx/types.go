package errx

// Type represents the category of error
type Type string

const (
	// TypeInternal represents internal server errors
	TypeInternal Type = "INTERNAL"

	// TypeValidation represents malformed or missing input
	TypeValidation Type = "VALIDATION"

	// TypeIntegrity represents tampered or undecodable credentials
	TypeIntegrity Type = "INTEGRITY"

	// TypeRateLimit represents requests rejected by a limiter
	TypeRateLimit Type = "RATE_LIMIT"

	// TypeBusiness represents protocol or business rule violations
	TypeBusiness Type = "BUSINESS"

	// TypeExternal represents errors from external services
	TypeExternal Type = "EXTERNAL"
)

// String returns the string representation of the error type
func (t Type) String() string {
	return string(t)
}
