// Package otptoken seals OTP challenges into self-contained tokens. The
// token is the only server state a challenge has.
package otptoken

import (
	"fmt"

	"github.com/Abraxas-365/leadgate/pkg/otp"
)

const (
	FormatEnvelope = "envelope"
	FormatJWT      = "jwt"
)

// New returns the codec for format.
func New(format, secret string) (otp.TokenCodec, error) {
	switch format {
	case FormatEnvelope, "":
		return NewEnvelopeCodec(secret), nil
	case FormatJWT:
		return NewJWTCodec(secret), nil
	default:
		return nil, fmt.Errorf("unknown token format %q", format)
	}
}
