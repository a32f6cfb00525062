package otptoken

import (
	"time"

	"github.com/Abraxas-365/leadgate/pkg/errx"
	"github.com/Abraxas-365/leadgate/pkg/kernel"
	"github.com/Abraxas-365/leadgate/pkg/otp"
	"github.com/golang-jwt/jwt/v5"
)

const jwtIssuer = "leadgate"

type challengeClaims struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	ExpiresAtMS int64  `json:"expiresAt"`
	jwt.RegisteredClaims
}

// JWTCodec carries the challenge as an HS256 JWT. Expiry is left to the
// verifier, so the library's claim validation is off.
type JWTCodec struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTCodec(secret string) *JWTCodec {
	return &JWTCodec{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
			jwt.WithStrictDecoding(),
		),
	}
}

func (c *JWTCodec) Issue(ch otp.Challenge) (string, error) {
	claims := challengeClaims{
		Email:       ch.Email.String(),
		OTP:         ch.Code,
		ExpiresAtMS: ch.ExpiresAt.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			ExpiresAt: jwt.NewNumericDate(ch.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", errx.Wrap(err, "failed to sign token", errx.TypeInternal)
	}
	return signed, nil
}

func (c *JWTCodec) Redeem(token string) (otp.Challenge, error) {
	var claims challengeClaims
	parsed, err := c.parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return otp.Challenge{}, otp.ErrInvalidToken().WithCause(err)
	}
	if claims.Email == "" || claims.OTP == "" || claims.ExpiresAtMS == 0 || claims.Issuer != jwtIssuer {
		return otp.Challenge{}, otp.ErrInvalidToken()
	}

	return otp.Challenge{
		Email:     kernel.Email(claims.Email),
		Code:      claims.OTP,
		ExpiresAt: time.UnixMilli(claims.ExpiresAtMS),
	}, nil
}
