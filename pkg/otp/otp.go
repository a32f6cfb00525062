package otp

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/kernel"
)

const (
	// CodeLength is the number of digits in every issued code.
	CodeLength = 6

	codeMin = 100000
	codeMax = 999999
)

// Challenge is the server state carried inside a signed token.
type Challenge struct {
	Email     kernel.Email
	Code      string
	ExpiresAt time.Time
}

// ExpiredAt reports whether the challenge is past its expiry at now.
// A now equal to ExpiresAt is still valid.
func (c Challenge) ExpiredAt(now time.Time) bool {
	return now.UnixMilli() > c.ExpiresAt.UnixMilli()
}

// Digest identifies the challenge independently of how its token is
// spelled, so every encoding of one challenge maps to the same key.
func (c Challenge) Digest() string {
	return kernel.Digest(c.Email.String() + "|" + c.Code + "|" + strconv.FormatInt(c.ExpiresAt.UnixMilli(), 10))
}

// Issued is what the client receives after a successful send.
type Issued struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// GenerateCode returns a uniformly random code in [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return n.Add(n, big.NewInt(codeMin)).String(), nil
}

// IsWellFormedCode reports whether s is exactly six ASCII digits.
func IsWellFormedCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
