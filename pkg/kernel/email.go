package kernel

import (
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/crypto/blake2b"
)

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email is a normalized (trimmed, lower-cased) address. It is the only key
// used for rate limiting and challenge matching.
type Email string

// NormalizeEmail trims surrounding whitespace and lower-cases raw.
func NormalizeEmail(raw string) Email {
	return Email(strings.ToLower(strings.TrimSpace(raw)))
}

// IsValidEmail reports whether raw has a local@domain.tld shape.
func IsValidEmail(raw string) bool {
	return emailShape.MatchString(strings.TrimSpace(raw))
}

func (e Email) String() string { return string(e) }
func (e Email) IsEmpty() bool  { return e == "" }

// Digest returns a hex BLAKE2b-256 of e, used to key shared stores without
// writing addresses into them.
func (e Email) Digest() string {
	return Digest(string(e))
}

// Digest returns the hex BLAKE2b-256 of s.
func Digest(s string) string {
	sum := blake2b.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
