package otp

import (
	"context"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/kernel"
	"github.com/Abraxas-365/leadgate/pkg/ratelimit"
)

// TokenCodec seals a Challenge into an opaque token and opens it again.
// Redeem must return ErrInvalidToken for anything it did not issue.
type TokenCodec interface {
	Issue(c Challenge) (string, error)
	Redeem(token string) (Challenge, error)
}

// RateLimiter bounds issuances per key.
type RateLimiter interface {
	CheckAndConsume(ctx context.Context, key string) (ratelimit.Decision, error)
}

// Mailer delivers a code to an address.
type Mailer interface {
	SendOTP(ctx context.Context, email kernel.Email, code string) error
}

// RedemptionGuard records redeemed challenges by Challenge.Digest.
// MarkRedeemed returns false when the digest was already recorded. Entries
// may be forgotten after until.
type RedemptionGuard interface {
	MarkRedeemed(ctx context.Context, challengeDigest string, until time.Time) (bool, error)
}
