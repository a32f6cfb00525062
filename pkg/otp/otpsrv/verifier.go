package otpsrv

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/errx"
	"github.com/Abraxas-365/leadgate/pkg/kernel"
	"github.com/Abraxas-365/leadgate/pkg/logx"
	"github.com/Abraxas-365/leadgate/pkg/metricx"
	"github.com/Abraxas-365/leadgate/pkg/otp"
)

// Verifier checks a code against the challenge sealed in its token. Without
// a RedemptionGuard it holds no state and a code verifies any number of
// times until expiry.
type Verifier struct {
	codec   otp.TokenCodec
	guard   otp.RedemptionGuard
	metrics *metricx.Metrics
	now     func() time.Time
}

// NewVerifier accepts a nil guard.
func NewVerifier(codec otp.TokenCodec, guard otp.RedemptionGuard, metrics *metricx.Metrics) *Verifier {
	return &Verifier{codec: codec, guard: guard, metrics: metrics, now: time.Now}
}

func (s *Verifier) Verify(ctx context.Context, rawEmail, rawCode, token string) error {
	err := s.verify(ctx, rawEmail, rawCode, token)

	result := "verified"
	var e *errx.Error
	if errx.As(err, &e) {
		result = strings.ToLower(strings.TrimPrefix(e.Code, otp.ErrRegistry.Prefix()+"_"))
	} else if err != nil {
		result = "error"
	}
	s.metrics.OTPVerified(result)
	return err
}

func (s *Verifier) verify(ctx context.Context, rawEmail, rawCode, token string) error {
	if strings.TrimSpace(rawEmail) == "" || rawCode == "" || token == "" {
		return otp.ErrMissingFields()
	}
	if !otp.IsWellFormedCode(rawCode) {
		return otp.ErrMalformedCode()
	}

	ch, err := s.codec.Redeem(token)
	if err != nil {
		return otp.ErrInvalidToken().WithCause(err)
	}

	email := kernel.NormalizeEmail(rawEmail)
	if kernel.NormalizeEmail(ch.Email.String()) != email {
		return otp.ErrEmailMismatch()
	}
	if ch.ExpiredAt(s.now()) {
		return otp.ErrOTPExpired()
	}
	if subtle.ConstantTimeCompare([]byte(rawCode), []byte(ch.Code)) != 1 {
		return otp.ErrCodeMismatch()
	}

	if s.guard != nil {
		first, err := s.guard.MarkRedeemed(ctx, ch.Digest(), ch.ExpiresAt)
		if err != nil {
			return errx.Wrap(err, "replay guard check failed", errx.TypeInternal)
		}
		if !first {
			return otp.ErrOTPAlreadyUsed()
		}
	}

	logx.WithFields(logx.Fields{
		"email":      logx.MaskEmail(email.String()),
		"request_id": kernel.RequestID(ctx),
	}).Info("otp verified")
	return nil
}
