package otpsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/asyncx"
	"github.com/Abraxas-365/leadgate/pkg/errx"
	"github.com/Abraxas-365/leadgate/pkg/kernel"
	"github.com/Abraxas-365/leadgate/pkg/logx"
	"github.com/Abraxas-365/leadgate/pkg/metricx"
	"github.com/Abraxas-365/leadgate/pkg/otp"
)

// Issuer sends a fresh code to an address and returns the token bound to it.
type Issuer struct {
	limiter otp.RateLimiter
	codec   otp.TokenCodec
	mailer  otp.Mailer
	metrics *metricx.Metrics

	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	newCode func() (string, error)
}

type IssuerConfig struct {
	TTL             time.Duration
	OutboundTimeout time.Duration
}

func NewIssuer(limiter otp.RateLimiter, codec otp.TokenCodec, mailer otp.Mailer, metrics *metricx.Metrics, cfg IssuerConfig) *Issuer {
	return &Issuer{
		limiter: limiter,
		codec:   codec,
		mailer:  mailer,
		metrics: metrics,
		ttl:     cfg.TTL,
		timeout: cfg.OutboundTimeout,
		now:     time.Now,
		newCode: otp.GenerateCode,
	}
}

// Issue validates rawEmail, consumes one rate-limit slot and delivers a
// code. No token is returned unless delivery succeeded.
func (s *Issuer) Issue(ctx context.Context, rawEmail string) (*otp.Issued, error) {
	if !kernel.IsValidEmail(rawEmail) {
		s.metrics.OTPIssued("invalid_email")
		return nil, otp.ErrInvalidEmail()
	}
	email := kernel.NormalizeEmail(rawEmail)
	log := logx.WithFields(logx.Fields{
		"email":      logx.MaskEmail(email.String()),
		"request_id": kernel.RequestID(ctx),
	})

	decision, err := s.limiter.CheckAndConsume(ctx, email.String())
	if err != nil {
		s.metrics.OTPIssued("error")
		log.WithError(err).Error("rate limit check failed")
		return nil, errx.Wrap(err, "rate limit check failed", errx.TypeInternal)
	}
	if !decision.Allowed {
		s.metrics.OTPIssued("rate_limited")
		log.WithField("retry_after_minutes", decision.RetryAfterMinutes).Warn("otp issuance rate limited")
		return nil, otp.ErrRateLimited(decision.RetryAfterMinutes)
	}

	code, err := s.newCode()
	if err != nil {
		s.metrics.OTPIssued("error")
		return nil, errx.Wrap(err, "failed to generate OTP code", errx.TypeInternal)
	}

	token, err := s.codec.Issue(otp.Challenge{
		Email:     email,
		Code:      code,
		ExpiresAt: s.now().Add(s.ttl),
	})
	if err != nil {
		s.metrics.OTPIssued("error")
		return nil, err
	}

	// On timeout the send keeps running in the background; providers stop
	// at their next ctx check.
	_, err = asyncx.WithTimeout(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.mailer.SendOTP(ctx, email, code)
	})
	if err != nil {
		s.metrics.OTPIssued("delivery_failed")
		log.WithError(err).Error("otp email delivery failed")
		return nil, otp.ErrEmailDeliveryFailed(err)
	}

	s.metrics.OTPIssued("success")
	log.Info("otp issued")
	return &otp.Issued{Token: token, ExpiresIn: int(s.ttl / time.Second)}, nil
}
