package ratelimitredis

import "github.com/Abraxas-365/leadgate/pkg/errx"

var redisErrors = errx.NewRegistry("RATELIMIT_REDIS")

var (
	ErrConsume = redisErrors.Register("CONSUME", errx.TypeInternal, 500, "Rate limit store unavailable")
	ErrReply   = redisErrors.Register("REPLY", errx.TypeInternal, 500, "Unexpected rate limit store reply")
)
