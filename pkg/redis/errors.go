package redis

import "errors"

var (
	// ErrEmptyConnectionURL is returned when TOKEN_REDIS_URL is not set.
	ErrEmptyConnectionURL = errors.New("redis: empty connection URL")

	// ErrFailedToParseURL is returned for URLs without a redis:// or rediss:// scheme or with bad options.
	ErrFailedToParseURL = errors.New("redis: failed to parse connection URL")

	// ErrConnectionFailed is returned when no ping succeeded within the retry budget.
	ErrConnectionFailed = errors.New("redis: failed to establish connection")

	// ErrHealthcheckFailed is returned by Healthcheck probes.
	ErrHealthcheckFailed = errors.New("redis: healthcheck failed")
)
