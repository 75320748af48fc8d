package client

import (
	"context"
	"math"
	"time"
)

const (
	DefaultMaxRetries     = 3
	DefaultBackoffUnit    = time.Second
	DefaultTransportDelay = 5 * time.Second
	DefaultRequestTimeout = 1000 * time.Second // generation on a cold model can be very slow
	DefaultHealthTimeout  = 10 * time.Second

	// MaxBackoff is returned once 2^attempt units no longer fit in a time.Duration.
	MaxBackoff = time.Duration(math.MaxInt64)
)

type RetryPolicy struct {
	MaxRetries     int           `json:"maxRetries" yaml:"maxRetries"`         // attempts per Generate call (default: 3)
	BackoffUnit    time.Duration `json:"backoffUnit" yaml:"backoffUnit"`       // status failures wait 2^attempt units
	TransportDelay time.Duration `json:"transportDelay" yaml:"transportDelay"` // fixed wait after a network failure
	RequestTimeout time.Duration `json:"requestTimeout" yaml:"requestTimeout"` // deadline of one generate attempt
	HealthTimeout  time.Duration `json:"healthTimeout" yaml:"healthTimeout"`   // deadline of the health check
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     DefaultMaxRetries,
		BackoffUnit:    DefaultBackoffUnit,
		TransportDelay: DefaultTransportDelay,
		RequestTimeout: DefaultRequestTimeout,
		HealthTimeout:  DefaultHealthTimeout,
	}
}

// Delay returns how long to wait after the given failed attempt (0-indexed).
func (p RetryPolicy) Delay(kind FailureKind, attempt int) time.Duration {
	if kind == FailureTransport {
		return p.TransportDelay
	}
	if p.BackoffUnit <= 0 {
		return 0
	}
	if attempt >= 62 || p.BackoffUnit > MaxBackoff>>uint(attempt) {
		return MaxBackoff
	}
	return p.BackoffUnit << uint(attempt)
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
