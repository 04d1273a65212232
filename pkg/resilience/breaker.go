package resilience

import (
	"context"
	"time"

	"github.com/eapache/go-resiliency/breaker"
	"github.com/eapache/go-resiliency/retrier"
)

// ErrOpen is returned immediately while the breaker refuses calls.
var ErrOpen = breaker.ErrBreakerOpen

// Options tunes a Wrapper. Zero values fall back to defaults suited for a
// single flaky HTTP dependency.
type Options struct {
	// FailureThreshold consecutive failures trip the breaker open.
	FailureThreshold int
	// SuccessThreshold half-open probes must succeed before closing again.
	SuccessThreshold int
	// ResetTimeout is how long the breaker stays open before allowing a probe.
	ResetTimeout time.Duration
	// Attempts is the number of tries per call (1 = no retry).
	Attempts int
	// Backoff is the initial delay of the exponential retry schedule.
	Backoff time.Duration
	// CallTimeout bounds each individual attempt.
	CallTimeout time.Duration
}

// Wrapper decorates any fallible operation with a per-attempt timeout, a
// retrier with exponential backoff, and a circuit breaker with a half-open
// probe. It is not specific to any dependency; the auth service applies it
// around the OAuth provider exchange only.
type Wrapper struct {
	br          *breaker.Breaker
	retry       *retrier.Retrier
	callTimeout time.Duration
}

func New(opts Options) *Wrapper {
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = 5
	}
	if opts.SuccessThreshold <= 0 {
		opts.SuccessThreshold = 1
	}
	if opts.ResetTimeout <= 0 {
		opts.ResetTimeout = 30 * time.Second
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 100 * time.Millisecond
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 10 * time.Second
	}

	return &Wrapper{
		br:          breaker.New(opts.FailureThreshold, opts.SuccessThreshold, opts.ResetTimeout),
		retry:       retrier.New(retrier.ExponentialBackoff(opts.Attempts, opts.Backoff), nil),
		callTimeout: opts.CallTimeout,
	}
}

// Do runs op through retry and breaker. Context cancellation is never
// retried; an open breaker fails fast with ErrOpen.
func (w *Wrapper) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return w.br.Run(func() error {
		return w.retry.RunCtx(ctx, func(ctx context.Context) error {
			attemptCtx, cancel := context.WithTimeout(ctx, w.callTimeout)
			defer cancel()
			return op(attemptCtx)
		})
	})
}
