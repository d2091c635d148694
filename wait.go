package srfax

import (
	"context"
	"math/rand"
	"time"
)

const (
	defaultWaitTimeout = 30 * time.Minute

	pollInitialInterval   = 5 * time.Second
	pollMaxInterval       = time.Minute
	pollBackoffMultiplier = 1.5
	pollJitterFactor      = 0.3
)

type waitConfig struct {
	timeout     time.Duration
	interval    time.Duration
	maxInterval time.Duration
}

// WaitOption configures WaitForFax.
type WaitOption func(*waitConfig)

// WithWaitTimeout bounds the total time WaitForFax polls.
// Default: 30 minutes
func WithWaitTimeout(d time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.timeout = d
	}
}

// WithPollInterval sets the first delay between status checks and the
// ceiling the delay backs off to.
// Default: 5 seconds, backing off to 1 minute
func WithPollInterval(initial, ceiling time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.interval = initial
		c.maxInterval = ceiling
	}
}

// IsFinal reports whether the fax has left the queue for good.
func (s FaxState) IsFinal() bool {
	return s == StateDelivered || s == StateFailed
}

// WaitForFax polls the status of a sent fax until it is Delivered or
// Failed, and returns that final status. A failed transmission is not an
// error; check State. Errors from a status call end the wait immediately.
//
// Example:
//
//	st, err := client.WaitForFax(ctx, id, srfax.WithWaitTimeout(10*time.Minute))
//	if err != nil {
//	    return err
//	}
//	if st.State == srfax.StateFailed {
//	    log.Printf("fax %s failed: %s", id, st.ErrorText)
//	}
func (c *Client) WaitForFax(ctx context.Context, id FaxID, opts ...WaitOption) (*FaxStatus, error) {
	cfg := &waitConfig{
		timeout:     defaultWaitTimeout,
		interval:    pollInitialInterval,
		maxInterval: pollMaxInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.timeout <= 0 || cfg.interval <= 0 || cfg.maxInterval < cfg.interval {
		return nil, validationError("wait", ErrInvalidArgument,
			"timeout and intervals must be positive with max >= initial")
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	interval := cfg.interval
	for {
		st, err := c.GetFaxStatus(ctx, id)
		if err != nil {
			return nil, err
		}
		if st.State.IsFinal() {
			return st, nil
		}

		jitter := time.Duration(rand.Float64() * pollJitterFactor * float64(interval))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval + jitter):
		}

		interval = min(time.Duration(float64(interval)*pollBackoffMultiplier), cfg.maxInterval)
	}
}
