package client

import "time"

// Default reconnect policy.
const (
	DefaultMaxReconnects = 5
	DefaultBaseDelay     = time.Second
	DefaultMaxDelay      = 10 * time.Second
)

// Backoff is the reconnect policy: delay = min(Base * 2^attempt, Max), with at
// most MaxAttempts reconnects between successful connections.
type Backoff struct {
	Base        time.Duration
	Max         time.Duration
	MaxAttempts int
}

// DefaultBackoff returns 1s base, 10s cap, 5 attempts.
func DefaultBackoff() Backoff {
	return Backoff{
		Base:        DefaultBaseDelay,
		Max:         DefaultMaxDelay,
		MaxAttempts: DefaultMaxReconnects,
	}
}

// Delay returns the wait before reconnect number attempt (1-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	shift := attempt
	if shift > 30 {
		shift = 30 // keep the shift inside int64 range
	}
	d := b.Base * time.Duration(int64(1)<<uint(shift))
	if d > b.Max || d <= 0 {
		d = b.Max
	}
	return d
}

// Next reports the attempt number and delay for the reconnect following
// `attempts` failed ones, or ok=false when the policy is exhausted.
func (b Backoff) Next(attempts int) (attempt int, delay time.Duration, ok bool) {
	if attempts >= b.MaxAttempts {
		return attempts, 0, false
	}
	attempt = attempts + 1
	return attempt, b.Delay(attempt), true
}

func (b Backoff) withDefaults() Backoff {
	if b.Base <= 0 {
		b.Base = DefaultBaseDelay
	}
	if b.Max <= 0 {
		b.Max = DefaultMaxDelay
	}
	if b.MaxAttempts <= 0 {
		b.MaxAttempts = DefaultMaxReconnects
	}
	return b
}
