package gate

import (
	"sync"
	"time"
)

// Rule is one operation's rate ceiling: at most Ceiling calls within
// any sliding Window.
type Rule struct {
	// Ceiling is the maximum number of calls inside the window.
	Ceiling int

	// Window is the sliding time window the ceiling applies to.
	Window time.Duration
}

// RateLimiter enforces per-operation call-rate ceilings over sliding
// time windows. State is in-memory only and shared across all callers
// in the process; it resets on restart.
//
// The call history is a single shared mutable resource, so every check
// runs under the mutex even though the store itself serializes writes.
type RateLimiter struct {
	mu    sync.Mutex
	rules map[string]Rule
	calls map[string][]time.Time

	// now is the clock; tests override it.
	now func() time.Time
}

// LimiterOption configures a RateLimiter.
type LimiterOption func(*RateLimiter)

// WithLimiterClock sets the clock used for window arithmetic.
func WithLimiterClock(now func() time.Time) LimiterOption {
	return func(rl *RateLimiter) {
		if now != nil {
			rl.now = now
		}
	}
}

// NewRateLimiter creates a RateLimiter with the given per-operation
// rules. Operations without a rule are never throttled.
func NewRateLimiter(rules map[string]Rule, opts ...LimiterOption) *RateLimiter {
	rl := &RateLimiter{
		rules: rules,
		calls: make(map[string][]time.Time),
		now:   time.Now,
	}
	if rl.rules == nil {
		rl.rules = make(map[string]Rule)
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Allow records one call attempt for op. If the operation is at its
// ceiling within the window, it returns a *RateLimitError carrying the
// time until the oldest retained call exits the window; otherwise the
// call timestamp is recorded and nil is returned.
func (rl *RateLimiter) Allow(op string) error {
	rule, limited := rl.rules[op]
	if !limited || rule.Ceiling <= 0 {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rule.Window)

	// Discard timestamps that have left the window.
	history := rl.calls[op]
	kept := history[:0]
	for _, t := range history {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= rule.Ceiling {
		retryAfter := kept[0].Add(rule.Window).Sub(now)
		rl.calls[op] = kept
		return &RateLimitError{Op: op, RetryAfter: retryAfter}
	}

	rl.calls[op] = append(kept, now)
	return nil
}

// Reset clears the recorded history for an operation. Used by tests and
// by administrative resets.
func (rl *RateLimiter) Reset(op string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.calls, op)
}
