package gate

import (
	"errors"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for limiter tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestRateLimiterAllow(t *testing.T) {
	t.Parallel()

	t.Run("unruled operations are never throttled", func(t *testing.T) {
		t.Parallel()

		rl := NewRateLimiter(nil)
		for i := 0; i < 100; i++ {
			if err := rl.Allow("free-for-all"); err != nil {
				t.Fatalf("call %d throttled: %v", i, err)
			}
		}
	})

	t.Run("second call inside the window is throttled", func(t *testing.T) {
		t.Parallel()

		clock := &fakeClock{t: time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)}
		rl := NewRateLimiter(map[string]Rule{
			"start": {Ceiling: 1, Window: time.Minute},
		}, WithLimiterClock(clock.now))

		if err := rl.Allow("start"); err != nil {
			t.Fatalf("first call should pass: %v", err)
		}

		clock.advance(10 * time.Second)
		err := rl.Allow("start")
		if err == nil {
			t.Fatal("second call inside the window should be throttled")
		}

		var rle *RateLimitError
		if !errors.As(err, &rle) {
			t.Fatalf("expected *RateLimitError, got %T", err)
		}
		if rle.Op != "start" {
			t.Errorf("expected op start, got %s", rle.Op)
		}
		if rle.RetryAfter != 50*time.Second {
			t.Errorf("expected retry after 50s, got %v", rle.RetryAfter)
		}
	})

	t.Run("call passes again after the window elapses", func(t *testing.T) {
		t.Parallel()

		clock := &fakeClock{t: time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)}
		rl := NewRateLimiter(map[string]Rule{
			"start": {Ceiling: 1, Window: time.Minute},
		}, WithLimiterClock(clock.now))

		if err := rl.Allow("start"); err != nil {
			t.Fatalf("first call should pass: %v", err)
		}

		clock.advance(61 * time.Second)
		if err := rl.Allow("start"); err != nil {
			t.Errorf("call after window should pass: %v", err)
		}
	})

	t.Run("window slides over a multi-call ceiling", func(t *testing.T) {
		t.Parallel()

		clock := &fakeClock{t: time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)}
		rl := NewRateLimiter(map[string]Rule{
			"export": {Ceiling: 3, Window: time.Minute},
		}, WithLimiterClock(clock.now))

		// Three calls at t=0s, 20s, 40s fill the ceiling.
		for i := 0; i < 3; i++ {
			if err := rl.Allow("export"); err != nil {
				t.Fatalf("call %d should pass: %v", i, err)
			}
			clock.advance(20 * time.Second)
		}

		// t=60s: the t=0s call has just left the window.
		if err := rl.Allow("export"); err != nil {
			t.Errorf("call after the oldest expired should pass: %v", err)
		}

		// Ceiling is full again with calls at 20s, 40s, 60s.
		clock.advance(time.Second)
		err := rl.Allow("export")
		var rle *RateLimitError
		if !errors.As(err, &rle) {
			t.Fatalf("expected *RateLimitError, got %v", err)
		}
		if rle.RetryAfter != 19*time.Second {
			t.Errorf("expected retry after 19s, got %v", rle.RetryAfter)
		}
	})

	t.Run("operations are throttled independently", func(t *testing.T) {
		t.Parallel()

		clock := &fakeClock{t: time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)}
		rl := NewRateLimiter(map[string]Rule{
			"a": {Ceiling: 1, Window: time.Minute},
			"b": {Ceiling: 1, Window: time.Minute},
		}, WithLimiterClock(clock.now))

		if err := rl.Allow("a"); err != nil {
			t.Fatalf("a should pass: %v", err)
		}
		if err := rl.Allow("b"); err != nil {
			t.Errorf("throttling a must not affect b: %v", err)
		}
	})

	t.Run("reset clears the history", func(t *testing.T) {
		t.Parallel()

		clock := &fakeClock{t: time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)}
		rl := NewRateLimiter(map[string]Rule{
			"start": {Ceiling: 1, Window: time.Minute},
		}, WithLimiterClock(clock.now))

		if err := rl.Allow("start"); err != nil {
			t.Fatalf("first call should pass: %v", err)
		}
		rl.Reset("start")
		if err := rl.Allow("start"); err != nil {
			t.Errorf("call after reset should pass: %v", err)
		}
	})
}
