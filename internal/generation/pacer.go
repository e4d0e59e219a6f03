package generation

import (
	"context"
	"time"
)

// minIntervalFloor is the smallest spacing allowed between two calls.
const minIntervalFloor = time.Second

// MinInterval converts a calls-per-minute budget into the minimum spacing
// between successful calls: max(60s/callsPerMinute, 1s). Budgets <= 0 get
// the floor.
func MinInterval(callsPerMinute int) time.Duration {
	if callsPerMinute <= 0 {
		return minIntervalFloor
	}
	interval := time.Minute / time.Duration(callsPerMinute)
	if interval < minIntervalFloor {
		return minIntervalFloor
	}
	return interval
}

// Pacer delays callers so that calls are spaced at least MinInterval apart.
// It keeps no state of its own; the timestamp of the last successful call is
// supplied by the caller.
type Pacer struct {
	interval time.Duration
	clock    Clock
}

// NewPacer creates a Pacer for the given calls-per-minute budget.
func NewPacer(callsPerMinute int, clock Clock) *Pacer {
	if clock == nil {
		clock = SystemClock()
	}
	return &Pacer{
		interval: MinInterval(callsPerMinute),
		clock:    clock,
	}
}

// Interval returns the minimum spacing enforced by the pacer.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Delay returns how long a call made now would have to wait. A zero
// lastCallAt means no call has succeeded yet.
func (p *Pacer) Delay(lastCallAt time.Time) time.Duration {
	if lastCallAt.IsZero() {
		return 0
	}
	elapsed := p.clock.Now().Sub(lastCallAt)
	if elapsed >= p.interval {
		return 0
	}
	return p.interval - elapsed
}

// Wait blocks until at least the minimum interval has passed since
// lastCallAt. The only error is the context ending the wait.
func (p *Pacer) Wait(ctx context.Context, lastCallAt time.Time) error {
	delay := p.Delay(lastCallAt)
	if delay <= 0 {
		return nil
	}
	return p.clock.Sleep(ctx, delay)
}
