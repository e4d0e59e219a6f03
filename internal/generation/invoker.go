package generation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/slidescry/internal/redact"
	"golang.org/x/sync/semaphore"
)

// CallBudget is the running count and timing of successful generation calls.
type CallBudget struct {
	CallCount  int       `json:"call_count"`
	LastCallAt time.Time `json:"last_call_at"`
}

// Invoker is a Generator that paces and retries calls to another Generator.
//
// A one-slot semaphore is held for the whole of Generate, so at most one
// logical generation is in flight per Invoker. Callers waiting for the slot
// give up when their context ends. The budget has its own lock so that
// Budget does not wait for an in-flight call.
type Invoker struct {
	slot   *semaphore.Weighted
	next   Generator
	pacer  *Pacer
	policy Policy
	clock  Clock
	logger *slog.Logger

	budgetMu sync.RWMutex
	budget   CallBudget
}

// NewInvoker wraps next with pacing and retries.
func NewInvoker(next Generator, pacer *Pacer, policy Policy, clock Clock, logger *slog.Logger) (*Invoker, error) {
	if next == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if pacer == nil {
		return nil, errors.New("pacer cannot be nil")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Invoker{
		slot:   semaphore.NewWeighted(1),
		next:   next,
		pacer:  pacer,
		policy: policy,
		clock:  clock,
		logger: logger.With("component", "generation_invoker"),
	}, nil
}

// Generate implements Generator.
func (inv *Invoker) Generate(ctx context.Context, prompt string) (string, error) {
	if err := inv.slot.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer inv.slot.Release(1)

	lastCallAt := inv.Budget().LastCallAt

	var text string
	err := Retry(ctx, inv.policy, inv.clock, func(ctx context.Context) error {
		if err := inv.pacer.Wait(ctx, lastCallAt); err != nil {
			return err
		}

		out, err := inv.next.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	if err != nil {
		inv.logger.ErrorContext(ctx, "generation call failed",
			"prompt_length", len(prompt),
			"retryable", IsRetryable(err),
			"error", redact.Error(err))
		return "", err
	}

	inv.budgetMu.Lock()
	inv.budget.CallCount++
	inv.budget.LastCallAt = inv.clock.Now()
	count := inv.budget.CallCount
	inv.budgetMu.Unlock()

	inv.logger.DebugContext(ctx, "generation call succeeded",
		"call_count", count,
		"response_length", len(text))

	return text, nil
}

// Budget returns a snapshot of the call budget.
func (inv *Invoker) Budget() CallBudget {
	inv.budgetMu.RLock()
	defer inv.budgetMu.RUnlock()
	return inv.budget
}
