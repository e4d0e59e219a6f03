package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner drops process-local state that is no longer needed. It returns
// the number of entries removed.
type Pruner interface {
	Prune(now time.Time) int
}

// Sweeper periodically expires idle sessions on a cron schedule. Registered
// pruners run on the same schedule after the sessions are swept.
type Sweeper struct {
	cron    *cron.Cron
	manager *Manager
	idle    time.Duration
	pruners map[string]Pruner
	now     func() time.Time
	logger  *slog.Logger
}

// NewSweeper validates schedule (standard cron syntax or descriptors such
// as "@every 10m") and prepares a sweeper. Call Start to run it.
func NewSweeper(manager *Manager, schedule string, idle time.Duration, logger *slog.Logger) (*Sweeper, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if manager == nil {
		return nil, fmt.Errorf("session manager cannot be nil")
	}
	if idle <= 0 {
		return nil, fmt.Errorf("idle timeout must be positive, got %s", idle)
	}

	s := &Sweeper{
		cron:    cron.New(),
		manager: manager,
		idle:    idle,
		pruners: make(map[string]Pruner),
		now:     manager.now,
		logger:  logger.With("component", "session_sweeper"),
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Prune registers p under name. Call it before Start.
func (s *Sweeper) Prune(name string, p Pruner) {
	s.pruners[name] = p
}

func (s *Sweeper) run() {
	removed := s.manager.Sweep(s.idle)
	s.logger.Debug("session sweep finished", "removed", removed)

	now := s.now()
	for name, p := range s.pruners {
		if n := p.Prune(now); n > 0 {
			s.logger.Debug("pruned expired entries", "store", name, "removed", n)
		}
	}
}

// Start begins running the schedule in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
	s.logger.Info("session sweeper started", "idle_timeout", s.idle.String())
}

// Stop stops the schedule and waits for a running sweep to finish or for
// ctx to end.
func (s *Sweeper) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("session sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
