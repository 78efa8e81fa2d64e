// Package scheduler drives the periodic reconciliation sweep.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lovemartco/hp-automation/internal/application/reconcile"
)

// Scheduler errors.
var (
	ErrInvalidInterval = errors.New("scheduler: poll interval must be at least one minute")
	ErrNotRunning      = errors.New("scheduler: not running")
)

// Config holds the reconciliation scheduler configuration.
type Config struct {
	// PollInterval is the fixed sweep period. Minimum one minute.
	PollInterval time.Duration
	// InitialDelay is the delay before the early first sweep, which catches
	// orders submitted just before or during a restart.
	InitialDelay time.Duration
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.PollInterval < time.Minute {
		return ErrInvalidInterval
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = 10 * time.Second
	}
	return nil
}

// ReconcileScheduler runs the sweep executor on a fixed period. Sweeps never
// overlap: the next tick waits for the current sweep to return.
type ReconcileScheduler struct {
	config   Config
	executor *reconcile.Service
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewReconcileScheduler creates a scheduler for the given executor.
func NewReconcileScheduler(config Config, executor *reconcile.Service, logger *zap.Logger) (*ReconcileScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ReconcileScheduler{
		config:   config,
		executor: executor,
		logger:   logger,
	}, nil
}

// Start launches the sweep loop. Calling Start on a running scheduler is a
// no-op.
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Reconciliation scheduler started",
		zap.Duration("poll_interval", s.config.PollInterval),
		zap.Duration("initial_delay", s.config.InitialDelay),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight sweep to finish, bounded
// by the given context. Deterministic stop keeps tests free of process-exit
// timing.
func (s *ReconcileScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reconciliation scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Reconciliation scheduler stop timed out")
		return ctx.Err()
	}
}

// run executes the early first sweep after the initial delay, then sweeps on
// every tick until the context is cancelled.
func (s *ReconcileScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	initial := time.NewTimer(s.config.InitialDelay)
	defer initial.Stop()

	select {
	case <-ctx.Done():
		return
	case <-initial.C:
		s.executor.Sweep(ctx)
	}

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.executor.Sweep(ctx)
		}
	}
}
