// Package sweeper drives periodic removal of stale records for long running
// processes. The object store itself never sweeps in the background.
package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/flowmesh/objectstore/internal/logger"
)

// DefaultInterval is used when New is given a non-positive interval
const DefaultInterval = 10 * time.Second

// Target is the store being swept
type Target interface {
	DeleteOld(ctx context.Context) (int64, error)
	Len(ctx context.Context) (int, error)
}

// RecordGauge receives the record count after each sweep
type RecordGauge interface {
	SetRecords(n int)
}

// Option configures a Sweeper
type Option func(*Sweeper)

// WithClock sets the clock driving the ticker
func WithClock(c clockwork.Clock) Option {
	return func(s *Sweeper) { s.clock = c }
}

// WithRecordGauge reports the record count after each sweep
func WithRecordGauge(g RecordGauge) Option {
	return func(s *Sweeper) { s.gauge = g }
}

// Sweeper calls DeleteOld on its target at a fixed interval
type Sweeper struct {
	target   Target
	interval time.Duration
	clock    clockwork.Clock
	gauge    RecordGauge
	log      zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a stopped sweeper
func New(target Target, interval time.Duration, opts ...Option) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Sweeper{
		target:   target,
		interval: interval,
		clock:    clockwork.NewRealClock(),
		log:      logger.WithComponent("sweeper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the sweep loop in the background until Stop or ctx is done
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running = true

	go s.run(ctx, s.stopCh, s.doneCh)

	return nil
}

// Stop stops the loop and waits for an in-flight sweep to finish
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the loop is active
func (s *Sweeper) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sweeper) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer func() {
		s.mu.Lock()
		if s.doneCh == doneCh {
			s.running = false
		}
		s.mu.Unlock()
		close(doneCh)
	}()

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("Sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Sweeper stopped due to context cancellation")
			return
		case <-stopCh:
			s.log.Info().Msg("Sweeper stopped")
			return
		case <-ticker.Chan():
			if _, err := s.SweepOnce(ctx); err != nil {
				s.log.Warn().Err(err).Msg("Sweep failed")
			}
		}
	}
}

// SweepOnce removes stale records once and refreshes the record gauge
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	removed, err := s.target.DeleteOld(ctx)
	if err != nil {
		return 0, err
	}

	if s.gauge != nil {
		n, err := s.target.Len(ctx)
		if err != nil {
			return removed, err
		}
		s.gauge.SetRecords(n)
	}

	s.log.Debug().Int64("removed", removed).Msg("Sweep completed")
	return removed, nil
}
