// Package keepalive provides the background liveness probe for the
// persistence backend.
package keepalive

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Default probe timings, matching the deployment's idle-connection window.
const (
	DefaultInterval   = 10 * time.Minute
	DefaultRetryDelay = 5 * time.Second
)

// Pinger performs the trivial backend read used as the probe.
type Pinger interface {
	ReadSentinel(ctx context.Context) error
}

// Monitor runs a perpetual liveness probe against the persistence backend.
// It is purely observational: failures are logged and retried after a
// short backoff, never escalated.
type Monitor struct {
	db         Pinger
	logger     *slog.Logger
	interval   time.Duration
	retryDelay time.Duration

	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
}

// NewMonitor creates a new Monitor.
func NewMonitor(db Pinger, logger *slog.Logger, interval, retryDelay time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	return &Monitor{
		db:         db,
		logger:     logger.With("component", "keepalive"),
		interval:   interval,
		retryDelay: retryDelay,
	}
}

// Run starts the probe loop. Blocks until the context is cancelled;
// cancellation is reported as a clean nil return.
func (m *Monitor) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return errors.New("keepalive monitor already started")
	}
	m.started = true
	m.done = make(chan struct{})
	ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	defer close(m.done)

	m.logger.Info("keepalive monitor started", "interval", m.interval.String())

	wait := m.interval
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("keepalive monitor stopping")
			return nil
		case <-time.After(wait):
		}

		if err := m.probe(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				m.logger.Info("keepalive monitor stopping")
				return nil
			}
			m.logger.Error("keepalive ping failed", "error", err.Error())
			wait = m.retryDelay
			continue
		}

		m.logger.Info("keepalive ping successful")
		wait = m.interval
	}
}

// probe performs one sentinel read with a bounded deadline.
func (m *Monitor) probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.db.ReadSentinel(probeCtx)
}

// Shutdown cancels the probe loop and waits for it to exit.
func (m *Monitor) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
