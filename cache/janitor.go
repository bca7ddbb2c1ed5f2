package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/fleetwatch/observe"
)

// DefaultSweepInterval is the janitor's default cadence.
const DefaultSweepInterval = 300 * time.Second

// JanitorConfig configures a Janitor.
type JanitorConfig struct {
	// Interval between sweeps. Default: 300s.
	Interval time.Duration

	// Telemetry receives sweep logs and metrics.
	Telemetry observe.Telemetry
}

// Janitor periodically removes expired entries from a Store so keys that are
// no longer read do not accumulate.
type Janitor struct {
	store    Store
	interval time.Duration
	tel      observe.Telemetry

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewJanitor creates a janitor for store. Call Start to begin sweeping.
func NewJanitor(store Store, cfg JanitorConfig) *Janitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSweepInterval
	}
	return &Janitor{
		store:    store,
		interval: cfg.Interval,
		tel:      cfg.Telemetry.OrNop(),
	}
}

// Interval returns the sweep cadence.
func (j *Janitor) Interval() time.Duration {
	return j.interval
}

// Start launches the sweep goroutine. It runs until Stop is called or ctx is
// done. Starting a running janitor returns ErrJanitorRunning.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.done != nil {
		return ErrJanitorRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.done = make(chan struct{})
	go j.run(ctx, j.done)
	return nil
}

func (j *Janitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.SweepNow(ctx)
		}
	}
}

// Stop cancels the sweep goroutine and waits for it to exit. Stop is
// idempotent and safe to call on a janitor that was never started.
func (j *Janitor) Stop() {
	j.mu.Lock()
	cancel, done := j.cancel, j.done
	j.cancel, j.done = nil, nil
	j.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// SweepNow removes expired entries immediately and returns the count.
func (j *Janitor) SweepNow(ctx context.Context) int {
	removed := j.store.SweepExpired(j.store.Now())
	j.tel.Metrics.RecordSweep(ctx, removed)

	if removed > 0 {
		j.tel.Logger.Info(ctx, "cache sweep removed expired entries", observe.F("removed", removed))
	} else {
		j.tel.Logger.Debug(ctx, "cache sweep found nothing to remove")
	}
	return removed
}
