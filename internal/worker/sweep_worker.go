// Package worker runs background maintenance loops next to the HTTP server.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper drops expired state and reports how many entries it removed.
type Sweeper interface {
	Sweep() int
}

// SweepWorker periodically evicts expired mounts from a process-local store.
// Redis expires keys on its own and needs no sweeper.
type SweepWorker struct {
	store    Sweeper
	interval time.Duration
	log      zerolog.Logger
}

// NewSweepWorker creates a new SweepWorker.
func NewSweepWorker(store Sweeper, interval time.Duration, log zerolog.Logger) *SweepWorker {
	return &SweepWorker{
		store:    store,
		interval: interval,
		log:      log.With().Str("component", "sweep_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine; it returns when ctx is
// cancelled.
func (w *SweepWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SweepWorker) sweep() {
	if n := w.store.Sweep(); n > 0 {
		w.log.Debug().Int("count", n).Msg("Expired mounts evicted")
	}
}
