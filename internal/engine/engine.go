// Package engine runs the status-advancement loop: a single recurring
// background task that never overlaps with itself and exits promptly on
// shutdown.
package engine

import (
	"context"
	"time"

	"stockroom/internal/service"

	"github.com/rs/zerolog"
)

// Engine drives periodic status-advancement passes.
type Engine struct {
	status   service.StatusService
	interval time.Duration
	logger   zerolog.Logger
	done     chan struct{}
}

// New creates an engine that runs a pass every interval.
func New(status service.StatusService, interval time.Duration, logger zerolog.Logger) *Engine {
	return &Engine{
		status:   status,
		interval: interval,
		logger:   logger.With().Str("component", "engine").Logger(),
		done:     make(chan struct{}),
	}
}

// Start runs the loop until ctx is cancelled. Each pass completes before the
// next wait begins, so passes never overlap. The first pass runs immediately.
func (e *Engine) Start(ctx context.Context) {
	go e.run(ctx)
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	e.logger.Info().Dur("interval", e.interval).Msg("status advancement engine starting")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("status advancement engine stopping")
			return
		case <-timer.C:
			if err := e.status.AdvanceStatuses(ctx); err != nil && ctx.Err() == nil {
				e.logger.Error().Err(err).Msg("status advancement pass failed")
			}
			timer.Reset(e.interval)
		}
	}
}

// Wait blocks until the loop has exited.
func (e *Engine) Wait() {
	<-e.done
}
