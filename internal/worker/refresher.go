// Package worker runs background jobs of the validator service.
package worker

import (
	"context"
	"time"
	"validator/internal/validation"
	"validator/pkg/logger"

	"go.uber.org/zap"
)

// Refresher reloads the schema in the background, either every Interval or
// when Trigger is called. A failed refresh is logged and the previous
// snapshot stays in service.
type Refresher struct {
	service  validation.Service
	interval time.Duration
	// trigger holds at most one pending manual refresh.
	trigger chan struct{}
}

// NewRefresher returns a Refresher for service. An interval of zero disables
// periodic refreshes; manual triggers still work.
func NewRefresher(service validation.Service, interval time.Duration) *Refresher {
	return &Refresher{
		service:  service,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests a refresh without blocking. Requests made while one is
// already pending are coalesced.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
		logger.Info(ctx, "periodic schema refresh enabled", zap.Duration("interval", r.interval))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			r.refresh(ctx, "interval")
		case <-r.trigger:
			r.refresh(ctx, "trigger")
		}
	}
}

func (r *Refresher) refresh(ctx context.Context, reason string) {
	ctx = logger.WithFields(ctx, zap.String("reason", reason))
	if _, err := r.service.Refresh(ctx); err != nil {
		logger.Warn(ctx, "schema refresh failed, keeping previous snapshot", zap.Error(err))
	}
}

// Start runs r in a new goroutine. The returned function blocks until Run has
// returned, which happens once ctx is done.
func Start(ctx context.Context, r *Refresher) (wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx)
	}()

	return func() { <-done }
}
