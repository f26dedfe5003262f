package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
)

// TokenRefresher refreshes every stored token expiring within window
type TokenRefresher interface {
	RefreshExpiring(ctx context.Context, window time.Duration) (int, error)
}

// TokenRefreshWorker keeps CRM tokens fresh in the background so request
// handlers rarely pay for a refresh. It goes through the same per-tenant
// single-flight path as request driven refreshes.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
type TokenRefreshWorker struct {
	refresher TokenRefresher
	interval  time.Duration
	window    time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewTokenRefreshWorker creates a worker that runs every interval and
// refreshes tokens expiring within window
func NewTokenRefreshWorker(refresher TokenRefresher, interval, window time.Duration) *TokenRefreshWorker {
	return &TokenRefreshWorker{
		refresher: refresher,
		interval:  interval,
		window:    window,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background loop without blocking server startup
func (w *TokenRefreshWorker) Start(ctx context.Context) error {
	logging.Default().Info("Token refresh worker starting",
		"interval", w.interval.String(), "window", w.window.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *TokenRefreshWorker) Stop() {
	logging.Default().Info("Token refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Token refresh worker stopped")
}

func (w *TokenRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.refresh(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Token refresh worker context cancelled")
			return
		}
	}
}

func (w *TokenRefreshWorker) refresh(ctx context.Context) {
	startTime := time.Now()

	n, err := w.refresher.RefreshExpiring(ctx, w.window)
	if err != nil {
		logging.Default().Error("Token refresh failed (will retry next interval)", "error", err.Error())
		return
	}

	if n > 0 {
		logging.Default().Info("Token refresh completed",
			"refreshed", n, "duration", time.Since(startTime).String())
	}
}
