package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/til/internal/logging"
	"github.com/robfig/cron/v3"
)

// TokenRefresher periodically asks the SessionStore to renew an access
// token that is about to expire.
type TokenRefresher struct {
	cron     *cron.Cron
	store    SessionStore
	log      logging.Logger
	interval time.Duration
}

func NewTokenRefresher(store SessionStore, interval time.Duration, log logging.Logger) *TokenRefresher {
	return &TokenRefresher{
		cron:     cron.New(),
		store:    store,
		log:      log,
		interval: interval,
	}
}

// Start schedules the check every interval (rounded to whole seconds).
func (r *TokenRefresher) Start(ctx context.Context) error {
	if r.interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", r.interval)
	}
	seconds := int(r.interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}

	spec := fmt.Sprintf("@every %ds", seconds)
	if _, err := r.cron.AddFunc(spec, func() { r.Check(ctx) }); err != nil {
		return fmt.Errorf("schedule token refresh: %w", err)
	}
	r.cron.Start()
	return nil
}

// Check runs one refresh attempt.
func (r *TokenRefresher) Check(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	refreshed, err := r.store.Refresh(ctx)
	if err != nil {
		r.log.Warn(ctx, "token refresh failed", "error", err)
		return
	}
	if refreshed {
		r.log.Debug(ctx, "access token refreshed")
	}
}

func (r *TokenRefresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}
