package service

import (
	"context"
	"time"

	"task_manager/internal/logger"
	"task_manager/internal/repository"
)

// TokenJanitor deletes token rows whose expiry has passed.
type TokenJanitor struct {
	tokens repository.TokenRepo
	log    *logger.Logger
	now    func() time.Time
}

func NewTokenJanitor(tokens repository.TokenRepo, log *logger.Logger) *TokenJanitor {
	if log == nil {
		log = logger.Nop()
	}
	return &TokenJanitor{tokens: tokens, log: log, now: time.Now}
}

// Run ticks at the given interval until ctx is canceled.
func (j *TokenJanitor) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = j.Sweep(ctx)
		}
	}
}

// Sweep performs one purge and returns the number of revoked rows.
func (j *TokenJanitor) Sweep(ctx context.Context) (int64, error) {
	n, err := j.tokens.DeleteExpired(ctx, j.now())
	if err != nil {
		if ctx.Err() == nil {
			j.log.Errorw("token_sweep_failed", "error", err)
		}
		return 0, err
	}
	if n > 0 {
		j.log.Infow("token_sweep", "deleted", n)
	}
	return n, nil
}
