package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/consignd/commerce-backend/pkg/logger"
)

type sweeper interface {
	SweepNow(ctx context.Context) (int, error)
}

// SweepJobParams configures the cart expiration sweep job.
type SweepJobParams struct {
	Logger   *logger.Logger
	Commerce sweeper
	Interval time.Duration
}

// NewSweepJob constructs the job that removes cart items whose hold
// has lapsed. It backs up the per-item timers, catching anything a
// missed or drifted timer left behind.
func NewSweepJob(params SweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Commerce == nil {
		return nil, fmt.Errorf("commerce service required")
	}
	if params.Interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive")
	}
	return &sweepJob{
		logg:     params.Logger,
		commerce: params.Commerce,
		interval: params.Interval,
	}, nil
}

type sweepJob struct {
	logg     *logger.Logger
	commerce sweeper
	interval time.Duration
}

func (j *sweepJob) Name() string            { return "cart-sweep" }
func (j *sweepJob) Interval() time.Duration { return j.interval }

func (j *sweepJob) Run(ctx context.Context) error {
	expired, err := j.commerce.SweepNow(ctx)
	if err != nil {
		return fmt.Errorf("sweep carts: %w", err)
	}
	if expired > 0 {
		logCtx := j.logg.WithField(ctx, "expired_items", expired)
		j.logg.Info(logCtx, "cart sweep removed expired holds")
	}
	return nil
}
