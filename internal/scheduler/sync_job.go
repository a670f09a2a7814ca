package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/consignd/commerce-backend/pkg/logger"
)

type synchronizer interface {
	SyncNow(ctx context.Context) error
}

// SyncJobParams configures the inventory sync job.
type SyncJobParams struct {
	Logger   *logger.Logger
	Commerce synchronizer
	Interval time.Duration
}

// NewSyncJob constructs the job that refreshes the catalog from the
// warehouse feed.
func NewSyncJob(params SyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Commerce == nil {
		return nil, fmt.Errorf("commerce service required")
	}
	if params.Interval <= 0 {
		return nil, fmt.Errorf("sync interval must be positive")
	}
	return &syncJob{
		logg:     params.Logger,
		commerce: params.Commerce,
		interval: params.Interval,
	}, nil
}

type syncJob struct {
	logg     *logger.Logger
	commerce synchronizer
	interval time.Duration
}

func (j *syncJob) Name() string            { return "inventory-sync" }
func (j *syncJob) Interval() time.Duration { return j.interval }

func (j *syncJob) Run(ctx context.Context) error {
	if err := j.commerce.SyncNow(ctx); err != nil {
		return fmt.Errorf("sync inventory: %w", err)
	}
	return nil
}
