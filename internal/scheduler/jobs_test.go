package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/consignd/commerce-backend/pkg/logger"
)

type stubCommerce struct {
	syncErr    error
	syncCalls  int
	sweepErr   error
	sweepCount int
	sweepCalls int
}

func (s *stubCommerce) SyncNow(ctx context.Context) error {
	s.syncCalls++
	return s.syncErr
}

func (s *stubCommerce) SweepNow(ctx context.Context) (int, error) {
	s.sweepCalls++
	return s.sweepCount, s.sweepErr
}

func TestSyncJobRunsSynchronizer(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "scheduler-test"})
	commerce := &stubCommerce{}
	job, err := NewSyncJob(SyncJobParams{Logger: logg, Commerce: commerce, Interval: 5 * time.Minute})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if job.Name() != "inventory-sync" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if job.Interval() != 5*time.Minute {
		t.Fatalf("unexpected interval %s", job.Interval())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if commerce.syncCalls != 1 {
		t.Fatalf("expected one sync call, got %d", commerce.syncCalls)
	}
}

func TestSyncJobWrapsFailure(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "scheduler-test"})
	commerce := &stubCommerce{syncErr: errors.New("vendor down")}
	job, err := NewSyncJob(SyncJobParams{Logger: logg, Commerce: commerce, Interval: time.Minute})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error from failing sync")
	}
}

func TestSweepJobRunsSweeper(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "scheduler-test"})
	commerce := &stubCommerce{sweepCount: 3}
	job, err := NewSweepJob(SweepJobParams{Logger: logg, Commerce: commerce, Interval: 30 * time.Second})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if job.Name() != "cart-sweep" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if commerce.sweepCalls != 1 {
		t.Fatalf("expected one sweep call, got %d", commerce.sweepCalls)
	}
}

func TestJobConstructorValidation(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "scheduler-test"})

	if _, err := NewSyncJob(SyncJobParams{Commerce: &stubCommerce{}, Interval: time.Minute}); err == nil {
		t.Fatal("expected error for missing logger")
	}
	if _, err := NewSyncJob(SyncJobParams{Logger: logg, Interval: time.Minute}); err == nil {
		t.Fatal("expected error for missing commerce service")
	}
	if _, err := NewSweepJob(SweepJobParams{Logger: logg, Commerce: &stubCommerce{}}); err == nil {
		t.Fatal("expected error for missing interval")
	}
}
