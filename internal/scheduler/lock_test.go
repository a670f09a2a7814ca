package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedisStore struct {
	setNXResult bool
	stored      string
	deleted     []string
	getErr      error
}

func (f *fakeRedisStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.setNXResult {
		f.stored = value.(string)
	}
	return f.setNXResult, nil
}

func (f *fakeRedisStore) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.stored, nil
}

func (f *fakeRedisStore) Del(ctx context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

func TestRedisLockAcquireAndRelease(t *testing.T) {
	store := &fakeRedisStore{setNXResult: true}
	lock, err := NewRedisLock(store, "consignd:lock:scheduler", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}

	ok, err := lock.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected lock key deletion, got %v", store.deleted)
	}
}

func TestRedisLockAcquireDeniedLeavesOwnerEmpty(t *testing.T) {
	store := &fakeRedisStore{setNXResult: false}
	lock, err := NewRedisLock(store, "consignd:lock:scheduler", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}

	ok, err := lock.Acquire(context.Background())
	if err != nil || ok {
		t.Fatalf("expected denial, got ok=%v err=%v", ok, err)
	}
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release without ownership must be a no-op: %v", err)
	}
	if len(store.deleted) != 0 {
		t.Fatalf("must not delete a lock it never held, got %v", store.deleted)
	}
}

func TestRedisLockReleaseSkipsWhenOwnerChanged(t *testing.T) {
	store := &fakeRedisStore{setNXResult: true}
	lock, err := NewRedisLock(store, "consignd:lock:scheduler", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	if _, err := lock.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// TTL expired and another instance took the lock.
	store.stored = "someone-else"
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
	if len(store.deleted) != 0 {
		t.Fatalf("must not delete a lock owned by another instance, got %v", store.deleted)
	}
}

func TestRedisLockReleaseSwallowsMissingKey(t *testing.T) {
	store := &fakeRedisStore{setNXResult: true, getErr: redis.Nil}
	lock, err := NewRedisLock(store, "consignd:lock:scheduler", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	if _, err := lock.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release after key expiry: %v", err)
	}
}
