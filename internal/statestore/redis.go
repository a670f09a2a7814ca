package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/consignd/commerce-backend/internal/commerce"
	pkgerrors "github.com/consignd/commerce-backend/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

// kvStore is the slice of the redis client the store needs.
type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Redis persists the snapshot as JSON at one namespaced ledger key.
// The snapshot has no TTL; the ledger outlives the process.
type Redis struct {
	kv  kvStore
	key string
}

// NewRedis builds a redis-backed store for the given ledger key.
func NewRedis(kv kvStore, key string) (*Redis, error) {
	if kv == nil {
		return nil, errors.New("redis client required")
	}
	if key == "" {
		return nil, errors.New("ledger key required")
	}
	return &Redis{kv: kv, key: key}, nil
}

func (r *Redis) Get(ctx context.Context) (*commerce.Snapshot, error) {
	raw, err := r.kv.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotInitialized
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading ledger snapshot")
	}
	var snapshot commerce.Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding ledger snapshot")
	}
	if snapshot.Products == nil {
		snapshot.Products = map[string]commerce.Product{}
	}
	if snapshot.Carts == nil {
		snapshot.Carts = map[string]commerce.Cart{}
	}
	if snapshot.Orders == nil {
		snapshot.Orders = map[string]commerce.Order{}
	}
	return &snapshot, nil
}

func (r *Redis) Set(ctx context.Context, snapshot *commerce.Snapshot) error {
	if snapshot == nil {
		return errors.New("snapshot must not be nil")
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding ledger snapshot: %w", err)
	}
	if err := r.kv.Set(ctx, r.key, string(raw), 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing ledger snapshot")
	}
	return nil
}

// Shutdown is a no-op; the shared redis connection is owned by the
// caller that built it.
func (r *Redis) Shutdown(ctx context.Context) error {
	return nil
}
