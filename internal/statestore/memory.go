package statestore

import (
	"context"
	"errors"
	"sync"

	"github.com/consignd/commerce-backend/internal/commerce"
)

// Memory keeps the snapshot in process memory. Get and Set exchange
// deep copies, so callers can never alias the stored state.
type Memory struct {
	mu       sync.Mutex
	snapshot *commerce.Snapshot
	closed   bool
}

// NewMemory builds an in-memory store, optionally seeded with an
// initial snapshot.
func NewMemory(initial *commerce.Snapshot) *Memory {
	return &Memory{snapshot: initial.Clone()}
}

func (m *Memory) Get(ctx context.Context) (*commerce.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("state store is shut down")
	}
	if m.snapshot == nil {
		return nil, ErrNotInitialized
	}
	return m.snapshot.Clone(), nil
}

func (m *Memory) Set(ctx context.Context, snapshot *commerce.Snapshot) error {
	if snapshot == nil {
		return errors.New("snapshot must not be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("state store is shut down")
	}
	m.snapshot = snapshot.Clone()
	return nil
}

func (m *Memory) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.snapshot = nil
	return nil
}
