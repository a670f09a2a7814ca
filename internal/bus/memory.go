package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/consignd/commerce-backend/pkg/logger"
)

// Memory fans events out to in-process subscribers. Each delivery runs
// in its own goroutine, so a slow or panicking handler cannot block the
// publisher or the other subscribers.
type Memory struct {
	logg *logger.Logger

	mu       sync.Mutex
	handlers []Handler
	closed   bool
	inflight sync.WaitGroup
}

// NewMemory builds an in-process bus.
func NewMemory(logg *logger.Logger) *Memory {
	return &Memory{logg: logg}
}

func (m *Memory) Publish(ctx context.Context, event Event) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return fmt.Errorf("bus is shut down")
	}
	handlers := make([]Handler, len(m.handlers))
	copy(handlers, m.handlers)
	m.inflight.Add(len(handlers))
	m.mu.Unlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer m.inflight.Done()
			defer func() {
				if rec := recover(); rec != nil && m.logg != nil {
					ctx := m.logg.WithField(context.Background(), "event_kind", event.Kind.String())
					m.logg.Error(ctx, "event handler panicked", fmt.Errorf("panic: %v", rec))
				}
			}()
			h(context.WithoutCancel(ctx), event)
		}(handler)
	}
	return nil
}

func (m *Memory) Subscribe(handler Handler) {
	if handler == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.handlers = append(m.handlers, handler)
}

// Shutdown stops accepting publishes and waits for in-flight deliveries.
func (m *Memory) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.handlers = nil
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
