package bus

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func TestMemoryDeliversToAllSubscribers(t *testing.T) {
	t.Parallel()

	b := NewMemory(nil)
	var mu sync.Mutex
	got := map[int]Event{}
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		idx := i
		b.Subscribe(func(ctx context.Context, event Event) {
			mu.Lock()
			got[idx] = event
			mu.Unlock()
			wg.Done()
		})
	}

	event, err := NewEvent(KindItemAdded, ItemPayload{CartID: "c1", ProductID: "p1", Quantity: 2})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if err := b.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	waitOn(t, &wg)

	mu.Lock()
	defer mu.Unlock()
	for idx, delivered := range got {
		if delivered.Kind != KindItemAdded {
			t.Fatalf("subscriber %d got kind %s", idx, delivered.Kind)
		}
		var payload ItemPayload
		if err := json.Unmarshal(delivered.Data, &payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.CartID != "c1" || payload.Quantity != 2 {
			t.Fatalf("subscriber %d got payload %+v", idx, payload)
		}
	}
}

func TestMemoryPanickingHandlerDoesNotBlockPeers(t *testing.T) {
	t.Parallel()

	b := NewMemory(nil)
	b.Subscribe(func(ctx context.Context, event Event) {
		panic("handler exploded")
	})

	var wg sync.WaitGroup
	wg.Add(1)
	b.Subscribe(func(ctx context.Context, event Event) {
		wg.Done()
	})

	event, err := NewEvent(KindItemRemoved, ItemPayload{CartID: "c1", ProductID: "p1"})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if err := b.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	waitOn(t, &wg)
}

func TestMemoryShutdownStopsPublishing(t *testing.T) {
	t.Parallel()

	b := NewMemory(nil)
	if err := b.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	event, err := NewEvent(KindOrderPlaced, OrderPlacedPayload{CartID: "c1", OrderID: "o1"})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if err := b.Publish(context.Background(), event); err == nil {
		t.Fatal("expected publish after shutdown to fail")
	}
}

func TestEventKindValidation(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{KindCatalogSynced, KindSyncFailed, KindItemAdded, KindItemRemoved, KindItemExpired, KindOrderPlaced} {
		if !kind.IsValid() {
			t.Fatalf("expected %s to be valid", kind)
		}
	}
	if Kind("made-up").IsValid() {
		t.Fatal("expected unknown kind to be invalid")
	}
}

func TestNewEventStampsEnvelope(t *testing.T) {
	t.Parallel()

	event, err := NewEvent(KindCatalogSynced, CatalogSyncedPayload{ProductCount: 5})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if event.ID == "" {
		t.Fatal("expected generated event id")
	}
	if event.PublishedAt.IsZero() {
		t.Fatal("expected publish timestamp")
	}
}

func waitOn(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for deliveries")
	}
}
