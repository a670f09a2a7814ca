// Package bus delivers fire-and-forget domain events. Delivery order
// across subscribers is unspecified and a failing handler never blocks
// the publisher or its peers.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind names a domain event emitted by the reservation core.
type Kind string

const (
	KindCatalogSynced Kind = "catalog-synced"
	KindSyncFailed    Kind = "sync-failed"
	KindItemAdded     Kind = "item-added"
	KindItemRemoved   Kind = "item-removed"
	KindItemExpired   Kind = "item-expired"
	KindOrderPlaced   Kind = "order-placed"
)

var validKinds = []Kind{
	KindCatalogSynced,
	KindSyncFailed,
	KindItemAdded,
	KindItemRemoved,
	KindItemExpired,
	KindOrderPlaced,
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known event kind.
func (k Kind) IsValid() bool {
	for _, candidate := range validKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// Event is the envelope carried by every bus variant.
type Event struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	Data        json.RawMessage `json:"data"`
	PublishedAt time.Time       `json:"published_at"`
}

// NewEvent stamps an envelope with a fresh id and the encoded payload.
func NewEvent(kind Kind, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encoding %s payload: %w", kind, err)
	}
	return Event{
		ID:          uuid.NewString(),
		Kind:        kind,
		Data:        data,
		PublishedAt: time.Now().UTC(),
	}, nil
}

// Handler consumes one event. Handlers must tolerate duplicates.
type Handler func(ctx context.Context, event Event)

// Bus is the notification collaborator consumed by the commerce core.
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(handler Handler)
	Shutdown(ctx context.Context) error
}
