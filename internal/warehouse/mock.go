package warehouse

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/consignd/commerce-backend/internal/commerce"
)

// Mock serves a fixed inventory feed from memory. It backs local
// development and tests where no vendor endpoint exists.
type Mock struct {
	mu    sync.Mutex
	items []commerce.Product
}

// NewMock builds a mock warehouse, seeded with a default feed when no
// items are given.
func NewMock(items ...commerce.Product) *Mock {
	if len(items) == 0 {
		items = defaultFeed()
	}
	return &Mock{items: items}
}

func (m *Mock) FetchGrossInventory(ctx context.Context) ([]commerce.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]commerce.Product, len(m.items))
	copy(out, m.items)
	return out, nil
}

// SetFeed replaces the feed served by subsequent fetches.
func (m *Mock) SetFeed(items []commerce.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make([]commerce.Product, len(items))
	copy(m.items, items)
}

func (m *Mock) SubmitOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	receipt := map[string]string{"vendor_order_id": orderID, "status": "accepted"}
	raw, err := json.Marshal(receipt)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func defaultFeed() []commerce.Product {
	return []commerce.Product{
		{ID: "og-kush-1", SKU: "OGK-001", Name: "OG Kush", Category: "Flower", BatchID: "B2024-001", Quantity: 100},
		{ID: "blue-dream-1", SKU: "BLD-001", Name: "Blue Dream", Category: "Flower", BatchID: "B2024-002", Quantity: 150},
		{ID: "sour-diesel-1", SKU: "SRD-001", Name: "Sour Diesel", Category: "Flower", BatchID: "B2024-003", Quantity: 80},
		{ID: "gelato-1", SKU: "GEL-001", Name: "Gelato", Category: "Flower", BatchID: "B2024-004", Quantity: 120},
		{ID: "gsc-1", SKU: "GSC-001", Name: "Girl Scout Cookies", Category: "Flower", BatchID: "B2024-005", Quantity: 90},
	}
}
