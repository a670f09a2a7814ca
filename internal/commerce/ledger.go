package commerce

import "time"

// Product is one catalog line after stake adjustment. Quantity is the
// seller's net claimable units, not warehouse gross. The catalog is
// replaced wholesale on every sync and never mutated in place.
type Product struct {
	ID       string `json:"id"`
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Category string `json:"category"`
	BatchID  string `json:"batch_id"`
	Quantity int    `json:"quantity"`
}

// CartItem is a reservation holding inventory until purchase or expiration.
// A cart holds at most one item per product.
type CartItem struct {
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Cart exists only while it has at least one item. Removal of the last
// item deletes the cart entirely.
type Cart struct {
	ID    string     `json:"id"`
	Items []CartItem `json:"items"`
}

// Order is created atomically from a non-empty cart at purchase time.
type Order struct {
	ID       string     `json:"id"`
	CartID   string     `json:"cart_id"`
	Items    []CartItem `json:"items"`
	PlacedAt time.Time  `json:"placed_at"`
}

// Snapshot is the complete ledger state at one instant. Transitions
// never mutate a snapshot; they return a new one, so a rejected
// operation always leaves the prior snapshot intact.
type Snapshot struct {
	Products map[string]Product `json:"products"`
	Carts    map[string]Cart    `json:"carts"`
	Orders   map[string]Order   `json:"orders"`
	LastSync time.Time          `json:"last_sync"`
}

// NewSnapshot returns an empty initialized ledger.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Products: map[string]Product{},
		Carts:    map[string]Cart{},
		Orders:   map[string]Order{},
	}
}

// Clone deep-copies the snapshot, including every item slice.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Products: make(map[string]Product, len(s.Products)),
		Carts:    make(map[string]Cart, len(s.Carts)),
		Orders:   make(map[string]Order, len(s.Orders)),
		LastSync: s.LastSync,
	}
	for id, product := range s.Products {
		out.Products[id] = product
	}
	for id, cart := range s.Carts {
		cart.Items = cloneItems(cart.Items)
		out.Carts[id] = cart
	}
	for id, order := range s.Orders {
		order.Items = cloneItems(order.Items)
		out.Orders[id] = order
	}
	return out
}

func cloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
