package bus

// CatalogSyncedPayload reports a completed supply sync.
type CatalogSyncedPayload struct {
	ProductCount int `json:"product_count"`
}

// SyncFailedPayload carries the failure detail of a skipped sync cycle.
type SyncFailedPayload struct {
	Error string `json:"error"`
}

// ItemPayload identifies one cart reservation.
type ItemPayload struct {
	CartID    string `json:"cart_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity,omitempty"`
}

// OrderPlacedPayload reports a cart converted into an order.
type OrderPlacedPayload struct {
	CartID  string `json:"cart_id"`
	OrderID string `json:"order_id"`
}
