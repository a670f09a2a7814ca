package commerce

// Available derives the sellable quantity for a product: its net catalog
// quantity minus every matching reservation across carts and orders,
// clamped at zero. Untracked products have zero availability. The result
// is recomputed from the snapshot on every call; it is never persisted
// or cached.
func Available(s *Snapshot, productID string) int {
	if s == nil {
		return 0
	}
	product, ok := s.Products[productID]
	if !ok {
		return 0
	}

	available := product.Quantity
	for _, cart := range s.Carts {
		for _, item := range cart.Items {
			if item.ProductID == productID {
				available -= item.Quantity
			}
		}
	}
	for _, order := range s.Orders {
		for _, item := range order.Items {
			if item.ProductID == productID {
				available -= item.Quantity
			}
		}
	}

	if available < 0 {
		return 0
	}
	return available
}
