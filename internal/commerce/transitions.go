package commerce

import (
	"fmt"
	"time"

	pkgerrors "github.com/consignd/commerce-backend/pkg/errors"
)

// Rejections are expected business-rule outcomes, never fatal faults.
// They are returned as-is so callers can match them with errors.Is.
var (
	ErrInsufficientInventory  = pkgerrors.New(pkgerrors.CodeConflict, "insufficient inventory")
	ErrDuplicateProductInCart = pkgerrors.New(pkgerrors.CodeConflict, "product already in cart")
	ErrEmptyOrMissingCart     = pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty or missing")
)

// ExpiredItem identifies a reservation removed by an expiration sweep.
type ExpiredItem struct {
	CartID    string
	ProductID string
}

// AddToCart reserves quantity units of a product in the given cart,
// creating the cart when needed. The availability check and the
// duplicate-product check happen against the provided snapshot, so the
// caller must fetch it immediately before calling and serialize
// concurrent transitions on the same ledger.
func AddToCart(s *Snapshot, cartID, productID string, quantity int, ttl time.Duration, now time.Time) (*Snapshot, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be positive, got %d", quantity))
	}
	if Available(s, productID) < quantity {
		return nil, ErrInsufficientInventory
	}
	if cart, ok := s.Carts[cartID]; ok {
		for _, item := range cart.Items {
			if item.ProductID == productID {
				return nil, ErrDuplicateProductInCart
			}
		}
	}

	next := s.Clone()
	cart, ok := next.Carts[cartID]
	if !ok {
		cart = Cart{ID: cartID}
	}
	cart.Items = append(cart.Items, CartItem{
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   now,
		ExpiresAt: now.Add(ttl),
	})
	next.Carts[cartID] = cart
	return next, nil
}

// RemoveFromCart drops a product's reservation from a cart. An absent
// cart or absent item is a no-op; a cart emptied by the removal is
// deleted entirely.
func RemoveFromCart(s *Snapshot, cartID, productID string) *Snapshot {
	cart, ok := s.Carts[cartID]
	if !ok {
		return s
	}
	remaining := make([]CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.ProductID != productID {
			remaining = append(remaining, item)
		}
	}
	if len(remaining) == len(cart.Items) {
		return s
	}

	next := s.Clone()
	if len(remaining) == 0 {
		delete(next.Carts, cartID)
		return next
	}
	cart.Items = remaining
	next.Carts[cartID] = cart
	return next
}

// PurchaseCart converts a non-empty cart into an order under the given
// order id and deletes the cart in the same transition. Order id
// collisions are not checked; the caller supplies unique ids.
func PurchaseCart(s *Snapshot, cartID, orderID string, now time.Time) (*Snapshot, error) {
	cart, ok := s.Carts[cartID]
	if !ok || len(cart.Items) == 0 {
		return nil, ErrEmptyOrMissingCart
	}

	next := s.Clone()
	items := next.Carts[cartID].Items
	delete(next.Carts, cartID)
	next.Orders[orderID] = Order{
		ID:       orderID,
		CartID:   cartID,
		Items:    items,
		PlacedAt: now,
	}
	return next, nil
}

// ExpireCartItems sweeps every cart and removes items whose expiresAt
// has passed, deleting carts that become empty. It never fails; with
// nothing expired it returns the input snapshot unchanged.
func ExpireCartItems(s *Snapshot, now time.Time) (*Snapshot, []ExpiredItem) {
	var expired []ExpiredItem
	for cartID, cart := range s.Carts {
		for _, item := range cart.Items {
			if !item.ExpiresAt.After(now) {
				expired = append(expired, ExpiredItem{CartID: cartID, ProductID: item.ProductID})
			}
		}
	}
	if len(expired) == 0 {
		return s, nil
	}

	next := s
	for _, item := range expired {
		next = RemoveFromCart(next, item.CartID, item.ProductID)
	}
	return next, expired
}

// SyncInventory replaces the catalog wholesale with the given product
// list and stamps the sync time. An empty list yields an empty catalog:
// the warehouse feed is authoritative, so this replaces rather than
// merges. Carts are preserved. When clearOrders is set, order records
// are dropped on the assumption that the feed already accounts for
// previously submitted orders.
func SyncInventory(s *Snapshot, products []Product, now time.Time, clearOrders bool) *Snapshot {
	next := s.Clone()
	next.Products = make(map[string]Product, len(products))
	for _, product := range products {
		next.Products[product.ID] = product
	}
	next.LastSync = now
	if clearOrders {
		next.Orders = map[string]Order{}
	}
	return next
}
