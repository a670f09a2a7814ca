package commerce

import (
	"testing"
	"time"
)

func TestAvailableSubtractsCartAndOrderHolds(t *testing.T) {
	t.Parallel()

	s := NewSnapshot()
	s.Products["p1"] = Product{ID: "p1", Quantity: 10}
	s.Carts["cart-1"] = Cart{ID: "cart-1", Items: []CartItem{{ProductID: "p1", Quantity: 3}}}
	s.Carts["cart-2"] = Cart{ID: "cart-2", Items: []CartItem{{ProductID: "p1", Quantity: 2}}}
	s.Orders["order-1"] = Order{ID: "order-1", Items: []CartItem{{ProductID: "p1", Quantity: 4}}}

	if got := Available(s, "p1"); got != 1 {
		t.Fatalf("expected 10-3-2-4=1, got %d", got)
	}
}

func TestAvailableClampsAtZero(t *testing.T) {
	t.Parallel()

	s := NewSnapshot()
	s.Products["p1"] = Product{ID: "p1", Quantity: 2}
	s.Orders["order-1"] = Order{ID: "order-1", Items: []CartItem{{ProductID: "p1", Quantity: 5}}}

	if got := Available(s, "p1"); got != 0 {
		t.Fatalf("availability must clamp at zero, got %d", got)
	}
}

func TestAvailableUnknownProductIsZero(t *testing.T) {
	t.Parallel()

	if got := Available(NewSnapshot(), "ghost"); got != 0 {
		t.Fatalf("unknown product must report zero, got %d", got)
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	t.Parallel()

	s := NewSnapshot()
	s.Products["p1"] = Product{ID: "p1", Quantity: 10}
	s.Carts["cart-1"] = Cart{ID: "cart-1", Items: []CartItem{{ProductID: "p1", Quantity: 3, ExpiresAt: time.Now()}}}

	clone := s.Clone()
	clone.Products["p1"] = Product{ID: "p1", Quantity: 99}
	cart := clone.Carts["cart-1"]
	cart.Items[0].Quantity = 99
	clone.Carts["cart-1"] = cart

	if s.Products["p1"].Quantity != 10 {
		t.Fatal("clone must not share the products map")
	}
	if s.Carts["cart-1"].Items[0].Quantity != 3 {
		t.Fatal("clone must not share cart item slices")
	}
}
