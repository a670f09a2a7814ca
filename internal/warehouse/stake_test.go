package warehouse

import (
	"context"
	"testing"

	"github.com/consignd/commerce-backend/internal/commerce"
)

func TestAdjustForStakeRounding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		gross int
		pct   int
		want  int
	}{
		{gross: 100, pct: 25, want: 25},
		{gross: 90, pct: 25, want: 22},
		{gross: 7, pct: 50, want: 3},
		{gross: 1, pct: 99, want: 0},
		{gross: 100, pct: 100, want: 100},
		{gross: 100, pct: 0, want: 0},
		{gross: 0, pct: 50, want: 0},
	}

	for _, tt := range tests {
		items := []commerce.Product{{ID: "p1", Quantity: tt.gross}}
		got := AdjustForStake(items, tt.pct)
		if got[0].Quantity != tt.want {
			t.Fatalf("adjust(%d, %d) = %d, want %d", tt.gross, tt.pct, got[0].Quantity, tt.want)
		}
	}
}

func TestAdjustForStakeLeavesInputIntact(t *testing.T) {
	t.Parallel()

	items := []commerce.Product{
		{ID: "p1", SKU: "SKU-1", Quantity: 100},
		{ID: "p2", SKU: "SKU-2", Quantity: 90},
	}
	adjusted := AdjustForStake(items, 25)

	if items[0].Quantity != 100 || items[1].Quantity != 90 {
		t.Fatalf("input slice mutated: %+v", items)
	}
	if adjusted[0].Quantity != 25 || adjusted[1].Quantity != 22 {
		t.Fatalf("unexpected adjusted quantities: %+v", adjusted)
	}
	if adjusted[0].SKU != "SKU-1" {
		t.Fatalf("non-quantity fields must carry over, got %+v", adjusted[0])
	}
}

func TestMockFetchAndSubmit(t *testing.T) {
	t.Parallel()

	mock := NewMock()
	items, err := mock.FetchGrossInventory(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("expected seeded feed")
	}

	mock.SetFeed([]commerce.Product{{ID: "p1", Quantity: 10}})
	items, err = mock.FetchGrossInventory(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "p1" {
		t.Fatalf("unexpected feed %+v", items)
	}

	receipt, err := mock.SubmitOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(receipt) == 0 {
		t.Fatal("expected opaque receipt payload")
	}
}
