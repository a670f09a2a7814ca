// Package warehouse integrates with the third-party fulfiller that
// physically holds the inventory. The feed reports gross quantities;
// the stake adjustment converts them into the seller's net claim.
package warehouse

import (
	"context"
	"encoding/json"

	"github.com/consignd/commerce-backend/internal/commerce"
)

// Client is the fulfillment collaborator consumed by the commerce core.
// FetchGrossInventory may fail; callers skip the sync cycle and keep
// the previous catalog. SubmitOrder is a fire-and-forget downstream
// step whose result does not affect reservation correctness.
type Client interface {
	FetchGrossInventory(ctx context.Context) ([]commerce.Product, error)
	SubmitOrder(ctx context.Context, orderID string) (json.RawMessage, error)
}
