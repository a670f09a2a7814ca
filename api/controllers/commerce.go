package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/consignd/commerce-backend/api/responses"
	"github.com/consignd/commerce-backend/api/validators"
	"github.com/consignd/commerce-backend/internal/commerce"
	pkgerrors "github.com/consignd/commerce-backend/pkg/errors"
	"github.com/consignd/commerce-backend/pkg/logger"
)

// CommerceService is the reservation surface exposed over HTTP.
type CommerceService interface {
	GetAvailability(ctx context.Context, productID string) (int, error)
	GetState(ctx context.Context) (*commerce.Snapshot, error)
	AddToCart(ctx context.Context, cartID, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, cartID, productID string) error
	PurchaseCart(ctx context.Context, cartID, orderID string) (string, error)
	SyncNow(ctx context.Context) error
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type purchaseRequest struct {
	OrderID string `json:"order_id"`
}

// ProductAvailability reports the purchasable quantity of one product.
func ProductAvailability(svc CommerceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productId")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}
		available, err := svc.GetAvailability(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"product_id": productID,
			"available":  available,
		})
	}
}

// LedgerState returns the full reservation snapshot.
func LedgerState(svc CommerceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := svc.GetState(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// CartAddItem reserves a product in the cart named by the URL.
func CartAddItem(svc CommerceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID := chi.URLParam(r, "cartId")
		var req addItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithCartID(r.Context(), cartID)
		ctx = logg.WithProductID(ctx, req.ProductID)
		if err := svc.AddToCart(ctx, cartID, req.ProductID, req.Quantity); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"cart_id":    cartID,
			"product_id": req.ProductID,
			"quantity":   req.Quantity,
		})
	}
}

// CartRemoveItem releases a product's reservation. Removing something
// not reserved still succeeds.
func CartRemoveItem(svc CommerceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID := chi.URLParam(r, "cartId")
		productID := chi.URLParam(r, "productId")
		ctx := logg.WithCartID(r.Context(), cartID)
		ctx = logg.WithProductID(ctx, productID)
		if err := svc.RemoveFromCart(ctx, cartID, productID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"cart_id":    cartID,
			"product_id": productID,
		})
	}
}

// CartPurchase converts the cart into an order. The body may name an
// order id; with no body one is generated.
func CartPurchase(svc CommerceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID := chi.URLParam(r, "cartId")
		var req purchaseRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		ctx := logg.WithCartID(r.Context(), cartID)
		orderID, err := svc.PurchaseCart(ctx, cartID, req.OrderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"cart_id":  cartID,
			"order_id": orderID,
		})
	}
}

// InventorySync triggers a catalog refresh outside the schedule.
func InventorySync(svc CommerceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.SyncNow(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "synced"})
	}
}
