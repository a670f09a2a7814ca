package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/consignd/commerce-backend/api/controllers"
	"github.com/consignd/commerce-backend/api/middleware"
	"github.com/consignd/commerce-backend/pkg/config"
	"github.com/consignd/commerce-backend/pkg/logger"
)

// RouterParams carries the router's collaborators.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Commerce controllers.CommerceService
	Redis    controllers.Pinger
	Gatherer prometheus.Gatherer
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.Redis))
	})

	if params.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(params.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products/{productId}/availability", controllers.ProductAvailability(params.Commerce, logg))
		r.Get("/state", controllers.LedgerState(params.Commerce, logg))
		r.Post("/inventory/sync", controllers.InventorySync(params.Commerce, logg))

		r.Route("/carts/{cartId}", func(r chi.Router) {
			r.Post("/items", controllers.CartAddItem(params.Commerce, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(params.Commerce, logg))
			r.Post("/purchase", controllers.CartPurchase(params.Commerce, logg))
		})
	})

	return r
}
