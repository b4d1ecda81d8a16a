// Package http exposes the application services as a JSON API.
package http

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
	"go.uber.org/zap"

	"github.com/neomorfeo/nexcart/internal/app"
)

// Services are the application services behind the API.
type Services struct {
	Tenants   *app.TenantService
	Catalog   *app.CatalogService
	Customers *app.CustomerService
	Carts     *app.CartService
	Orders    *app.OrderService
	Wishlists *app.WishlistService
}

// NewRouter builds the chi router with the Huma API mounted on it. Extra
// routes such as /metrics can be added by the caller.
func NewRouter(name, version string, svc Services, logger *zap.Logger) *chi.Mux {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware(name, otelchi.WithChiRoutes(router)))
	router.Use(RequestLogger(logger))
	router.Use(Scope)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})

	api := humachi.New(router, huma.DefaultConfig(name, version))
	Register(api, svc)
	return router
}

// Register adds every API route to api. Services left nil are skipped.
func Register(api huma.API, svc Services) {
	if svc.Tenants != nil {
		registerTenants(api, svc.Tenants)
	}
	if svc.Catalog != nil {
		registerCatalog(api, svc.Catalog)
	}
	if svc.Customers != nil {
		registerCustomers(api, svc.Customers)
	}
	if svc.Carts != nil {
		registerCarts(api, svc.Carts)
	}
	if svc.Orders != nil {
		registerOrders(api, svc.Orders)
	}
	if svc.Wishlists != nil {
		registerWishlists(api, svc.Wishlists)
	}
}
