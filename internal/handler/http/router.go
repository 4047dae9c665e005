package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasiliy-maslov/ecommerce-backend/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/order"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/product"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/user"
)

// NewRouter mounts every handler under /api, next to a plain /health probe.
func NewRouter(users user.Service, products product.Service, carts cart.Service, orders order.Service) *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		NewUserHandler(users).RegisterRoutes(api)
		NewProductHandler(products).RegisterRoutes(api)
		NewCartHandler(carts).RegisterRoutes(api)
		NewOrderHandler(orders).RegisterRoutes(api)
	})

	return r
}
