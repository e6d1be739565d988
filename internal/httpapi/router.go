package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	RequestTimeout time.Duration
}

// NewRouter assembles the storefront API. Catalog and banner routes are
// public; cart, session, order, and account routes require a bearer token.
func NewRouter(
	cfg RouterConfig,
	orders *OrderHandler,
	carts *CartHandler,
	catalog *CatalogHandler,
	banners *BannerHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(AuthMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalog.ListProducts)
			r.Get("/{product_id}", catalog.GetProduct)
			r.Get("/{product_id}/reviews", catalog.ListReviews)
			r.Post("/{product_id}/reviews", catalog.AddReview)
		})

		r.Route("/banners", func(r chi.Router) {
			r.Get("/", banners.Active)
			r.Get("/next", banners.Next)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Delete("/", carts.ClearCart)
			r.Post("/items", carts.AddItem)
			r.Put("/items/{product_id}", carts.UpdateQuantity)
			r.Delete("/items/{product_id}", carts.RemoveItem)
			r.Post("/session", carts.CreateSession)
			r.Get("/session/{session_id}", carts.GetSession)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orders.PlaceOrder)
			r.Get("/", orders.ListOrders)
			r.Get("/{order_id}", orders.GetOrder)
		})

		r.Get("/account/stats", orders.CustomerStats)
	})

	return r
}
