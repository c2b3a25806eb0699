package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/session"
)

type RouterConfig struct {
	Sessions           *session.Manager
	Catalog            *catalog.Catalog
	Orders             orders.Repository
	TaxRate            decimal.Decimal
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	Log                logrus.FieldLogger
}

func NewRouter(cfg RouterConfig) http.Handler {
	products := NewProductHandler(cfg.Catalog)
	carts := NewCartHandler(cfg.Catalog, cfg.TaxRate)
	wishlists := NewWishlistHandler(cfg.Catalog)
	checkouts := NewCheckoutHandler(cfg.Log)
	orderHandler := NewOrdersHandler(cfg.Orders, cfg.Log)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(cfg.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.Sessions))

		// payment carries its own timeout
		r.Post("/checkout", checkouts.Submit)

		r.Group(func(r chi.Router) {
			if cfg.RequestTimeout > 0 {
				r.Use(middleware.Timeout(cfg.RequestTimeout))
			}

			r.Route("/products", func(r chi.Router) {
				r.Get("/", products.List)
				r.Get("/{product_id}", products.Get)
			})
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", carts.GetCart)
				r.Delete("/", carts.ClearCart)
				r.Post("/items", carts.AddItem)
				r.Put("/items/{product_id}", carts.UpdateQuantity)
				r.Delete("/items/{product_id}", carts.RemoveItem)
			})
			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlists.GetWishlist)
				r.Post("/items", wishlists.AddItem)
				r.Delete("/items/{product_id}", wishlists.RemoveItem)
				r.Post("/items/{product_id}/toggle", wishlists.Toggle)
			})
			r.Get("/checkout", checkouts.Mount)
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.ListOrders)
				r.Get("/{order_id}", orderHandler.GetOrder)
			})
		})
	})

	return r
}
