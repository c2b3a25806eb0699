package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	d "github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
)

const maxQuantity = 99

type CartHandler struct {
	catalog *catalog.Catalog
	taxRate decimal.Decimal
}

func NewCartHandler(c *catalog.Catalog, taxRate decimal.Decimal) *CartHandler {
	if taxRate.IsZero() {
		taxRate = pricing.DefaultTaxRate
	}
	return &CartHandler{catalog: c, taxRate: taxRate}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, h.cartResponse(s.Cart))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}
	product, err := h.catalog.Get(req.ProductID)
	if err != nil {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}

	// quantities below one are counted as one by the store
	s.Cart.AddItem(r.Context(), product.Item(), req.Quantity)
	respondJSON(w, http.StatusCreated, h.cartResponse(s.Cart))
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	productID := chi.URLParam(r, "product_id")

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	// zero or less removes the line
	s.Cart.UpdateQuantity(r.Context(), productID, req.Quantity)
	respondJSON(w, http.StatusOK, h.cartResponse(s.Cart))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	s.Cart.RemoveItem(r.Context(), chi.URLParam(r, "product_id"))
	respondJSON(w, http.StatusOK, h.cartResponse(s.Cart))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	s.Cart.ClearCart(r.Context())
	respondJSON(w, http.StatusOK, h.cartResponse(s.Cart))
}

func (h *CartHandler) cartResponse(c *cart.Store) CartResponse {
	items := c.Items()
	if items == nil {
		items = []d.CartItem{}
	}
	return CartResponse{Items: items, Pricing: toPricingDTO(pricing.Compute(items, h.taxRate))}
}
