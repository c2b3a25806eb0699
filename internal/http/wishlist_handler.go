package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	d "github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/wishlist"
)

type WishlistHandler struct {
	catalog *catalog.Catalog
}

func NewWishlistHandler(c *catalog.Catalog) *WishlistHandler {
	return &WishlistHandler{catalog: c}
}

// GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, wishlistResponse(s.Wishlist))
}

// POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var req WishlistItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	product, err := h.catalog.Get(req.ProductID)
	if err != nil {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}

	s.Wishlist.AddItem(r.Context(), product.Item())
	respondJSON(w, http.StatusCreated, wishlistResponse(s.Wishlist))
}

// DELETE /api/v1/wishlist/items/{product_id}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	s.Wishlist.RemoveItem(r.Context(), chi.URLParam(r, "product_id"))
	respondJSON(w, http.StatusOK, wishlistResponse(s.Wishlist))
}

// POST /api/v1/wishlist/items/{product_id}/toggle
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	product, err := h.catalog.Get(chi.URLParam(r, "product_id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}

	in := s.Wishlist.Toggle(r.Context(), product.Item())
	respondJSON(w, http.StatusOK, ToggleResponse{InWishlist: in, Wishlist: wishlistResponse(s.Wishlist)})
}

func wishlistResponse(wl *wishlist.Store) WishlistResponse {
	items := wl.Items()
	if items == nil {
		items = []d.WishlistItem{}
	}
	return WishlistResponse{Items: items, Count: len(items)}
}
