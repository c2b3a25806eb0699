package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/orders"
)

type OrdersHandler struct {
	repo orders.Repository
	log  logrus.FieldLogger
}

func NewOrdersHandler(repo orders.Repository, log logrus.FieldLogger) *OrdersHandler {
	return &OrdersHandler{repo: repo, log: log}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	list, err := h.repo.ListOrdersBySession(r.Context(), s.ID)
	if err != nil {
		logger.FromContext(r.Context(), h.log).WithError(err).Error("failed to list orders")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	dtos := make([]OrderResponseDTO, 0, len(list))
	for _, o := range list {
		dtos = append(dtos, convertOrder(o))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	o, err := h.repo.GetOrderByID(r.Context(), id)
	// another session's order is reported as missing
	if errors.Is(err, orders.ErrOrderNotFound) || (err == nil && o.SessionID != s.ID) {
		respondError(w, http.StatusNotFound, "order_not_found", "order not found")
		return
	}
	if err != nil {
		logger.FromContext(r.Context(), h.log).WithError(err).Error("failed to get order")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(o))
}
