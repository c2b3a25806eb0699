package http

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	d "github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/session"
)

type CheckoutHandler struct {
	log logrus.FieldLogger
}

func NewCheckoutHandler(log logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{log: log}
}

// GET /api/v1/checkout
func (h *CheckoutHandler) Mount(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	flow := s.Checkout()

	if err := flow.Mount(r.Context()); err != nil {
		h.respondFlowError(w, r, s, flow, err)
		return
	}
	respondJSON(w, http.StatusOK, checkoutState(s, flow))
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	flow := s.Checkout()
	if !flow.Mounted() {
		if err := flow.Mount(r.Context()); err != nil {
			h.respondFlowError(w, r, s, flow, err)
			return
		}
	}

	// fields in the body override the form kept from an earlier attempt;
	// an empty body resubmits it as is
	form := flow.Form()
	if err := decodeJSON(r, &form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := flow.SetForm(form); err != nil {
		h.respondFlowError(w, r, s, flow, err)
		return
	}

	conf, err := flow.Submit(r.Context())
	if err != nil {
		h.respondFlowError(w, r, s, flow, err)
		return
	}

	notifications, redirect := s.Inbox.Drain()
	respondJSON(w, http.StatusCreated, ConfirmationDTO{
		OrderID:       conf.OrderID,
		TransactionID: conf.TransactionID,
		Buyer:         toBuyerDTO(conf.Buyer),
		PaymentMethod: string(conf.Method),
		Payment:       conf.Payment,
		Items:         conf.Items,
		Pricing:       toPricingDTO(conf.Pricing),
		Currency:      conf.Currency,
		PlacedAt:      conf.PlacedAt,
		Redirect:      redirect,
		Notifications: notifications,
	})
}

func checkoutState(s *session.Session, flow *checkout.Flow) CheckoutStateDTO {
	form := flow.Form()
	items := s.Cart.Items()
	if items == nil {
		items = []d.CartItem{}
	}
	notifications, _ := s.Inbox.Drain()

	state := CheckoutStateDTO{
		Status:        flow.Status().String(),
		OrderID:       flow.OrderID(),
		Buyer:         toBuyerDTO(form.Buyer),
		PaymentMethod: string(form.Payment.Method),
		Items:         items,
		Pricing:       toPricingDTO(flow.Pricing()),
		Notifications: notifications,
	}
	if form.Payment.Method != "" {
		state.Payment = form.Payment.Masked()
	}
	return state
}

func (h *CheckoutHandler) respondFlowError(w http.ResponseWriter, r *http.Request, s *session.Session, flow *checkout.Flow, err error) {
	notifications, redirect := s.Inbox.Drain()

	if errors.Is(err, checkout.ErrEmptyCart) {
		if redirect == "" {
			redirect = checkout.ShopPath
		}
		w.Header().Set("Location", redirect)
		respondJSON(w, http.StatusSeeOther, RedirectDTO{Redirect: redirect, Notifications: notifications})
		return
	}

	resp := CheckoutErrorResponse{
		Status:        flow.Status().String(),
		Redirect:      redirect,
		Notifications: notifications,
	}
	status := http.StatusInternalServerError

	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		resp.ErrorResponse = ErrorResponse{Error: "checkout form is incomplete", Code: "validation_failed", Fields: verr.Fields}
	case errors.Is(err, checkout.ErrSubmitInProgress):
		status = http.StatusConflict
		resp.ErrorResponse = ErrorResponse{Error: err.Error(), Code: "submit_in_progress"}
	case errors.Is(err, checkout.ErrAlreadyCompleted):
		status = http.StatusConflict
		resp.ErrorResponse = ErrorResponse{Error: err.Error(), Code: "already_completed"}
	case errors.Is(err, checkout.ErrPaymentTimeout):
		status = http.StatusGatewayTimeout
		resp.ErrorResponse = ErrorResponse{Error: "payment timed out", Code: "payment_timeout"}
	case errors.Is(err, checkout.ErrPaymentDeclined):
		status = http.StatusPaymentRequired
		resp.ErrorResponse = ErrorResponse{Error: "payment declined", Code: "payment_declined", Details: err.Error()}
	case flow.Status() == d.CheckoutStatusFailure:
		status = http.StatusPaymentRequired
		resp.ErrorResponse = ErrorResponse{Error: "payment failed", Code: "payment_failed"}
	default:
		resp.ErrorResponse = ErrorResponse{Error: "internal server error", Code: "internal_error"}
	}

	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context(), h.log).WithError(err).Error("checkout failed")
	}
	respondJSON(w, status, resp)
}
