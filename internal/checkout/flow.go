// Package checkout implements the purchase lifecycle of one shopper:
// EDITING -> SUBMITTING -> SUCCESS | FAILURE, where FAILURE keeps the form
// and returns to EDITING on the next edit or submit.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	d "github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/pricing"
)

const (
	DefaultTimeout  = 30 * time.Second
	DefaultCurrency = "USD"

	ShopPath         = "/shop"
	ConfirmationPath = "/order-confirmation/"
)

// Cart is what the flow needs from the cart store.
type Cart interface {
	Items() []d.CartItem
	IsEmpty() bool
	ClearCart(ctx context.Context)
	Subscribe(fn func([]d.CartItem)) (unsubscribe func())
}

type Config struct {
	Gateway   PaymentGateway
	Notifier  Notifier
	Navigator Navigator
	Sink      OrderSink
	TaxRate   decimal.Decimal
	Timeout   time.Duration
	Currency  string
	Log       logrus.FieldLogger
	Now       func() time.Time
}

type Flow struct {
	mu           sync.Mutex
	cart         Cart
	cfg          Config
	status       d.CheckoutStatus
	mounted      bool
	form         Form
	snapshot     pricing.Snapshot
	orderID      string
	confirmation *Confirmation
	unsubscribe  func()
}

func NewFlow(cart Cart, cfg Config) *Flow {
	if cfg.TaxRate.IsZero() {
		cfg.TaxRate = pricing.DefaultTaxRate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	if cfg.Log == nil {
		cfg.Log = logger.Discard()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Flow{
		cart:    cart,
		cfg:     cfg,
		status:  d.CheckoutStatusIdle,
		orderID: uuid.NewString(),
	}
}

// Mount opens the checkout. With an empty cart it redirects to the shop
// and returns ErrEmptyCart without entering EDITING.
func (f *Flow) Mount(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status == d.CheckoutStatusSuccess {
		return ErrAlreadyCompleted
	}
	if f.mounted {
		return nil
	}

	items := f.cart.Items()
	if len(items) == 0 && f.status != d.CheckoutStatusSubmitting {
		f.cfg.Navigator.Redirect(ShopPath)
		logger.FromContext(ctx, f.cfg.Log).Debug("checkout mounted with empty cart, redirecting")
		return ErrEmptyCart
	}

	if f.status == d.CheckoutStatusIdle {
		if err := f.transition(d.CheckoutStatusEditing); err != nil {
			return err
		}
	}
	f.mounted = true
	f.snapshot = pricing.Compute(items, f.cfg.TaxRate)
	f.unsubscribe = f.cart.Subscribe(f.onCartChange)
	return nil
}

// Unmount stops tracking the cart. A payment still in flight keeps its
// outcome: a later approval clears the cart but does not navigate.
func (f *Flow) Unmount() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detach()
}

func (f *Flow) SetBuyer(b Buyer) error {
	return f.edit(func(form *Form) { form.Buyer = b })
}

func (f *Flow) SetPayment(p Payment) error {
	return f.edit(func(form *Form) { form.Payment = p })
}

// SetForm replaces buyer and payment together.
func (f *Flow) SetForm(form Form) error {
	return f.edit(func(dst *Form) { *dst = form })
}

func (f *Flow) Form() Form {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

func (f *Flow) Validate() error {
	return f.Form().Validate()
}

func (f *Flow) Status() d.CheckoutStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *Flow) Mounted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mounted
}

// Pricing is the snapshot of the cart as of its latest change.
func (f *Flow) Pricing() pricing.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot
}

func (f *Flow) OrderID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orderID
}

func (f *Flow) Confirmation() (*Confirmation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.confirmation, f.confirmation != nil
}

// Submit charges the buyer for the current cart. It blocks until the
// gateway answers or the configured timeout elapses. The cart is cleared
// only after an approved charge.
func (f *Flow) Submit(ctx context.Context) (*Confirmation, error) {
	f.mu.Lock()
	switch f.status {
	case d.CheckoutStatusSubmitting:
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	case d.CheckoutStatusSuccess:
		f.mu.Unlock()
		return nil, ErrAlreadyCompleted
	}
	if !f.mounted {
		f.mu.Unlock()
		return nil, ErrNotMounted
	}
	if err := f.form.Validate(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	items := f.cart.Items()
	if len(items) == 0 {
		f.detach()
		f.mu.Unlock()
		f.cfg.Navigator.Redirect(ShopPath)
		return nil, ErrEmptyCart
	}
	if err := f.transition(d.CheckoutStatusSubmitting); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	form := f.form
	orderID := f.orderID
	snapshot := pricing.Compute(items, f.cfg.TaxRate)
	f.mu.Unlock()

	log := logger.FromContext(ctx, f.cfg.Log).WithFields(logrus.Fields{
		"order_id": orderID,
		"payment":  form.Payment.Masked(),
		"total":    snapshot.Total.String(),
	})
	log.Info("submitting payment")

	result, err := f.charge(ctx, PaymentRequest{
		OrderID:  orderID,
		Buyer:    form.Buyer,
		Payment:  form.Payment,
		Items:    items,
		Amount:   snapshot.Total,
		Currency: f.cfg.Currency,
	})
	if err != nil {
		log.WithError(err).Warn("payment failed")
		f.fail(err)
		return nil, err
	}

	// The shopper may have left; the clear must still happen.
	detached := context.WithoutCancel(ctx)
	f.cart.ClearCart(detached)

	confirmation := &Confirmation{
		OrderID:       orderID,
		TransactionID: result.TransactionID,
		Buyer:         form.Buyer,
		Payment:       form.Payment.Masked(),
		Method:        form.Payment.Method,
		Items:         items,
		Pricing:       snapshot,
		Currency:      f.cfg.Currency,
		PlacedAt:      f.cfg.Now(),
	}
	if f.cfg.Sink != nil {
		if err := f.cfg.Sink.Record(detached, *confirmation); err != nil {
			log.WithError(err).Error("failed to record confirmed order")
		}
	}

	f.mu.Lock()
	f.status = d.CheckoutStatusSuccess
	f.confirmation = confirmation
	mounted := f.mounted
	f.detach()
	f.mu.Unlock()

	log.Info("order confirmed")
	f.cfg.Notifier.Success(fmt.Sprintf("Order %s placed successfully", orderID))
	if mounted {
		f.cfg.Navigator.Redirect(ConfirmationPath + orderID)
	}
	return confirmation, nil
}

func (f *Flow) charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	payCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	result, err := f.cfg.Gateway.Charge(payCtx, req)
	if err != nil {
		if errors.Is(payCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s: %w", ErrPaymentTimeout, f.cfg.Timeout, err)
		}
		return nil, fmt.Errorf("failed to charge: %w", err)
	}
	if result == nil || !result.Approved {
		reason := "payment was declined"
		if result != nil && result.Reason != "" {
			reason = result.Reason
		}
		return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, reason)
	}
	return result, nil
}

func (f *Flow) fail(cause error) {
	f.mu.Lock()
	f.status = d.CheckoutStatusFailure
	f.mu.Unlock()

	f.cfg.Notifier.Error(failureMessage(cause))
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrPaymentDeclined):
		return "Payment was declined. Please check your details and try again."
	case errors.Is(err, ErrPaymentTimeout):
		return "Payment is taking too long. Please try again."
	case errors.Is(err, ErrInvalidPayment):
		return "Payment details were rejected. Please review them and try again."
	default:
		return "Payment failed. Please try again."
	}
}

func (f *Flow) edit(apply func(*Form)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.status {
	case d.CheckoutStatusIdle:
		return ErrNotMounted
	case d.CheckoutStatusSubmitting:
		return ErrSubmitInProgress
	case d.CheckoutStatusSuccess:
		return ErrAlreadyCompleted
	case d.CheckoutStatusFailure:
		if err := f.transition(d.CheckoutStatusEditing); err != nil {
			return err
		}
	}
	apply(&f.form)
	return nil
}

func (f *Flow) onCartChange(items []d.CartItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mounted {
		f.snapshot = pricing.Compute(items, f.cfg.TaxRate)
	}
}

// transition moves to next if the state machine allows it. Callers hold f.mu.
func (f *Flow) transition(next d.CheckoutStatus) error {
	if !d.CanTransitionTo(f.status, next) {
		return fmt.Errorf("%w: %s -> %s", IllegalTransitionError, f.status, next)
	}
	f.status = next
	return nil
}

// detach drops the cart subscription. Callers hold f.mu.
func (f *Flow) detach() {
	if f.unsubscribe != nil {
		f.unsubscribe()
		f.unsubscribe = nil
	}
	f.mounted = false
}
