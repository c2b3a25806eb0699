package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront/internal/cart"
	d "github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/persist"
	"github.com/fjod/go_cart/storefront/internal/wishlist"
)

var (
	tee  = d.Item{ID: "p1", Name: "T-Shirt", Price: 19.99}
	sock = d.Item{ID: "p2", Name: "Socks", Price: 5.00}
)

func validForm() Form {
	return Form{
		Buyer: Buyer{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+1 555 0100"},
		Payment: Payment{
			Method:     MethodCard,
			CardHolder: "Ada Lovelace",
			CardNumber: "4242 4242 4242 4242",
			CardExpiry: "12/30",
			CardCVC:    "123",
		},
	}
}

type fixture struct {
	cart     *cart.Store
	wishlist *wishlist.Store
	gateway  *MockGateway
	sink     *MockSink
	inbox    *Inbox
	flow     *Flow
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()
	ctx := context.Background()
	log, _ := logtest.NewNullLogger()
	storage := persist.NewMemoryStorage()

	fx := &fixture{
		cart:     cart.New(ctx, cart.NewCollection(storage, log)),
		wishlist: wishlist.New(ctx, wishlist.NewCollection(storage, log)),
		gateway:  &MockGateway{Result: &PaymentResult{Approved: true, TransactionID: "TXN-1"}},
		sink:     &MockSink{},
		inbox:    NewInbox(),
	}
	cfg := Config{
		Gateway:   fx.gateway,
		Notifier:  fx.inbox,
		Navigator: fx.inbox,
		Sink:      fx.sink,
		Log:       log,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	fx.flow = NewFlow(fx.cart, cfg)
	return fx
}

// mounted returns a fixture holding the reference cart with the form filled in.
func mounted(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()
	ctx := context.Background()
	fx := newFixture(t, mutate)
	fx.cart.AddItem(ctx, tee, 2)
	fx.cart.AddItem(ctx, sock, 1)
	require.NoError(t, fx.flow.Mount(ctx))
	require.NoError(t, fx.flow.SetForm(validForm()))
	return fx
}

func TestMount_EmptyCartRedirectsToShop(t *testing.T) {
	fx := newFixture(t, nil)

	err := fx.flow.Mount(context.Background())

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, d.CheckoutStatusIdle, fx.flow.Status())
	assert.False(t, fx.flow.Mounted())
	_, redirect := fx.inbox.Drain()
	assert.Equal(t, ShopPath, redirect)
}

func TestMount_EntersEditingWithPricing(t *testing.T) {
	fx := mounted(t, nil)

	assert.Equal(t, d.CheckoutStatusEditing, fx.flow.Status())
	p := fx.flow.Pricing()
	assert.True(t, p.Subtotal.Equal(decimal.RequireFromString("44.98")))
	assert.True(t, p.Tax.Equal(decimal.RequireFromString("3.5984")))
	assert.True(t, p.Total.Equal(decimal.RequireFromString("48.5784")))
	assert.Equal(t, 3, p.ItemCount)
}

func TestMount_Twice(t *testing.T) {
	fx := mounted(t, nil)
	assert.NoError(t, fx.flow.Mount(context.Background()))
	assert.Equal(t, d.CheckoutStatusEditing, fx.flow.Status())
}

func TestPricing_FollowsCartChanges(t *testing.T) {
	ctx := context.Background()
	fx := mounted(t, nil)

	fx.cart.RemoveItem(ctx, "p2")
	assert.True(t, fx.flow.Pricing().Subtotal.Equal(decimal.RequireFromString("39.98")))

	fx.flow.Unmount()
	fx.cart.AddItem(ctx, sock, 4)
	assert.True(t, fx.flow.Pricing().Subtotal.Equal(decimal.RequireFromString("39.98")))
}

func TestSetBuyer_RequiresMount(t *testing.T) {
	fx := newFixture(t, nil)
	assert.ErrorIs(t, fx.flow.SetBuyer(Buyer{Name: "x"}), ErrNotMounted)
}

func TestSubmit_NotMounted(t *testing.T) {
	fx := newFixture(t, nil)
	_, err := fx.flow.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotMounted)
}

func TestSubmit_InvalidFormStaysEditing(t *testing.T) {
	fx := mounted(t, nil)
	require.NoError(t, fx.flow.SetBuyer(Buyer{Name: "Ada"}))

	_, err := fx.flow.Submit(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "buyer.email")
	assert.Equal(t, d.CheckoutStatusEditing, fx.flow.Status())
	assert.Equal(t, 0, fx.gateway.Calls())
}

func TestSubmit_Success(t *testing.T) {
	ctx := context.Background()
	fx := mounted(t, nil)
	fx.wishlist.AddItem(ctx, sock)

	conf, err := fx.flow.Submit(ctx)
	require.NoError(t, err)

	assert.Equal(t, d.CheckoutStatusSuccess, fx.flow.Status())
	assert.True(t, fx.cart.IsEmpty())
	assert.True(t, fx.wishlist.IsInWishlist("p2"))

	assert.Equal(t, fx.flow.OrderID(), conf.OrderID)
	assert.Equal(t, "TXN-1", conf.TransactionID)
	assert.Equal(t, "card ending 4242", conf.Payment)
	assert.Len(t, conf.Items, 2)
	assert.True(t, conf.Pricing.Total.Equal(decimal.RequireFromString("48.5784")))

	require.Len(t, fx.gateway.Requests, 1)
	req := fx.gateway.Requests[0]
	assert.Equal(t, conf.OrderID, req.OrderID)
	assert.Equal(t, "48.58", req.Amount.StringFixed(2))
	assert.Equal(t, DefaultCurrency, req.Currency)

	require.Len(t, fx.sink.Records, 1)
	assert.Equal(t, conf.OrderID, fx.sink.Records[0].OrderID)

	notes, redirect := fx.inbox.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, NotificationSuccess, notes[0].Kind)
	assert.Equal(t, ConfirmationPath+conf.OrderID, redirect)

	stored, ok := fx.flow.Confirmation()
	require.True(t, ok)
	assert.Equal(t, conf, stored)
	assert.False(t, fx.flow.Mounted())
}

func TestSubmit_AfterSuccess(t *testing.T) {
	ctx := context.Background()
	fx := mounted(t, nil)
	_, err := fx.flow.Submit(ctx)
	require.NoError(t, err)

	_, err = fx.flow.Submit(ctx)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.ErrorIs(t, fx.flow.Mount(ctx), ErrAlreadyCompleted)
	assert.ErrorIs(t, fx.flow.SetBuyer(Buyer{}), ErrAlreadyCompleted)
	assert.Equal(t, 1, fx.gateway.Calls())
}

func TestSubmit_DeclineKeepsCartAndForm(t *testing.T) {
	ctx := context.Background()
	fx := mounted(t, nil)
	fx.gateway.Result = &PaymentResult{Approved: false, Reason: "insufficient funds"}

	_, err := fx.flow.Submit(ctx)

	assert.ErrorIs(t, err, ErrPaymentDeclined)
	assert.Contains(t, err.Error(), "insufficient funds")
	assert.Equal(t, d.CheckoutStatusFailure, fx.flow.Status())
	assert.Equal(t, 3, fx.cart.GetItemCount())
	assert.Equal(t, validForm(), fx.flow.Form())
	assert.Empty(t, fx.sink.Records)

	notes, redirect := fx.inbox.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, NotificationError, notes[0].Kind)
	assert.Empty(t, redirect)
}

func TestSubmit_RetryAfterFailureReusesOrderID(t *testing.T) {
	ctx := context.Background()
	fx := mounted(t, nil)
	fx.gateway.Result, fx.gateway.Err = nil, errGatewayDown

	_, err := fx.flow.Submit(ctx)
	require.ErrorIs(t, err, errGatewayDown)
	require.Equal(t, d.CheckoutStatusFailure, fx.flow.Status())

	fx.gateway.Result, fx.gateway.Err = &PaymentResult{Approved: true}, nil
	conf, err := fx.flow.Submit(ctx)
	require.NoError(t, err)

	require.Len(t, fx.gateway.Requests, 2)
	assert.Equal(t, fx.gateway.Requests[0].OrderID, fx.gateway.Requests[1].OrderID)
	assert.Equal(t, fx.gateway.Requests[0].OrderID, conf.OrderID)
}

func TestEditAfterFailureReturnsToEditing(t *testing.T) {
	fx := mounted(t, nil)
	fx.gateway.Result = &PaymentResult{Approved: false}
	_, err := fx.flow.Submit(context.Background())
	require.Error(t, err)

	require.NoError(t, fx.flow.SetBuyer(Buyer{Name: "Grace", Email: "grace@example.com", Phone: "1"}))
	assert.Equal(t, d.CheckoutStatusEditing, fx.flow.Status())
	assert.Equal(t, "Grace", fx.flow.Form().Buyer.Name)
	assert.Equal(t, MethodCard, fx.flow.Form().Payment.Method)
}

func TestSubmit_RejectsConcurrentSubmit(t *testing.T) {
	ctx := context.Background()
	fx := mounted(t, nil)
	fx.gateway.Release = make(chan struct{})
	fx.gateway.Started = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := fx.flow.Submit(ctx)
		done <- err
	}()
	<-fx.gateway.Started

	assert.Equal(t, d.CheckoutStatusSubmitting, fx.flow.Status())
	_, err := fx.flow.Submit(ctx)
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	assert.ErrorIs(t, fx.flow.SetBuyer(Buyer{}), ErrSubmitInProgress)

	close(fx.gateway.Release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, fx.gateway.Calls())
	assert.Equal(t, d.CheckoutStatusSuccess, fx.flow.Status())
}

func TestSubmit_Timeout(t *testing.T) {
	fx := mounted(t, func(c *Config) { c.Timeout = 20 * time.Millisecond })
	fx.gateway.Release = make(chan struct{})

	_, err := fx.flow.Submit(context.Background())

	assert.ErrorIs(t, err, ErrPaymentTimeout)
	assert.Equal(t, d.CheckoutStatusFailure, fx.flow.Status())
	assert.Equal(t, 3, fx.cart.GetItemCount())
}

func TestSubmit_CallerCancelledIsNotTimeout(t *testing.T) {
	fx := mounted(t, nil)
	fx.gateway.Release = make(chan struct{})
	fx.gateway.Started = make(chan struct{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := fx.flow.Submit(ctx)
		done <- err
	}()
	<-fx.gateway.Started
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrPaymentTimeout))
	assert.Equal(t, 3, fx.cart.GetItemCount())
}

func TestSubmit_UnmountedDuringPaymentStillClearsCart(t *testing.T) {
	ctx := context.Background()
	fx := mounted(t, nil)
	fx.gateway.Release = make(chan struct{})
	fx.gateway.Started = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := fx.flow.Submit(ctx)
		done <- err
	}()
	<-fx.gateway.Started
	fx.flow.Unmount()
	close(fx.gateway.Release)

	require.NoError(t, <-done)
	assert.True(t, fx.cart.IsEmpty())
	notes, redirect := fx.inbox.Drain()
	assert.Len(t, notes, 1)
	assert.Empty(t, redirect)
}

func TestSubmit_SinkErrorDoesNotFailOrder(t *testing.T) {
	fx := mounted(t, nil)
	fx.sink.Err = errors.New("ledger unavailable")

	conf, err := fx.flow.Submit(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, conf)
	assert.Equal(t, d.CheckoutStatusSuccess, fx.flow.Status())
}

func TestSubmit_CartEmptiedAfterMount(t *testing.T) {
	ctx := context.Background()
	fx := mounted(t, nil)
	fx.cart.ClearCart(ctx)

	_, err := fx.flow.Submit(ctx)

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, fx.gateway.Calls())
	_, redirect := fx.inbox.Drain()
	assert.Equal(t, ShopPath, redirect)
}

func TestFailureMessage(t *testing.T) {
	assert.Contains(t, failureMessage(ErrPaymentDeclined), "declined")
	assert.Contains(t, failureMessage(ErrPaymentTimeout), "too long")
	assert.Contains(t, failureMessage(ErrInvalidPayment), "rejected")
	assert.Equal(t, "Payment failed. Please try again.", failureMessage(errGatewayDown))
}
