package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"savory-orders/internal/apperr"
	"savory-orders/internal/pricing"
	"savory-orders/order-svc/internal/cart"
	"savory-orders/order-svc/internal/domain"
	"savory-orders/order-svc/internal/mocks"
	"savory-orders/order-svc/internal/payment"
	"savory-orders/order-svc/internal/service"
)

type checkoutFixture struct {
	orders   *orderFixture
	carts    *mocks.CartStore
	sessions *mocks.SessionStore
	stripe   *mocks.Processor
	svc      *service.CheckoutService
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		orders:   newOrderFixture(),
		carts:    new(mocks.CartStore),
		sessions: new(mocks.SessionStore),
		stripe:   new(mocks.Processor),
	}
	processors := map[domain.PaymentMethod]payment.Processor{domain.PaymentStripe: f.stripe}
	f.svc = service.NewCheckoutService(f.carts, f.sessions, f.orders.svc, processors, testCalculator(), quietLogger())
	return f
}

func cartOf(items ...domain.LineItem) cart.Cart {
	c := cart.Empty()
	for _, item := range items {
		c = c.Add(item)
	}
	return c
}

func stripeRequest() domain.CheckoutRequest {
	return domain.CheckoutRequest{Address: testAddress(), PaymentMethod: domain.PaymentStripe}
}

func TestCheckout_InitiateQuotesAndOpensIntent(t *testing.T) {
	f := newCheckoutFixture()
	f.carts.On("Get", mock.Anything, "u-1").Return(cartOf(testItems()...), nil)
	// 606 + 50 delivery = 656 ETB, 656 / 138 = 4.75 USD
	f.stripe.On("CreateIntent", mock.Anything, mock.MatchedBy(func(c pricing.Charge) bool {
		return c.MinorUnits == 475 && c.Currency == "usd" && c.Original.Equal(dec("656"))
	}), mock.AnythingOfType("string")).Return(payment.Intent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil)
	f.sessions.On("SaveSession", mock.Anything, mock.MatchedBy(func(s domain.CheckoutSession) bool {
		return s.IntentID == "pi_1" && s.CartSession == "u-1" && len(s.Items) == 2 && s.Customer.UserID == "u-1"
	})).Return(nil)

	handle, err := f.svc.Initiate(context.Background(), testCustomer(), "u-1", stripeRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStripe, handle.Provider)
	assert.Equal(t, "pi_1", handle.IntentID)
	assert.Equal(t, "pi_1_secret", handle.ClientSecret)
	assert.True(t, handle.Totals.GrandTotal.Equal(dec("656")))
	assert.True(t, handle.Totals.SettlementAmount.Equal(dec("4.75")))

	f.stripe.AssertExpectations(t)
	f.sessions.AssertExpectations(t)
}

func TestCheckout_InitiateRejectsBeforeProcessor(t *testing.T) {
	testCases := []struct {
		name string
		cart cart.Cart
		req  domain.CheckoutRequest
	}{
		{"empty cart", cart.Empty(), stripeRequest()},
		{"below processor minimum", cartOf(domain.LineItem{MenuItemID: uuid.New(), Name: "Bread", Price: dec("5"), Quantity: 1}), stripeRequest()},
		{"incomplete address", cartOf(testItems()...), domain.CheckoutRequest{Address: domain.Address{Street: "Bole"}, PaymentMethod: domain.PaymentStripe}},
		{"processor not configured", cartOf(testItems()...), domain.CheckoutRequest{Address: testAddress(), PaymentMethod: domain.PaymentPayPal}},
		{"unknown method", cartOf(testItems()...), domain.CheckoutRequest{Address: testAddress(), PaymentMethod: "cheque"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			f := newCheckoutFixture()
			f.carts.On("Get", mock.Anything, "u-1").Return(testCase.cart, nil)

			_, err := f.svc.Initiate(context.Background(), testCustomer(), "u-1", testCase.req)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
			f.stripe.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCheckout_InitiateMinimumMessage(t *testing.T) {
	f := newCheckoutFixture()
	f.carts.On("Get", mock.Anything, "u-1").Return(cartOf(domain.LineItem{MenuItemID: uuid.New(), Name: "Bread", Price: dec("5"), Quantity: 1}), nil)

	_, err := f.svc.Initiate(context.Background(), testCustomer(), "u-1", stripeRequest())
	assert.Contains(t, err.Error(), "amount too small")
}

func paidSession() *domain.CheckoutSession {
	return &domain.CheckoutSession{
		IntentID:    "pi_1",
		Provider:    domain.PaymentStripe,
		Customer:    testCustomer(),
		CartSession: "u-1",
		Items:       testItems(),
		Address:     testAddress(),
	}
}

func TestCheckout_ConfirmPlacesPaidOrder(t *testing.T) {
	f := newCheckoutFixture()
	f.sessions.On("LoadSession", mock.Anything, "pi_1").Return(paidSession(), nil)
	f.stripe.On("Confirm", mock.Anything, "pi_1").Return(payment.Outcome{Succeeded: true, ConfirmationID: "pi_1"}, nil)
	f.orders.expectCreate()
	f.orders.publisher.On("PublishOrder", mock.Anything, mock.Anything).Return(nil)
	f.orders.repo.On("UpdatePaymentStatus", mock.Anything, mock.Anything, domain.PaymentCompleted).Return(nil)
	f.carts.On("Clear", mock.Anything, "u-1").Return(nil)

	order, err := f.svc.Confirm(context.Background(), testCustomer(), "pi_1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, order.PaymentStatus)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, "pi_1", order.PaymentConfirmationID)
	assert.True(t, order.GrandTotal.Equal(dec("656")))

	f.carts.AssertExpectations(t)
	f.orders.repo.AssertExpectations(t)
}

func TestCheckout_ConfirmRetryReturnsSameOrder(t *testing.T) {
	f := newCheckoutFixture()
	existing := &domain.Order{ID: uuid.New(), PaymentConfirmationID: "pi_1", PaymentStatus: domain.PaymentCompleted}
	f.sessions.On("LoadSession", mock.Anything, "pi_1").Return(paidSession(), nil)
	f.stripe.On("Confirm", mock.Anything, "pi_1").Return(payment.Outcome{Succeeded: true, ConfirmationID: "pi_1"}, nil)
	f.orders.repo.On("CreateOrder", mock.Anything, mock.Anything).Return(false, nil)
	f.orders.repo.On("GetOrderByConfirmation", mock.Anything, "pi_1").Return(existing, nil)
	f.carts.On("Clear", mock.Anything, "u-1").Return(nil)

	order, err := f.svc.Confirm(context.Background(), testCustomer(), "pi_1")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, order.ID)
	f.orders.repo.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything)
	f.orders.publisher.AssertNotCalled(t, "PublishOrder", mock.Anything, mock.Anything)
}

func TestCheckout_ConfirmDeclinedKeepsCart(t *testing.T) {
	f := newCheckoutFixture()
	f.sessions.On("LoadSession", mock.Anything, "pi_1").Return(paidSession(), nil)
	f.stripe.On("Confirm", mock.Anything, "pi_1").Return(payment.Outcome{Message: "Your card was declined."}, nil)

	order, err := f.svc.Confirm(context.Background(), testCustomer(), "pi_1")
	require.Error(t, err)
	assert.Nil(t, order)
	assert.Equal(t, http.StatusPaymentRequired, apperr.StatusCode(err))
	assert.Equal(t, "Your card was declined.", apperr.PublicMessage(err))

	f.orders.repo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	f.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestCheckout_ConfirmOtherCustomersIntent(t *testing.T) {
	f := newCheckoutFixture()
	f.sessions.On("LoadSession", mock.Anything, "pi_1").Return(paidSession(), nil)

	_, err := f.svc.Confirm(context.Background(), domain.Customer{UserID: "u-2"}, "pi_1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	f.stripe.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
}

func TestCheckout_ConfirmUnknownIntent(t *testing.T) {
	f := newCheckoutFixture()
	f.sessions.On("LoadSession", mock.Anything, "pi_x").Return(nil, apperr.NotFound("checkout session", "pi_x"))

	_, err := f.svc.Confirm(context.Background(), testCustomer(), "pi_x")
	assert.Equal(t, http.StatusNotFound, apperr.StatusCode(err))
}

func TestCheckout_ConfirmProcessorOutage(t *testing.T) {
	f := newCheckoutFixture()
	f.sessions.On("LoadSession", mock.Anything, "pi_1").Return(paidSession(), nil)
	f.stripe.On("Confirm", mock.Anything, "pi_1").Return(payment.Outcome{}, apperr.External("stripe", errors.New("timeout")))

	_, err := f.svc.Confirm(context.Background(), testCustomer(), "pi_1")
	assert.Equal(t, apperr.RetryMessage, apperr.PublicMessage(err))
	f.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestCheckout_CreatePaymentIntent(t *testing.T) {
	f := newCheckoutFixture()
	// 550 ETB / 138 = 3.99 USD
	f.stripe.On("CreateIntent", mock.Anything, mock.MatchedBy(func(c pricing.Charge) bool {
		return c.MinorUnits == 399
	}), "").Return(payment.Intent{ID: "pi_9", ClientSecret: "pi_9_secret"}, nil)

	secret, err := f.svc.CreatePaymentIntent(context.Background(), dec("550"), "etb")
	require.NoError(t, err)
	assert.Equal(t, "pi_9_secret", secret)

	_, err = f.svc.CreatePaymentIntent(context.Background(), dec("0"), "usd")
	assert.True(t, apperr.IsValidation(err))

	_, err = f.svc.CreatePaymentIntent(context.Background(), dec("0.10"), "usd")
	assert.True(t, apperr.IsValidation(err))
	f.stripe.AssertNumberOfCalls(t, "CreateIntent", 1)
}

func TestCheckout_CreatePaymentIntentUnconfigured(t *testing.T) {
	svc := service.NewCheckoutService(new(mocks.CartStore), new(mocks.SessionStore), newOrderFixture().svc,
		map[domain.PaymentMethod]payment.Processor{}, testCalculator(), quietLogger())

	_, err := svc.CreatePaymentIntent(context.Background(), dec("550"), "etb")
	assert.ErrorIs(t, err, payment.ErrNotConfigured)
}
