package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"savory-orders/internal/apperr"
	"savory-orders/internal/logger"
	"savory-orders/internal/pricing"
	"savory-orders/order-svc/internal/domain"
	"savory-orders/order-svc/internal/payment"
)

// CheckoutService turns a cart into a paid order: Initiate prices the cart
// and opens a processor intent, Confirm checks the outcome and places the
// order.
type CheckoutService struct {
	carts      CartStore
	sessions   SessionStore
	orders     OrderServiceInterface
	processors map[domain.PaymentMethod]payment.Processor
	calc       pricing.Calculator
	log        *logger.Logger
	now        func() time.Time
}

func NewCheckoutService(carts CartStore, sessions SessionStore, orders OrderServiceInterface, processors map[domain.PaymentMethod]payment.Processor, calc pricing.Calculator, log *logger.Logger) *CheckoutService {
	return &CheckoutService{
		carts:      carts,
		sessions:   sessions,
		orders:     orders,
		processors: processors,
		calc:       calc,
		log:        log,
		now:        time.Now,
	}
}

func (s *CheckoutService) processor(method domain.PaymentMethod) (payment.Processor, error) {
	if !method.Valid() {
		return nil, apperr.Validation("payment_method", "unsupported payment method")
	}
	p, ok := s.processors[method]
	if !ok {
		return nil, apperr.Validation("payment_method", fmt.Sprintf("%s payments are not available", method))
	}
	return p, nil
}

func (s *CheckoutService) Initiate(ctx context.Context, customer domain.Customer, cartSession string, req domain.CheckoutRequest) (*domain.CheckoutHandle, error) {
	processor, err := s.processor(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	c, err := s.carts.Get(ctx, cartSession)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, apperr.Validation("cart", "cart is empty")
	}
	if err := req.Address.Validate(); err != nil {
		return nil, err
	}

	items := c.Snapshot()
	quote, err := s.calc.Quote(pricing.CartTotals(items))
	if err != nil {
		return nil, err
	}
	// below-minimum totals fail here, before the processor is called
	charge, err := s.calc.ChargeAmount(quote.GrandTotal, s.calc.LocalCurrency)
	if err != nil {
		return nil, err
	}

	intent, err := processor.CreateIntent(ctx, charge, uuid.NewString())
	if err != nil {
		return nil, err
	}

	if err := s.sessions.SaveSession(ctx, domain.CheckoutSession{
		IntentID:    intent.ID,
		Provider:    req.PaymentMethod,
		Customer:    customer,
		CartSession: cartSession,
		Items:       items,
		Address:     req.Address,
		CreatedAt:   s.now().UTC(),
	}); err != nil {
		return nil, apperr.External("checkout session", err)
	}

	s.log.Info(ctx, "checkout_initiated", "payment intent created",
		slog.String("provider", string(req.PaymentMethod)),
		slog.String("intent_id", intent.ID),
		slog.String("charge", charge.Amount.StringFixed(2)+" "+charge.Currency))

	return &domain.CheckoutHandle{
		Provider:     req.PaymentMethod,
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		ApprovalURL:  intent.ApprovalURL,
		Totals:       quote,
	}, nil
}

// Confirm places the order once the processor reports success. Calling it
// again for the same intent returns the same order. On failure the cart is
// left as it was.
func (s *CheckoutService) Confirm(ctx context.Context, customer domain.Customer, intentID string) (*domain.Order, error) {
	session, err := s.sessions.LoadSession(ctx, intentID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, err
		}
		return nil, apperr.External("checkout session", err)
	}
	if session.Customer.UserID != customer.UserID {
		return nil, apperr.ErrForbidden
	}
	processor, err := s.processor(session.Provider)
	if err != nil {
		return nil, err
	}

	outcome, err := processor.Confirm(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if !outcome.Succeeded {
		s.log.Warn(ctx, "payment_not_completed", outcome.Message, slog.String("intent_id", intentID))
		return nil, apperr.PaymentDeclinedError{Message: outcome.Message}
	}

	order, err := s.orders.Create(ctx, domain.CreateOrderInput{
		Customer:              session.Customer,
		Items:                 session.Items,
		Address:               session.Address,
		PaymentMethod:         session.Provider,
		PaymentConfirmationID: outcome.ConfirmationID,
	})
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != domain.PaymentCompleted {
		if err := s.orders.UpdatePaymentStatus(ctx, order.ID, domain.PaymentCompleted); err != nil {
			return nil, err
		}
		order.PaymentStatus = domain.PaymentCompleted
	}

	if err := s.carts.Clear(ctx, session.CartSession); err != nil {
		s.log.Warn(ctx, "cart_clear_failed", err.Error(), slog.String("order_id", order.ID.String()))
	}
	return order, nil
}

// CreatePaymentIntent opens a bare card intent for amount and returns its
// client secret.
func (s *CheckoutService) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string) (string, error) {
	processor, ok := s.processors[domain.PaymentStripe]
	if !ok {
		return "", payment.ErrNotConfigured
	}
	charge, err := s.calc.ChargeAmount(amount, currency)
	if err != nil {
		return "", err
	}
	intent, err := processor.CreateIntent(ctx, charge, "")
	if err != nil {
		return "", err
	}
	return intent.ClientSecret, nil
}
