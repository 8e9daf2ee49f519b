package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"savory-orders/internal/apperr"
	"savory-orders/internal/events"
	"savory-orders/internal/logger"
	"savory-orders/internal/notify"
	"savory-orders/internal/pricing"
	"savory-orders/order-svc/internal/domain"
)

const EstimatedPreparation = 45 * time.Minute

type OrderService struct {
	repo      OrderRepository
	calc      pricing.Calculator
	publisher OrderPublisher
	notifier  StatusNotifier
	qr        QRGenerator
	log       *logger.Logger
	now       func() time.Time
}

func NewOrderService(repo OrderRepository, calc pricing.Calculator, publisher OrderPublisher, notifier StatusNotifier, qr QRGenerator, log *logger.Logger) *OrderService {
	return &OrderService{
		repo:      repo,
		calc:      calc,
		publisher: publisher,
		notifier:  notifier,
		qr:        qr,
		log:       log,
		now:       time.Now,
	}
}

// Create persists a pending order. With a payment confirmation id that is
// already on file, the existing order is returned instead.
func (s *OrderService) Create(ctx context.Context, input domain.CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperr.Validation("items", "cart is empty")
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, apperr.Validation("items", fmt.Sprintf("%s has an invalid quantity", item.Name))
		}
	}
	if err := input.Address.Validate(); err != nil {
		return nil, err
	}
	if !input.PaymentMethod.Valid() {
		return nil, apperr.Validation("payment_method", "unsupported payment method")
	}

	items := make([]domain.LineItem, len(input.Items))
	copy(items, input.Items)

	quote, err := s.calc.Quote(pricing.CartTotals(items))
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &domain.Order{
		ID:                    uuid.New(),
		UserID:                input.Customer.UserID,
		UserEmail:             input.Customer.Email,
		UserName:              input.Customer.Name,
		Items:                 items,
		Subtotal:              quote.Subtotal,
		DeliveryFee:           quote.DeliveryFee,
		GrandTotal:            quote.GrandTotal,
		Status:                domain.StatusPending,
		PaymentMethod:         input.PaymentMethod,
		PaymentStatus:         domain.PaymentPending,
		PaymentConfirmationID: strings.TrimSpace(input.PaymentConfirmationID),
		DeliveryAddress:       input.Address,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, storageError(err, "create order")
	}
	if !created {
		existing, err := s.repo.GetOrderByConfirmation(ctx, order.PaymentConfirmationID)
		if err != nil {
			return nil, storageError(err, "load confirmed order")
		}
		s.log.Info(ctx, "duplicate_confirmation", "order already exists for payment",
			slog.String("order_id", existing.ID.String()))
		return existing, nil
	}

	s.storeQRCode(ctx, order.ID)

	s.publish(ctx, events.OrderEvent{
		Type:       events.TypeOrderCreated,
		OrderID:    order.ID.String(),
		UserID:     order.UserID,
		Status:     string(order.Status),
		GrandTotal: order.GrandTotal,
		Items:      orderLines(order.Items),
		Timestamp:  now,
	})

	s.log.Info(ctx, "order_created", "order placed",
		slog.String("order_id", order.ID.String()), slog.String("grand_total", order.GrandTotal.String()))
	return order, nil
}

// Transition moves an order one step along its lifecycle. Terminal orders
// accept nothing.
func (s *OrderService) Transition(ctx context.Context, id uuid.UUID, to domain.Status, actor string) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, storageError(err, "get order")
	}
	from := order.Status
	if !from.CanTransition(to) {
		return nil, apperr.InvalidTransitionError{From: string(from), To: string(to)}
	}

	now := s.now().UTC()
	var estimated, delivered *time.Time
	switch to {
	case domain.StatusPreparing:
		eta := now.Add(EstimatedPreparation)
		estimated = &eta
	case domain.StatusDelivered:
		delivered = &now
	}

	change := domain.StatusChange{OrderID: id, Status: to, ChangedBy: actor, ChangedAt: now}
	moved, err := s.repo.UpdateStatus(ctx, change, from, estimated, delivered)
	if err != nil {
		return nil, storageError(err, "update order status")
	}
	if !moved {
		// someone else moved it first
		return nil, apperr.InvalidTransitionError{From: string(from), To: string(to)}
	}

	order.Status = to
	order.UpdatedAt = now
	if estimated != nil {
		order.EstimatedDeliveryAt = estimated
	}
	if delivered != nil {
		order.DeliveredAt = delivered
	}

	s.publish(ctx, events.OrderEvent{
		Type:       events.TypeOrderStatusChanged,
		OrderID:    id.String(),
		UserID:     order.UserID,
		Status:     string(to),
		GrandTotal: order.GrandTotal,
		Timestamp:  now,
	})
	s.notify(ctx, notify.StatusUpdate{
		OrderID:             id.String(),
		UserID:              order.UserID,
		OldStatus:           string(from),
		NewStatus:           string(to),
		ChangedBy:           actor,
		Timestamp:           now,
		EstimatedDeliveryAt: order.EstimatedDeliveryAt,
	})

	s.log.Info(ctx, "order_status_changed", "order moved",
		slog.String("order_id", id.String()), slog.String("from", string(from)), slog.String("to", string(to)))
	return order, nil
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	if !status.Valid() {
		return apperr.Validation("payment_status", "unknown payment status "+string(status))
	}
	return storageError(s.repo.UpdatePaymentStatus(ctx, id, status), "update payment status")
}

func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, storageError(err, "get order")
	}
	return order, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	return orders, storageError(err, "list user orders")
}

func (s *OrderService) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	orders, err := s.repo.ListByStatus(ctx, status)
	return orders, storageError(err, "list orders by status")
}

func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.ListAll(ctx)
	return orders, storageError(err, "list orders")
}

func (s *OrderService) History(ctx context.Context, id uuid.UUID) ([]domain.StatusChange, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	history, err := s.repo.StatusHistory(ctx, id)
	return history, storageError(err, "status history")
}

// QRCode returns the stored tracking code, generating it on first use.
func (s *OrderService) QRCode(ctx context.Context, id uuid.UUID) ([]byte, error) {
	qr, err := s.repo.GetQRCode(ctx, id)
	if err != nil {
		return nil, storageError(err, "get qr code")
	}
	if len(qr) > 0 {
		return qr, nil
	}
	qr, err = s.qr.Generate(id)
	if err != nil {
		return nil, fmt.Errorf("generate qr code: %w", err)
	}
	if err := s.repo.SaveQRCode(ctx, id, qr); err != nil {
		s.log.Warn(ctx, "qr_code_save_failed", err.Error(), slog.String("order_id", id.String()))
	}
	return qr, nil
}

func (s *OrderService) storeQRCode(ctx context.Context, id uuid.UUID) {
	if s.qr == nil {
		return
	}
	qr, err := s.qr.Generate(id)
	if err == nil {
		err = s.repo.SaveQRCode(ctx, id, qr)
	}
	if err != nil {
		s.log.Warn(ctx, "qr_code_failed", err.Error(), slog.String("order_id", id.String()))
	}
}

func (s *OrderService) publish(ctx context.Context, evt events.OrderEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrder(ctx, evt); err != nil {
		s.log.Error(ctx, "publish_order_event", "failed to publish order event", err,
			slog.String("order_id", evt.OrderID), slog.String("type", evt.Type))
	}
}

func (s *OrderService) notify(ctx context.Context, update notify.StatusUpdate) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyStatus(ctx, update); err != nil {
		s.log.Error(ctx, "notify_status", "failed to publish status notification", err,
			slog.String("order_id", update.OrderID))
	}
}

func orderLines(items []domain.LineItem) []events.OrderLine {
	lines := make([]events.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, events.OrderLine{
			MenuItemID: item.MenuItemID.String(),
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      item.Price,
		})
	}
	return lines
}

func storageError(err error, op string) error {
	if err == nil || apperr.IsNotFound(err) || apperr.IsValidation(err) {
		return err
	}
	return apperr.External("postgres", fmt.Errorf("%s: %w", op, err))
}
