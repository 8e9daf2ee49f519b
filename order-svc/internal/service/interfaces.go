package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"savory-orders/internal/events"
	"savory-orders/internal/notify"
	"savory-orders/order-svc/internal/cart"
	"savory-orders/order-svc/internal/domain"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) (bool, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByConfirmation(ctx context.Context, confirmationID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, change domain.StatusChange, from domain.Status, estimated, delivered *time.Time) (bool, error)
	StatusHistory(ctx context.Context, orderID uuid.UUID) ([]domain.StatusChange, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error
	SaveQRCode(ctx context.Context, id uuid.UUID, qr []byte) error
	GetQRCode(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type OrderPublisher interface {
	PublishOrder(ctx context.Context, evt events.OrderEvent) error
}

type StatusNotifier interface {
	NotifyStatus(ctx context.Context, update notify.StatusUpdate) error
}

type QRGenerator interface {
	Generate(orderID uuid.UUID) ([]byte, error)
}

type SessionStore interface {
	SaveSession(ctx context.Context, session domain.CheckoutSession) error
	LoadSession(ctx context.Context, intentID string) (*domain.CheckoutSession, error)
}

type CartStore interface {
	Get(ctx context.Context, session string) (cart.Cart, error)
	Add(ctx context.Context, session string, menuItemID uuid.UUID, quantity int) (cart.Cart, error)
	UpdateQuantity(ctx context.Context, session string, menuItemID uuid.UUID, quantity int) (cart.Cart, error)
	Remove(ctx context.Context, session string, menuItemID uuid.UUID) (cart.Cart, error)
	Clear(ctx context.Context, session string) error
}

type OrderServiceInterface interface {
	Create(ctx context.Context, input domain.CreateOrderInput) (*domain.Order, error)
	Transition(ctx context.Context, id uuid.UUID, to domain.Status, actor string) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	History(ctx context.Context, id uuid.UUID) ([]domain.StatusChange, error)
	QRCode(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type CheckoutServiceInterface interface {
	Initiate(ctx context.Context, customer domain.Customer, cartSession string, req domain.CheckoutRequest) (*domain.CheckoutHandle, error)
	Confirm(ctx context.Context, customer domain.Customer, intentID string) (*domain.Order, error)
	CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string) (string, error)
}

var (
	_ OrderServiceInterface    = (*OrderService)(nil)
	_ CheckoutServiceInterface = (*CheckoutService)(nil)
	_ CartStore                = (*cart.Store)(nil)
	_ QRGenerator              = TrackingQR{}
)
