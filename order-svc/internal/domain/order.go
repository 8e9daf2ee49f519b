package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"savory-orders/internal/apperr"
	"savory-orders/internal/pricing"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady},
	StatusReady:     {StatusDelivered},
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", apperr.Validation("status", "unknown order status "+s)
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether to is one step forward from s.
func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func (p PaymentStatus) Valid() bool {
	return p == PaymentPending || p == PaymentCompleted || p == PaymentFailed
}

type PaymentMethod string

const (
	PaymentStripe PaymentMethod = "stripe"
	PaymentPayPal PaymentMethod = "paypal"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentStripe || m == PaymentPayPal
}

// LineItem is a priced menu item in a cart or order. Price is the unit
// price captured when the item was added.
type LineItem struct {
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	Image      string          `json:"image,omitempty"`
	Category   string          `json:"category,omitempty"`
}

func (l LineItem) LinePrice() decimal.Decimal { return l.Price }
func (l LineItem) LineQuantity() int          { return l.Quantity }

type Address struct {
	Street       string `json:"street"`
	City         string `json:"city"`
	Phone        string `json:"phone"`
	Instructions string `json:"instructions,omitempty"`
}

func (a Address) Validate() error {
	switch {
	case strings.TrimSpace(a.Street) == "":
		return apperr.Validation("street", "street is required")
	case strings.TrimSpace(a.City) == "":
		return apperr.Validation("city", "city is required")
	case strings.TrimSpace(a.Phone) == "":
		return apperr.Validation("phone", "phone is required")
	}
	return nil
}

type Customer struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type Order struct {
	ID                    uuid.UUID       `json:"id"`
	UserID                string          `json:"user_id"`
	UserEmail             string          `json:"user_email"`
	UserName              string          `json:"user_name"`
	Items                 []LineItem      `json:"items"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	DeliveryFee           decimal.Decimal `json:"delivery_fee"`
	GrandTotal            decimal.Decimal `json:"grand_total"`
	Status                Status          `json:"status"`
	PaymentMethod         PaymentMethod   `json:"payment_method"`
	PaymentStatus         PaymentStatus   `json:"payment_status"`
	PaymentConfirmationID string          `json:"payment_confirmation_id,omitempty"`
	DeliveryAddress       Address         `json:"delivery_address"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	EstimatedDeliveryAt   *time.Time      `json:"estimated_delivery_at,omitempty"`
	DeliveredAt           *time.Time      `json:"delivered_at,omitempty"`
}

type StatusChange struct {
	OrderID   uuid.UUID `json:"order_id"`
	Status    Status    `json:"status"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

// CheckoutSession is what Initiate remembers for Confirm: the priced cart
// the customer agreed to pay for.
type CheckoutSession struct {
	IntentID    string        `json:"intent_id"`
	Provider    PaymentMethod `json:"provider"`
	Customer    Customer      `json:"customer"`
	CartSession string        `json:"cart_session"`
	Items       []LineItem    `json:"items"`
	Address     Address       `json:"address"`
	CreatedAt   time.Time     `json:"created_at"`
}

// CreateOrderInput is a paid (or about to be paid) cart. Items are copied,
// so later cart edits never reach the order.
type CreateOrderInput struct {
	Customer              Customer
	Items                 []LineItem
	Address               Address
	PaymentMethod         PaymentMethod
	PaymentConfirmationID string
}

type CheckoutRequest struct {
	Address       Address       `json:"delivery_address"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// CheckoutHandle is returned to the client to finish payment with the
// chosen processor.
type CheckoutHandle struct {
	Provider     PaymentMethod `json:"provider"`
	IntentID     string        `json:"intent_id"`
	ClientSecret string        `json:"client_secret,omitempty"`
	ApprovalURL  string        `json:"approval_url,omitempty"`
	Totals       pricing.Quote `json:"totals"`
}
