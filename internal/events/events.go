// Package events defines the Kafka messages exchanged between services.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const (
	TopicReviews = "reviews"
	TopicOrders  = "orders"
)

const (
	TypeReviewAdded        = "review_added"
	TypeReviewRemoved      = "review_removed"
	TypeOrderCreated       = "order_created"
	TypeOrderStatusChanged = "order_status_changed"
)

type ReviewEvent struct {
	Type       string    `json:"type"`
	ReviewID   string    `json:"review_id"`
	MenuItemID string    `json:"menu_item_id"`
	Rating     int       `json:"rating"`
	Timestamp  time.Time `json:"timestamp"`
}

type OrderLine struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

type OrderEvent struct {
	Type       string          `json:"type"`
	OrderID    string          `json:"order_id"`
	UserID     string          `json:"user_id"`
	Status     string          `json:"status"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	Items      []OrderLine     `json:"items,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Producer struct {
	Writer MessageWriter
}

func NewProducer(writer MessageWriter) *Producer {
	return &Producer{Writer: writer}
}

// Publish JSON-encodes v and writes it under key, so all events of one
// menu item or order land on the same partition.
func (p *Producer) Publish(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
}

func (p *Producer) PublishReview(ctx context.Context, evt ReviewEvent) error {
	return p.Publish(ctx, evt.MenuItemID, evt)
}

func (p *Producer) PublishOrder(ctx context.Context, evt OrderEvent) error {
	return p.Publish(ctx, evt.OrderID, evt)
}
