// Package notify carries order status updates over a RabbitMQ fanout
// exchange from order-svc to notify-svc.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"savory-orders/internal/logger"
)

const (
	Exchange = "order_notifications"
	Queue    = "order_notifications_ws"
)

type StatusUpdate struct {
	OrderID             string     `json:"order_id"`
	UserID              string     `json:"user_id"`
	OldStatus           string     `json:"old_status"`
	NewStatus           string     `json:"new_status"`
	ChangedBy           string     `json:"changed_by"`
	Timestamp           time.Time  `json:"timestamp"`
	EstimatedDeliveryAt *time.Time `json:"estimated_delivery_at,omitempty"`
}

// Channel is the publishing half of *amqp.Channel.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// DeclareTopology creates the fanout exchange and binds queue to it.
func DeclareTopology(ch *amqp.Channel, queue string) error {
	if err := ch.ExchangeDeclare(Exchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s exchange: %w", Exchange, err)
	}
	if queue == "" {
		return nil
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, amqp.Table{"x-message-ttl": int32(300000)}); err != nil {
		return fmt.Errorf("declare %s queue: %w", queue, err)
	}
	if err := ch.QueueBind(queue, "", Exchange, false, nil); err != nil {
		return fmt.Errorf("bind %s queue: %w", queue, err)
	}
	return nil
}

type Publisher struct {
	ch Channel
}

func NewPublisher(ch Channel) *Publisher {
	return &Publisher{ch: ch}
}

func (p *Publisher) NotifyStatus(ctx context.Context, update StatusUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal status update: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(ctx, Exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

type Handler func(ctx context.Context, update StatusUpdate) error

// Consume handles deliveries until ctx ends or the channel closes.
// Malformed messages are dropped; handler failures are requeued once.
func Consume(ctx context.Context, deliveries <-chan amqp.Delivery, handle Handler, log *logger.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			process(ctx, d, handle, log)
		}
	}
}

func process(ctx context.Context, d amqp.Delivery, handle Handler, log *logger.Logger) {
	var update StatusUpdate
	if err := json.Unmarshal(d.Body, &update); err != nil {
		log.Error(ctx, "message_parsing_failed", "dropping malformed status update", err)
		_ = d.Nack(false, false)
		return
	}

	processingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := handle(processingCtx, update); err != nil {
		log.Error(ctx, "message_processing_failed", "status update not delivered", err,
			slog.String("order_id", update.OrderID))
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)
}
