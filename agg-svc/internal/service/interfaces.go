package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"savory-orders/agg-svc/internal/domain"
	"savory-orders/agg-svc/internal/storage"
	"savory-orders/internal/events"
	"savory-orders/internal/rating"
)

type RatingStore interface {
	Reconcile(ctx context.Context, menuItemID uuid.UUID) (domain.Reconciliation, error)
	MenuItemIDs(ctx context.Context) ([]uuid.UUID, error)
}

type StatsCache interface {
	MirrorRating(ctx context.Context, menuItemID uuid.UUID, agg rating.Aggregate) error
	RecordOrder(ctx context.Context, lines []events.OrderLine, at time.Time) error
}

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type ConsumerInterface interface {
	Run(ctx context.Context, reader MessageReader) error
	Handle(ctx context.Context, msg kafka.Message) error
	ProcessReview(ctx context.Context, evt events.ReviewEvent) error
	ProcessOrder(ctx context.Context, evt events.OrderEvent) error
	Sweep(ctx context.Context) (int, error)
}

var (
	_ RatingStore       = (*storage.PostgresStore)(nil)
	_ StatsCache        = (*storage.RedisStats)(nil)
	_ MessageReader     = (*kafka.Reader)(nil)
	_ ConsumerInterface = (*Consumer)(nil)
)
