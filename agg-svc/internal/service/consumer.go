package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"savory-orders/internal/apperr"
	"savory-orders/internal/events"
	"savory-orders/internal/logger"
)

// Consumer keeps menu item ratings honest and the Redis leaderboards
// current. Review events trigger a recompute from the reviews table; order
// events feed the popularity boards.
type Consumer struct {
	Ratings RatingStore
	Stats   StatsCache
	Log     *logger.Logger
}

func NewConsumer(ratings RatingStore, stats StatsCache, log *logger.Logger) *Consumer {
	return &Consumer{Ratings: ratings, Stats: stats, Log: log}
}

// Run reads until ctx is cancelled or the reader is closed. A message is
// committed after it has been handled, whether or not handling succeeded.
func (c *Consumer) Run(ctx context.Context, reader MessageReader) error {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			c.Log.Error(ctx, "kafka_fetch", "error reading message", err)
			continue
		}

		if err := c.Handle(ctx, msg); err != nil {
			c.Log.Error(ctx, "handle_message", "error processing message", err,
				slog.String("topic", msg.Topic), slog.Int64("offset", msg.Offset))
		}
		if err := reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.Log.Error(ctx, "kafka_commit", "error committing message", err)
		}
	}
}

func (c *Consumer) Handle(ctx context.Context, msg kafka.Message) error {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}

	switch envelope.Type {
	case events.TypeReviewAdded, events.TypeReviewRemoved:
		var evt events.ReviewEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			return fmt.Errorf("decode review event: %w", err)
		}
		return c.ProcessReview(ctx, evt)
	case events.TypeOrderCreated:
		var evt events.OrderEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			return fmt.Errorf("decode order event: %w", err)
		}
		return c.ProcessOrder(ctx, evt)
	default:
		c.Log.Debug(ctx, "message_skipped", "ignoring event", slog.String("type", envelope.Type))
		return nil
	}
}

func (c *Consumer) ProcessReview(ctx context.Context, evt events.ReviewEvent) error {
	id, err := uuid.Parse(evt.MenuItemID)
	if err != nil {
		return fmt.Errorf("review event for menu item %q: %w", evt.MenuItemID, err)
	}
	return c.reconcile(ctx, id)
}

func (c *Consumer) reconcile(ctx context.Context, id uuid.UUID) error {
	result, err := c.Ratings.Reconcile(ctx, id)
	if apperr.IsNotFound(err) {
		c.Log.Debug(ctx, "menu_item_gone", "menu item no longer exists", slog.String("menu_item_id", id.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", id, err)
	}

	if result.Rewritten {
		c.Log.Warn(ctx, "rating_drift_repaired", "menu item rating rewritten from reviews",
			slog.String("menu_item_id", id.String()),
			slog.Float64("stored_average", result.Stored.AverageRating),
			slog.Int("stored_total", result.Stored.TotalReviews),
			slog.Float64("average", result.Actual.AverageRating),
			slog.Int("total", result.Actual.TotalReviews))
	}
	return c.Stats.MirrorRating(ctx, id, result.Actual)
}

func (c *Consumer) ProcessOrder(ctx context.Context, evt events.OrderEvent) error {
	at := evt.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	if err := c.Stats.RecordOrder(ctx, evt.Items, at); err != nil {
		return fmt.Errorf("record order %s: %w", evt.OrderID, err)
	}
	return nil
}

// Sweep reconciles every menu item, catching events that were never
// published.
func (c *Consumer) Sweep(ctx context.Context) (int, error) {
	ids, err := c.Ratings.MenuItemIDs(ctx)
	if err != nil {
		return 0, err
	}
	failed := 0
	for _, id := range ids {
		if err := c.reconcile(ctx, id); err != nil {
			failed++
			c.Log.Error(ctx, "sweep_item", "reconcile failed", err, slog.String("menu_item_id", id.String()))
		}
	}
	c.Log.Info(ctx, "sweep_finished", "rating sweep done", slog.Int("items", len(ids)), slog.Int("failed", failed))
	return len(ids) - failed, nil
}

// SweepEvery runs Sweep on a ticker until ctx is done.
func (c *Consumer) SweepEvery(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := c.Sweep(ctx); err != nil && ctx.Err() == nil {
				c.Log.Error(ctx, "sweep", "rating sweep failed", err)
			}
		}
	}
}
