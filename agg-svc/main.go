package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"savory-orders/agg-svc/internal/service"
	"savory-orders/agg-svc/internal/storage"
	"savory-orders/config"
	"savory-orders/internal/events"
	"savory-orders/internal/logger"
)

const consumerGroup = "agg-svc-consumer"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load("")
	lg := logger.New("agg-svc")

	db := config.MustInitPostgres(cfg)
	defer db.Close()
	rdb := config.MustInitRedis(cfg)
	defer rdb.Close()

	consumer := service.NewConsumer(storage.NewPostgresStore(db), storage.NewRedisStats(rdb), lg)

	reviews := config.NewKafkaReader(cfg, events.TopicReviews, consumerGroup)
	defer reviews.Close()
	orders := config.NewKafkaReader(cfg, events.TopicOrders, consumerGroup)
	defer orders.Close()

	sweepInterval := time.Duration(config.GetInt("RATING_SWEEP_MINUTES", 15)) * time.Minute
	lg.Info(ctx, "consumer_started", "aggregation service consuming",
		slog.String("topics", events.TopicReviews+","+events.TopicOrders),
		slog.Duration("sweep_interval", sweepInterval))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return consumer.Run(gctx, reviews) })
	g.Go(func() error { return consumer.Run(gctx, orders) })
	g.Go(func() error {
		if _, err := consumer.Sweep(gctx); err != nil {
			lg.Error(gctx, "initial_sweep", "rating sweep failed", err)
		}
		return consumer.SweepEvery(gctx, sweepInterval)
	})

	if err := g.Wait(); err != nil {
		lg.Error(ctx, "service_stopped", "consumer failed", err)
		os.Exit(1)
	}
	lg.Info(context.Background(), "service_stopped", "consumers drained")
}
