package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"savory-orders/config"
	"savory-orders/internal/auth"
	"savory-orders/internal/events"
	"savory-orders/internal/logger"
	"savory-orders/internal/server"
	httpapi "savory-orders/rate-svc/internal/api/http"
	"savory-orders/rate-svc/internal/service"
	"savory-orders/rate-svc/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load("8082")
	lg := logger.New("rate-svc")

	db := config.MustInitPostgres(cfg)
	defer db.Close()
	rdb := config.MustInitRedis(cfg)
	defer rdb.Close()

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	writer := config.NewKafkaWriter(cfg, events.TopicReviews)
	defer writer.Close()

	reviews := service.NewReviewService(
		repo,
		storage.NewRedisCache(rdb, 30*time.Second),
		events.NewProducer(writer),
		lg,
	)
	router := httpapi.NewRouter(httpapi.NewHandler(reviews, lg), auth.NewAuthenticator(config.MustJWTSecret(cfg)))

	if err := server.Run(ctx, ":"+cfg.Port, router, lg); err != nil {
		lg.Error(ctx, "service_stopped", "http server failed", err)
		os.Exit(1)
	}
}
