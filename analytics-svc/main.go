package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	httpapi "savory-orders/analytics-svc/internal/api/http"
	"savory-orders/analytics-svc/internal/service"
	"savory-orders/analytics-svc/internal/storage"
	"savory-orders/config"
	"savory-orders/internal/auth"
	"savory-orders/internal/logger"
	"savory-orders/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load("8084")
	lg := logger.New("analytics-svc")

	db := config.MustInitPostgres(cfg)
	defer db.Close()
	rdb := config.MustInitRedis(cfg)
	defer rdb.Close()

	analytics := service.NewAnalyticsService(
		storage.NewPostgresRepository(db),
		storage.NewRedisLeaderboard(rdb),
		lg,
	)
	router := httpapi.NewRouter(httpapi.NewHandler(analytics, lg), auth.NewAuthenticator(config.MustJWTSecret(cfg)))

	if err := server.Run(ctx, ":"+cfg.Port, router, lg); err != nil {
		lg.Error(ctx, "service_stopped", "http server failed", err)
		os.Exit(1)
	}
}
