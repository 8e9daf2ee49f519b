package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"savory-orders/api-gateway/internal/gateway"
	"savory-orders/config"
	"savory-orders/internal/logger"
	"savory-orders/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load("8080")
	lg := logger.New("api-gateway")

	gw, err := gateway.NewGateway(gateway.Config{
		MenuSvcURL:      getEnv("MENU_SVC_URL", "http://localhost:8081"),
		RateSvcURL:      getEnv("RATE_SVC_URL", "http://localhost:8082"),
		OrderSvcURL:     getEnv("ORDER_SVC_URL", "http://localhost:8083"),
		AnalyticsSvcURL: getEnv("ANALYTICS_SVC_URL", "http://localhost:8084"),
		NotifySvcURL:    getEnv("NOTIFY_SVC_URL", "http://localhost:8085"),
	}, &http.Client{Timeout: 30 * time.Second}, lg)
	if err != nil {
		log.Fatal("Failed to configure gateway:", err)
	}

	if err := server.Run(ctx, ":"+cfg.Port, gw.SetupRoutes(), lg); err != nil {
		lg.Error(ctx, "service_stopped", "http server failed", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
