package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"savory-orders/config"
	"savory-orders/internal/auth"
	"savory-orders/internal/logger"
	"savory-orders/internal/notify"
	"savory-orders/internal/server"
	httpapi "savory-orders/notify-svc/internal/api/http"
	"savory-orders/notify-svc/internal/hub"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load("8085")
	lg := logger.New("notify-svc")

	conn := config.MustDialRabbitMQ(cfg)
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("Failed to open RabbitMQ channel:", err)
	}
	defer ch.Close()
	if err := notify.DeclareTopology(ch, notify.Queue); err != nil {
		log.Fatal("Failed to declare notification topology:", err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		log.Fatal("Failed to set QoS:", err)
	}
	deliveries, err := ch.Consume(notify.Queue, "notify-svc", false, false, false, false, nil)
	if err != nil {
		log.Fatal("Failed to consume notifications:", err)
	}

	h := hub.New(lg)
	router := httpapi.NewRouter(httpapi.NewHandler(h, auth.NewAuthenticator(config.MustJWTSecret(cfg)), lg))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.Run(gctx) })
	g.Go(func() error { return notify.Consume(gctx, deliveries, h.Deliver, lg) })
	g.Go(func() error { return server.Run(gctx, ":"+cfg.Port, router, lg) })

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		lg.Error(ctx, "service_stopped", "notify-svc failed", err)
		os.Exit(1)
	}
}
