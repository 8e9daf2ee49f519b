package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"savory-orders/config"
	"savory-orders/internal/auth"
	"savory-orders/internal/events"
	"savory-orders/internal/logger"
	"savory-orders/internal/notify"
	"savory-orders/internal/pricing"
	"savory-orders/internal/server"
	httpapi "savory-orders/order-svc/internal/api/http"
	"savory-orders/order-svc/internal/cart"
	"savory-orders/order-svc/internal/domain"
	"savory-orders/order-svc/internal/payment"
	"savory-orders/order-svc/internal/service"
	"savory-orders/order-svc/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load("8083")
	lg := logger.New("order-svc")

	db := config.MustInitPostgres(cfg)
	defer db.Close()
	rdb := config.MustInitRedis(cfg)
	defer rdb.Close()

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	writer := config.NewKafkaWriter(cfg, events.TopicOrders)
	defer writer.Close()

	conn := config.MustDialRabbitMQ(cfg)
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("Failed to open RabbitMQ channel:", err)
	}
	defer ch.Close()
	if err := notify.DeclareTopology(ch, ""); err != nil {
		log.Fatal("Failed to declare notification exchange:", err)
	}

	calc := pricing.Calculator{
		DeliveryFee:        cfg.DeliveryFee,
		ExchangeRate:       cfg.ExchangeRate,
		MinimumCharge:      cfg.MinimumCharge,
		LocalCurrency:      cfg.LocalCurrency,
		SettlementCurrency: cfg.SettlementCurrency,
	}

	processors := map[domain.PaymentMethod]payment.Processor{}
	if stripe := payment.NewStripe(cfg.StripeSecretKey); stripe != nil {
		processors[domain.PaymentStripe] = stripe
	} else {
		lg.Warn(ctx, "stripe_disabled", "STRIPE_SECRET_KEY is not set")
	}
	paypal := payment.NewPayPal(payment.PayPalConfig{
		ClientID:     cfg.PayPalClientID,
		ClientSecret: cfg.PayPalClientSecret,
		BaseURL:      cfg.PayPalBaseURL,
		ReturnURL:    cfg.PublicBaseURL + "/checkout/confirm",
		CancelURL:    cfg.PublicBaseURL + "/checkout",
	}, &http.Client{Timeout: 15 * time.Second})
	if paypal != nil {
		processors[domain.PaymentPayPal] = paypal
	} else {
		lg.Warn(ctx, "paypal_disabled", "PAYPAL_CLIENT_ID or PAYPAL_CLIENT_SECRET is not set")
	}

	orders := service.NewOrderService(
		repo,
		calc,
		events.NewProducer(writer),
		notify.NewPublisher(ch),
		service.TrackingQR{BaseURL: cfg.PublicBaseURL},
		lg,
	)
	carts := cart.NewStore(cart.NewRedisPersistence(rdb, cart.DefaultTTL), repo)
	checkout := service.NewCheckoutService(
		carts,
		storage.NewSessionStore(rdb, time.Hour),
		orders,
		processors,
		calc,
		lg,
	)

	router := httpapi.NewRouter(httpapi.NewHandler(orders, checkout, carts, lg), auth.NewAuthenticator(config.MustJWTSecret(cfg)))

	if err := server.Run(ctx, ":"+cfg.Port, router, lg); err != nil {
		lg.Error(ctx, "service_stopped", "http server failed", err)
		os.Exit(1)
	}
}
