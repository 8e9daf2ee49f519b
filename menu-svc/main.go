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
	"savory-orders/internal/logger"
	"savory-orders/internal/server"
	httpapi "savory-orders/menu-svc/internal/api/http"
	"savory-orders/menu-svc/internal/service"
	"savory-orders/menu-svc/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load("8081")
	lg := logger.New("menu-svc")

	db := config.MustInitPostgres(cfg)
	defer db.Close()
	rdb := config.MustInitRedis(cfg)
	defer rdb.Close()

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	var media service.MediaStore = service.LocalStore{Dir: cfg.UploadDir, BaseURL: cfg.PublicBaseURL}
	if cfg.CloudinaryURL != "" {
		store, err := service.NewCloudinaryStore(cfg.CloudinaryURL, "savory-orders")
		if err != nil {
			log.Fatal("Failed to configure Cloudinary:", err)
		}
		media = store
	}

	handler := httpapi.NewHandler(
		service.NewMenuService(repo),
		service.NewCategoryService(repo, storage.NewRedisCache(rdb, 10*time.Minute), lg),
		service.NewImageService(media),
		lg,
	)
	router := httpapi.NewRouter(handler, auth.NewAuthenticator(config.MustJWTSecret(cfg)), cfg.UploadDir)

	if err := server.Run(ctx, ":"+cfg.Port, router, lg); err != nil {
		lg.Error(ctx, "service_stopped", "http server failed", err)
		os.Exit(1)
	}
}
