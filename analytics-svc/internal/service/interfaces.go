package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"savory-orders/analytics-svc/internal/domain"
	"savory-orders/analytics-svc/internal/storage"
)

type Repository interface {
	DailySales(ctx context.Context, from, to time.Time) ([]domain.DailySales, error)
	PopularFromOrders(ctx context.Context, since time.Time, limit int) ([]domain.PopularItem, error)
	CustomerTotals(ctx context.Context) ([]domain.CustomerStats, error)
	StatusCounts(ctx context.Context) (map[string]int, error)
	RecentOrders(ctx context.Context, limit int) ([]domain.RecentOrder, error)
	TopRatedFromMenu(ctx context.Context, limit int) ([]domain.RatedItem, error)
	MenuItemRefs(ctx context.Context, ids []string) (map[string]domain.ItemRef, error)
}

type Leaderboard interface {
	PopularOn(ctx context.Context, day time.Time, limit int) ([]domain.Ranked, error)
	PopularAllTime(ctx context.Context, limit int) ([]domain.Ranked, error)
	TopRated(ctx context.Context, limit int) ([]domain.Ranked, error)
	ItemRating(ctx context.Context, id uuid.UUID) (*domain.ItemRating, error)
}

type AnalyticsInterface interface {
	Sales(ctx context.Context, rng domain.DateRange) (*domain.SalesReport, error)
	PopularItems(ctx context.Context, period string, limit int) ([]domain.PopularItem, error)
	Customers(ctx context.Context, limit int) (*domain.CustomerReport, error)
	StatusDistribution(ctx context.Context) (map[string]int, error)
	RecentOrders(ctx context.Context, limit int) ([]domain.RecentOrder, error)
	TopRated(ctx context.Context, limit int) ([]domain.RatedItem, error)
	ItemRating(ctx context.Context, id uuid.UUID) (*domain.ItemRating, error)
}

var (
	_ Repository         = (*storage.PostgresRepository)(nil)
	_ Leaderboard        = (*storage.RedisLeaderboard)(nil)
	_ AnalyticsInterface = (*AnalyticsService)(nil)
)
