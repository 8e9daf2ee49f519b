package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"savory-orders/analytics-svc/internal/domain"
	"savory-orders/internal/apperr"
	"savory-orders/internal/logger"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type AnalyticsService struct {
	repo   Repository
	boards Leaderboard
	log    *logger.Logger
	now    func() time.Time
}

func NewAnalyticsService(repo Repository, boards Leaderboard, log *logger.Logger) *AnalyticsService {
	return &AnalyticsService{repo: repo, boards: boards, log: log, now: time.Now}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

func (s *AnalyticsService) Sales(ctx context.Context, rng domain.DateRange) (*domain.SalesReport, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	days, err := s.repo.DailySales(ctx, rng.From, rng.To)
	if err != nil {
		return nil, apperr.External("postgres", fmt.Errorf("daily sales: %w", err))
	}

	report := &domain.SalesReport{From: rng.From, To: rng.To, DailySales: days}
	for _, d := range days {
		report.TotalRevenue = report.TotalRevenue.Add(d.Revenue)
		report.TotalOrders += d.Orders
	}
	if report.TotalOrders > 0 {
		report.AverageOrderValue = report.TotalRevenue.Div(decimal.NewFromInt(int64(report.TotalOrders))).Round(2)
	}
	return report, nil
}

// PopularItems prefers the Redis leaderboard and falls back to scanning
// order lines when the board is empty or unreachable.
func (s *AnalyticsService) PopularItems(ctx context.Context, period string, limit int) ([]domain.PopularItem, error) {
	limit = clampLimit(limit)

	var (
		ranked []domain.Ranked
		err    error
		since  time.Time
	)
	switch period {
	case domain.PeriodToday:
		now := s.now().UTC()
		since = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		ranked, err = s.boards.PopularOn(ctx, now, limit)
	case domain.PeriodAllTime, "":
		ranked, err = s.boards.PopularAllTime(ctx, limit)
	default:
		return nil, apperr.Validation("period", "period must be today or all")
	}
	if err != nil {
		s.log.Warn(ctx, "leaderboard_read_failed", err.Error(), slog.String("period", period))
	}

	if len(ranked) > 0 {
		refs, err := s.repo.MenuItemRefs(ctx, memberIDs(ranked))
		if err == nil {
			items := make([]domain.PopularItem, 0, len(ranked))
			for _, r := range ranked {
				ref, ok := refs[r.MenuItemID]
				if !ok {
					continue
				}
				items = append(items, domain.PopularItem{MenuItemID: r.MenuItemID, Name: ref.Name, Quantity: int64(r.Score)})
			}
			if len(items) > 0 {
				return items, nil
			}
		} else {
			s.log.Warn(ctx, "menu_lookup_failed", err.Error())
		}
	}

	items, err := s.repo.PopularFromOrders(ctx, since, limit)
	if err != nil {
		return nil, apperr.External("postgres", fmt.Errorf("popular items: %w", err))
	}
	return items, nil
}

func memberIDs(ranked []domain.Ranked) []string {
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.MenuItemID
	}
	return ids
}

// Customers reports every customer's spend and returns the top spenders.
// AverageCustomerOrder is the mean of the per-customer averages.
func (s *AnalyticsService) Customers(ctx context.Context, limit int) (*domain.CustomerReport, error) {
	customers, err := s.repo.CustomerTotals(ctx)
	if err != nil {
		return nil, apperr.External("postgres", fmt.Errorf("customer totals: %w", err))
	}

	report := &domain.CustomerReport{TotalCustomers: len(customers)}
	sumOfAverages := decimal.Zero
	for i := range customers {
		c := &customers[i]
		if c.Orders > 0 {
			c.AverageOrder = c.TotalSpent.Div(decimal.NewFromInt(int64(c.Orders))).Round(2)
		}
		sumOfAverages = sumOfAverages.Add(c.AverageOrder)
	}
	if len(customers) > 0 {
		report.AverageCustomerOrder = sumOfAverages.Div(decimal.NewFromInt(int64(len(customers)))).Round(2)
	}

	limit = clampLimit(limit)
	if len(customers) > limit {
		customers = customers[:limit]
	}
	report.TopCustomers = customers
	return report, nil
}

func (s *AnalyticsService) StatusDistribution(ctx context.Context) (map[string]int, error) {
	counts, err := s.repo.StatusCounts(ctx)
	if err != nil {
		return nil, apperr.External("postgres", fmt.Errorf("status counts: %w", err))
	}
	distribution := make(map[string]int, len(domain.OrderStatuses))
	for _, status := range domain.OrderStatuses {
		distribution[status] = counts[status]
	}
	return distribution, nil
}

func (s *AnalyticsService) RecentOrders(ctx context.Context, limit int) ([]domain.RecentOrder, error) {
	if limit <= 0 {
		limit = 5
	}
	orders, err := s.repo.RecentOrders(ctx, clampLimit(limit))
	if err != nil {
		return nil, apperr.External("postgres", fmt.Errorf("recent orders: %w", err))
	}
	return orders, nil
}

func (s *AnalyticsService) TopRated(ctx context.Context, limit int) ([]domain.RatedItem, error) {
	limit = clampLimit(limit)

	ranked, err := s.boards.TopRated(ctx, limit)
	if err != nil {
		s.log.Warn(ctx, "leaderboard_read_failed", err.Error(), slog.String("board", "rated"))
	}
	if len(ranked) > 0 {
		if refs, err := s.repo.MenuItemRefs(ctx, memberIDs(ranked)); err == nil {
			items := make([]domain.RatedItem, 0, len(ranked))
			for _, r := range ranked {
				if ref, ok := refs[r.MenuItemID]; ok {
					items = append(items, domain.RatedItem{
						MenuItemID:    r.MenuItemID,
						Name:          ref.Name,
						AverageRating: r.Score,
						TotalReviews:  ref.TotalReviews,
					})
				}
			}
			if len(items) > 0 {
				return items, nil
			}
		}
	}

	items, err := s.repo.TopRatedFromMenu(ctx, limit)
	if err != nil {
		return nil, apperr.External("postgres", fmt.Errorf("top rated: %w", err))
	}
	return items, nil
}

func (s *AnalyticsService) ItemRating(ctx context.Context, id uuid.UUID) (*domain.ItemRating, error) {
	stats, err := s.boards.ItemRating(ctx, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, err
		}
		return nil, apperr.External("redis", err)
	}
	return stats, nil
}
