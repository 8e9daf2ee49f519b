package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"savory-orders/analytics-svc/internal/domain"
	"savory-orders/analytics-svc/internal/mocks"
	"savory-orders/internal/apperr"
	"savory-orders/internal/logger"
)

var fixedNow = time.Date(2026, 3, 14, 15, 4, 5, 0, time.UTC)

func newService(t *testing.T) (*AnalyticsService, *mocks.Repository, *mocks.Leaderboard) {
	repo := mocks.NewRepository(t)
	boards := mocks.NewLeaderboard(t)
	svc := NewAnalyticsService(repo, boards, logger.NewWithHandler("analytics-svc", slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, boards
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSales(t *testing.T) {
	svc, repo, _ := newService(t)
	rng := domain.DateRange{From: fixedNow.AddDate(0, 0, -2), To: fixedNow}
	repo.On("DailySales", mock.Anything, rng.From, rng.To).Return([]domain.DailySales{
		{Date: "2026-03-12", Revenue: dec("656"), Orders: 1},
		{Date: "2026-03-14", Revenue: dec("1000.50"), Orders: 2},
	}, nil)

	report, err := svc.Sales(context.Background(), rng)
	require.NoError(t, err)
	assert.True(t, dec("1656.50").Equal(report.TotalRevenue))
	assert.Equal(t, 3, report.TotalOrders)
	assert.True(t, dec("552.17").Equal(report.AverageOrderValue), report.AverageOrderValue.String())
	assert.Len(t, report.DailySales, 2)
}

func TestSales_EmptyRange(t *testing.T) {
	svc, repo, _ := newService(t)
	rng := domain.DateRange{From: fixedNow, To: fixedNow}
	repo.On("DailySales", mock.Anything, rng.From, rng.To).Return([]domain.DailySales{}, nil)

	report, err := svc.Sales(context.Background(), rng)
	require.NoError(t, err)
	assert.True(t, report.AverageOrderValue.IsZero())
	assert.Equal(t, 0, report.TotalOrders)
}

func TestSales_InvalidRange(t *testing.T) {
	svc, _, _ := newService(t)

	tests := []struct {
		name string
		rng  domain.DateRange
	}{
		{"reversed", domain.DateRange{From: fixedNow, To: fixedNow.AddDate(0, 0, -1)}},
		{"missing bounds", domain.DateRange{}},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := svc.Sales(context.Background(), testCase.rng)
			assert.True(t, apperr.IsValidation(err))
		})
	}
}

func TestPopularItems_FromLeaderboard(t *testing.T) {
	svc, repo, boards := newService(t)
	doro, gone := uuid.NewString(), uuid.NewString()

	boards.On("PopularAllTime", mock.Anything, DefaultLimit).
		Return([]domain.Ranked{{MenuItemID: doro, Score: 12}, {MenuItemID: gone, Score: 7}}, nil)
	repo.On("MenuItemRefs", mock.Anything, []string{doro, gone}).
		Return(map[string]domain.ItemRef{doro: {Name: "Doro Wat"}}, nil)

	items, err := svc.PopularItems(context.Background(), domain.PeriodAllTime, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.PopularItem{MenuItemID: doro, Name: "Doro Wat", Quantity: 12}, items[0])
}

func TestPopularItems_TodayFallsBackToOrders(t *testing.T) {
	svc, repo, boards := newService(t)
	midnight := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	revenue := dec("500")

	boards.On("PopularOn", mock.Anything, fixedNow, 5).Return(nil, errors.New("connection refused"))
	repo.On("PopularFromOrders", mock.Anything, midnight, 5).
		Return([]domain.PopularItem{{MenuItemID: "m-1", Name: "Doro Wat", Quantity: 2, Revenue: &revenue}}, nil)

	items, err := svc.PopularItems(context.Background(), domain.PeriodToday, 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, revenue.Equal(*items[0].Revenue))
}

func TestPopularItems_EmptyBoardFallsBack(t *testing.T) {
	svc, repo, boards := newService(t)

	boards.On("PopularAllTime", mock.Anything, MaxLimit).Return([]domain.Ranked{}, nil)
	repo.On("PopularFromOrders", mock.Anything, time.Time{}, MaxLimit).Return([]domain.PopularItem{}, nil)

	items, err := svc.PopularItems(context.Background(), "", 500)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPopularItems_BadPeriod(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.PopularItems(context.Background(), "week", 10)
	assert.True(t, apperr.IsValidation(err))
}

func TestPopularItems_StorageFailure(t *testing.T) {
	svc, repo, boards := newService(t)
	boards.On("PopularAllTime", mock.Anything, DefaultLimit).Return(nil, nil)
	repo.On("PopularFromOrders", mock.Anything, time.Time{}, DefaultLimit).Return(nil, errors.New("db down"))

	_, err := svc.PopularItems(context.Background(), domain.PeriodAllTime, 0)
	assert.True(t, apperr.IsExternal(err))
}

func TestCustomers(t *testing.T) {
	svc, repo, _ := newService(t)
	repo.On("CustomerTotals", mock.Anything).Return([]domain.CustomerStats{
		{UserID: "u-1", Orders: 2, TotalSpent: dec("1000")},
		{UserID: "u-2", Orders: 3, TotalSpent: dec("900")},
		{UserID: "u-3", Orders: 1, TotalSpent: dec("100")},
	}, nil)

	report, err := svc.Customers(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalCustomers)
	require.Len(t, report.TopCustomers, 2)
	assert.True(t, dec("500").Equal(report.TopCustomers[0].AverageOrder))
	assert.True(t, dec("300").Equal(report.TopCustomers[1].AverageOrder))
	// (500 + 300 + 100) / 3
	assert.True(t, dec("300").Equal(report.AverageCustomerOrder), report.AverageCustomerOrder.String())
}

func TestStatusDistribution_ZeroFilled(t *testing.T) {
	svc, repo, _ := newService(t)
	repo.On("StatusCounts", mock.Anything).Return(map[string]int{"pending": 3, "delivered": 10}, nil)

	dist, err := svc.StatusDistribution(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"pending": 3, "preparing": 0, "ready": 0, "delivered": 10, "cancelled": 0,
	}, dist)
}

func TestRecentOrders_DefaultsToFive(t *testing.T) {
	svc, repo, _ := newService(t)
	repo.On("RecentOrders", mock.Anything, 5).Return([]domain.RecentOrder{{ID: "o-1"}}, nil)

	orders, err := svc.RecentOrders(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestTopRated(t *testing.T) {
	id := uuid.NewString()

	t.Run("leaderboard", func(t *testing.T) {
		svc, repo, boards := newService(t)
		boards.On("TopRated", mock.Anything, 3).Return([]domain.Ranked{{MenuItemID: id, Score: 4.7}}, nil)
		repo.On("MenuItemRefs", mock.Anything, []string{id}).
			Return(map[string]domain.ItemRef{id: {Name: "Kitfo", TotalReviews: 9}}, nil)

		items, err := svc.TopRated(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, []domain.RatedItem{{MenuItemID: id, Name: "Kitfo", AverageRating: 4.7, TotalReviews: 9}}, items)
	})

	t.Run("menu fallback", func(t *testing.T) {
		svc, repo, boards := newService(t)
		boards.On("TopRated", mock.Anything, 3).Return(nil, errors.New("timeout"))
		repo.On("TopRatedFromMenu", mock.Anything, 3).
			Return([]domain.RatedItem{{MenuItemID: id, Name: "Kitfo", AverageRating: 4.7, TotalReviews: 9}}, nil)

		items, err := svc.TopRated(context.Background(), 3)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}

func TestItemRating(t *testing.T) {
	id := uuid.New()

	t.Run("cached", func(t *testing.T) {
		svc, _, boards := newService(t)
		boards.On("ItemRating", mock.Anything, id).Return(&domain.ItemRating{MenuItemID: id.String(), AverageRating: 4.5, TotalReviews: 2}, nil)

		stats, err := svc.ItemRating(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 4.5, stats.AverageRating)
	})

	t.Run("not mirrored", func(t *testing.T) {
		svc, _, boards := newService(t)
		boards.On("ItemRating", mock.Anything, id).Return(nil, apperr.NotFound("rating stats", id.String()))

		_, err := svc.ItemRating(context.Background(), id)
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("redis down", func(t *testing.T) {
		svc, _, boards := newService(t)
		boards.On("ItemRating", mock.Anything, id).Return(nil, errors.New("i/o timeout"))

		_, err := svc.ItemRating(context.Background(), id)
		assert.True(t, apperr.IsExternal(err))
	})
}
