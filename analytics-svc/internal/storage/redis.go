package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"savory-orders/analytics-svc/internal/domain"
	"savory-orders/internal/apperr"
	"savory-orders/internal/leaderboard"
)

// RedisLeaderboard reads the sorted sets and rating hashes agg-svc keeps.
type RedisLeaderboard struct {
	Client *redis.Client
}

func NewRedisLeaderboard(client *redis.Client) *RedisLeaderboard {
	return &RedisLeaderboard{Client: client}
}

func (l *RedisLeaderboard) PopularOn(ctx context.Context, day time.Time, limit int) ([]domain.Ranked, error) {
	return l.top(ctx, leaderboard.PopularDailyKey(day), limit)
}

func (l *RedisLeaderboard) PopularAllTime(ctx context.Context, limit int) ([]domain.Ranked, error) {
	return l.top(ctx, leaderboard.PopularAllTimeKey, limit)
}

func (l *RedisLeaderboard) TopRated(ctx context.Context, limit int) ([]domain.Ranked, error) {
	return l.top(ctx, leaderboard.RatedKey, limit)
}

func (l *RedisLeaderboard) top(ctx context.Context, key string, limit int) ([]domain.Ranked, error) {
	result, err := l.Client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	ranked := make([]domain.Ranked, 0, len(result))
	for _, z := range result {
		member, _ := z.Member.(string)
		ranked = append(ranked, domain.Ranked{MenuItemID: member, Score: z.Score})
	}
	return ranked, nil
}

func (l *RedisLeaderboard) ItemRating(ctx context.Context, id uuid.UUID) (*domain.ItemRating, error) {
	stats, err := l.Client.HGetAll(ctx, leaderboard.MenuItemKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return nil, apperr.NotFound("rating stats", id.String())
	}
	avg, _ := strconv.ParseFloat(stats["average_rating"], 64)
	total, _ := strconv.Atoi(stats["total_reviews"])
	updated, _ := strconv.ParseInt(stats["last_updated"], 10, 64)
	return &domain.ItemRating{
		MenuItemID:    id.String(),
		AverageRating: avg,
		TotalReviews:  total,
		LastUpdated:   time.Unix(updated, 0).UTC(),
	}, nil
}
