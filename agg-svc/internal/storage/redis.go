package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"savory-orders/internal/events"
	"savory-orders/internal/leaderboard"
	"savory-orders/internal/rating"
)

type RedisStats struct {
	Client *redis.Client
	now    func() time.Time
}

func NewRedisStats(client *redis.Client) *RedisStats {
	return &RedisStats{Client: client, now: time.Now}
}

// MirrorRating caches the aggregate for quick lookups and keeps the rated
// leaderboard in step. Items without reviews leave the leaderboard.
func (s *RedisStats) MirrorRating(ctx context.Context, menuItemID uuid.UUID, agg rating.Aggregate) error {
	key := leaderboard.MenuItemKey(menuItemID)
	member := menuItemID.String()

	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			"average_rating": agg.AverageRating,
			"total_reviews":  agg.TotalReviews,
			"last_updated":   s.now().Unix(),
		})
		pipe.Expire(ctx, key, leaderboard.RatingMirrorTTL)
		if agg.TotalReviews == 0 {
			pipe.ZRem(ctx, leaderboard.RatedKey, member)
		} else {
			pipe.ZAdd(ctx, leaderboard.RatedKey, redis.Z{Score: agg.AverageRating, Member: member})
		}
		return nil
	})
	return err
}

// RecordOrder adds each line's quantity to the daily and all-time
// popularity boards.
func (s *RedisStats) RecordOrder(ctx context.Context, lines []events.OrderLine, at time.Time) error {
	if len(lines) == 0 {
		return nil
	}
	dailyKey := leaderboard.PopularDailyKey(at)

	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, line := range lines {
			qty := float64(line.Quantity)
			pipe.ZIncrBy(ctx, dailyKey, qty, line.MenuItemID)
			pipe.ZIncrBy(ctx, leaderboard.PopularAllTimeKey, qty, line.MenuItemID)
		}
		pipe.Expire(ctx, dailyKey, leaderboard.DailyRetention)
		return nil
	})
	return err
}
