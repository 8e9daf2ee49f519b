// Package leaderboard names the Redis keys agg-svc writes and
// analytics-svc reads.
package leaderboard

import (
	"time"

	"github.com/google/uuid"
)

const (
	// RatedKey scores menu items by average rating.
	RatedKey = "analytics:rated"
	// PopularAllTimeKey scores menu items by quantity ordered.
	PopularAllTimeKey = "analytics:popular:alltime"

	DailyRetention  = 7 * 24 * time.Hour
	RatingMirrorTTL = 24 * time.Hour
)

func PopularDailyKey(day time.Time) string {
	return "analytics:popular:daily:" + day.UTC().Format("2006-01-02")
}

// MenuItemKey is the hash mirroring one menu item's rating aggregate.
func MenuItemKey(id uuid.UUID) string {
	return "dish:" + id.String()
}
