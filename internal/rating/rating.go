// Package rating maintains the per-menu-item rating aggregate.
package rating

import (
	"math"
	"strings"
	"time"

	"savory-orders/internal/apperr"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MinCommentLength = 10
)

type Aggregate struct {
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// Summary is the denormalized copy of a review embedded in a menu item.
type Summary struct {
	ID         string    `json:"id"`
	MenuItemID string    `json:"menu_item_id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserEmail  string    `json:"user_email"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	Approved   bool      `json:"approved"`
	CreatedAt  time.Time `json:"created_at"`
}

func ValidateRating(r int) error {
	if r < MinRating || r > MaxRating {
		return apperr.Validation("rating", "rating must be between 1 and 5")
	}
	return nil
}

func ValidateComment(comment string) error {
	if len([]rune(strings.TrimSpace(comment))) < MinCommentLength {
		return apperr.Validation("comment", "comment must be at least 10 characters")
	}
	return nil
}

// OnReviewAdded folds one new rating into the stored pair.
func OnReviewAdded(agg Aggregate, r int) (Aggregate, error) {
	if err := ValidateRating(r); err != nil {
		return agg, err
	}
	total := agg.TotalReviews + 1
	sum := agg.AverageRating*float64(agg.TotalReviews) + float64(r)
	return Aggregate{AverageRating: round1(sum / float64(total)), TotalReviews: total}, nil
}

// OnReviewRemoved drops the summary with reviewID and recomputes the
// aggregate from what remains.
func OnReviewRemoved(summaries []Summary, reviewID string) ([]Summary, Aggregate) {
	remaining := make([]Summary, 0, len(summaries))
	for _, s := range summaries {
		if s.ID != reviewID {
			remaining = append(remaining, s)
		}
	}
	return remaining, FromSummaries(remaining)
}

func FromSummaries(summaries []Summary) Aggregate {
	ratings := make([]int, len(summaries))
	for i, s := range summaries {
		ratings[i] = s.Rating
	}
	return Recompute(ratings)
}

func Recompute(ratings []int) Aggregate {
	if len(ratings) == 0 {
		return Aggregate{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return Aggregate{
		AverageRating: round1(float64(sum) / float64(len(ratings))),
		TotalReviews:  len(ratings),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
