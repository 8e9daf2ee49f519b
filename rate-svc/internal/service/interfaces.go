package service

import (
	"context"

	"github.com/google/uuid"

	"savory-orders/internal/events"
	"savory-orders/internal/rating"
	"savory-orders/rate-svc/internal/domain"
)

type ReviewServiceInterface interface {
	Submit(ctx context.Context, menuItemID uuid.UUID, author domain.Author, input domain.SubmitInput) (*domain.SubmitResult, error)
	Remove(ctx context.Context, reviewID, menuItemID uuid.UUID) (rating.Aggregate, error)
	ListForMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]domain.Review, error)
	ListAll(ctx context.Context) ([]domain.Review, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Review, error)
	Distribution(ctx context.Context) (map[string]int, error)
}

type ReviewRepository interface {
	InsertReview(ctx context.Context, review *domain.Review, update domain.RatingUpdate) (rating.Aggregate, error)
	DeleteReview(ctx context.Context, reviewID, menuItemID uuid.UUID, update domain.RatingUpdate) (rating.Aggregate, error)
	ListForMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]domain.Review, error)
	ListAll(ctx context.Context) ([]domain.Review, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Review, error)
	RatingDistribution(ctx context.Context) (map[string]int, error)
}

type ReviewCache interface {
	ReviewMarkerKey(menuItemID uuid.UUID, userID string) string
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type ReviewPublisher interface {
	PublishReview(ctx context.Context, evt events.ReviewEvent) error
}

var _ ReviewServiceInterface = (*ReviewService)(nil)
