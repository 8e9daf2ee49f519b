package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"savory-orders/internal/apperr"
	"savory-orders/internal/events"
	"savory-orders/internal/logger"
	"savory-orders/internal/rating"
	"savory-orders/rate-svc/internal/domain"
)

type ReviewService struct {
	repository ReviewRepository
	cache      ReviewCache
	publisher  ReviewPublisher
	log        *logger.Logger
	now        func() time.Time
}

func NewReviewService(repository ReviewRepository, cache ReviewCache, publisher ReviewPublisher, log *logger.Logger) *ReviewService {
	return &ReviewService{
		repository: repository,
		cache:      cache,
		publisher:  publisher,
		log:        log,
		now:        time.Now,
	}
}

// Submit records an auto-approved review. The review row, the embedded
// summary and the aggregate commit together.
func (s *ReviewService) Submit(ctx context.Context, menuItemID uuid.UUID, author domain.Author, input domain.SubmitInput) (*domain.SubmitResult, error) {
	if err := rating.ValidateRating(input.Rating); err != nil {
		return nil, err
	}
	if err := rating.ValidateComment(input.Comment); err != nil {
		return nil, err
	}

	var marker string
	if s.cache != nil {
		marker = s.cache.ReviewMarkerKey(menuItemID, author.UserID)
		claimed, err := s.cache.Claim(ctx, marker)
		if err != nil {
			s.log.Warn(ctx, "review_marker_failed", err.Error())
			marker = ""
		} else if !claimed {
			return nil, apperr.Conflict("review already submitted, please wait before posting again")
		}
	}

	review := domain.Review{
		ID:         uuid.New(),
		MenuItemID: menuItemID,
		UserID:     author.UserID,
		UserName:   author.DisplayName(),
		UserEmail:  author.Email,
		Rating:     input.Rating,
		Comment:    strings.TrimSpace(input.Comment),
		Approved:   true,
		CreatedAt:  s.now().UTC(),
	}

	agg, err := s.repository.InsertReview(ctx, &review, func(current rating.Aggregate, summaries []rating.Summary) (rating.Aggregate, []rating.Summary, error) {
		next, err := rating.OnReviewAdded(current, review.Rating)
		if err != nil {
			return current, summaries, err
		}
		// Recompute from the locked list when it holds every counted review.
		if len(summaries) == current.TotalReviews {
			next = rating.FromSummaries(append(summaries, review.Summary()))
		}
		return next, append(summaries, review.Summary()), nil
	})
	if err != nil {
		if marker != "" {
			_ = s.cache.Release(ctx, marker)
		}
		return nil, storageError(err, "submit review")
	}

	s.publish(ctx, events.ReviewEvent{
		Type:       events.TypeReviewAdded,
		ReviewID:   review.ID.String(),
		MenuItemID: menuItemID.String(),
		Rating:     review.Rating,
		Timestamp:  review.CreatedAt,
	})

	return &domain.SubmitResult{Review: review, Aggregate: agg}, nil
}

// Remove deletes a review and recomputes the aggregate from the remaining
// embedded summaries.
func (s *ReviewService) Remove(ctx context.Context, reviewID, menuItemID uuid.UUID) (rating.Aggregate, error) {
	agg, err := s.repository.DeleteReview(ctx, reviewID, menuItemID, func(_ rating.Aggregate, summaries []rating.Summary) (rating.Aggregate, []rating.Summary, error) {
		remaining, next := rating.OnReviewRemoved(summaries, reviewID.String())
		return next, remaining, nil
	})
	if err != nil {
		return rating.Aggregate{}, storageError(err, "remove review")
	}

	s.publish(ctx, events.ReviewEvent{
		Type:       events.TypeReviewRemoved,
		ReviewID:   reviewID.String(),
		MenuItemID: menuItemID.String(),
		Timestamp:  s.now().UTC(),
	})
	return agg, nil
}

func (s *ReviewService) ListForMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]domain.Review, error) {
	reviews, err := s.repository.ListForMenuItem(ctx, menuItemID)
	return reviews, storageError(err, "list reviews")
}

func (s *ReviewService) ListAll(ctx context.Context) ([]domain.Review, error) {
	reviews, err := s.repository.ListAll(ctx)
	return reviews, storageError(err, "list reviews")
}

func (s *ReviewService) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	reviews, err := s.repository.ListByUser(ctx, userID)
	return reviews, storageError(err, "list reviews")
}

func (s *ReviewService) Distribution(ctx context.Context) (map[string]int, error) {
	dist, err := s.repository.RatingDistribution(ctx)
	return dist, storageError(err, "rating distribution")
}

// publish only logs failures; agg-svc reconciles from the reviews table.
func (s *ReviewService) publish(ctx context.Context, evt events.ReviewEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishReview(ctx, evt); err != nil {
		s.log.Error(ctx, "publish_review_event", "failed to publish review event", err,
			slog.String("review_id", evt.ReviewID), slog.String("type", evt.Type))
	}
}

func storageError(err error, op string) error {
	if err == nil || apperr.IsNotFound(err) || apperr.IsValidation(err) {
		return err
	}
	return apperr.External("postgres", fmt.Errorf("%s: %w", op, err))
}
