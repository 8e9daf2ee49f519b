package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"savory-orders/internal/apperr"
	"savory-orders/internal/events"
	"savory-orders/internal/logger"
	"savory-orders/internal/rating"
	"savory-orders/rate-svc/internal/domain"
	"savory-orders/rate-svc/internal/mocks"
	"savory-orders/rate-svc/internal/service"
)

// menuItemState stands in for the locked menu item row.
type menuItemState struct {
	agg       rating.Aggregate
	summaries []rating.Summary
}

func (s *menuItemState) insert(_ context.Context, _ *domain.Review, update domain.RatingUpdate) (rating.Aggregate, error) {
	agg, summaries, err := update(s.agg, s.summaries)
	if err != nil {
		return rating.Aggregate{}, err
	}
	s.agg, s.summaries = agg, summaries
	return agg, nil
}

func (s *menuItemState) remove(_ context.Context, _, _ uuid.UUID, update domain.RatingUpdate) (rating.Aggregate, error) {
	return s.insert(context.Background(), nil, update)
}

func quietLogger() *logger.Logger {
	return logger.NewWithHandler("rate-svc", slog.NewTextHandler(io.Discard, nil))
}

func TestReviewService_RatingRoundTrip(t *testing.T) {
	ctx := context.Background()
	itemID := uuid.New()
	state := &menuItemState{summaries: []rating.Summary{}}

	repo := new(mocks.ReviewRepository)
	repo.On("InsertReview", mock.Anything, mock.Anything, mock.Anything).Return(state.insert, nil)
	repo.On("DeleteReview", mock.Anything, mock.Anything, itemID, mock.Anything).Return(state.remove, nil)
	publisher := new(mocks.ReviewPublisher)
	publisher.On("PublishReview", mock.Anything, mock.AnythingOfType("events.ReviewEvent")).Return(nil)

	svc := service.NewReviewService(repo, nil, publisher, quietLogger())
	author := domain.Author{UserID: "u-1", Email: "hana@example.com"}

	first, err := svc.Submit(ctx, itemID, author, domain.SubmitInput{Rating: 5, Comment: "Excellent injera and wat"})
	require.NoError(t, err)
	assert.Equal(t, rating.Aggregate{AverageRating: 5.0, TotalReviews: 1}, first.Aggregate)
	assert.True(t, first.Review.Approved)
	assert.Equal(t, "hana", first.Review.UserName)

	second, err := svc.Submit(ctx, itemID, domain.Author{UserID: "u-2", Name: "Dawit"}, domain.SubmitInput{Rating: 3, Comment: "A bit too salty today"})
	require.NoError(t, err)
	assert.Equal(t, rating.Aggregate{AverageRating: 4.0, TotalReviews: 2}, second.Aggregate)
	require.Len(t, state.summaries, 2)

	agg, err := svc.Remove(ctx, second.Review.ID, itemID)
	require.NoError(t, err)
	assert.Equal(t, rating.Aggregate{AverageRating: 5.0, TotalReviews: 1}, agg)
	require.Len(t, state.summaries, 1)
	assert.Equal(t, first.Review.ID.String(), state.summaries[0].ID)

	publisher.AssertNumberOfCalls(t, "PublishReview", 3)
}

func TestReviewService_SubmitValidation(t *testing.T) {
	tests := []struct {
		name  string
		input domain.SubmitInput
	}{
		{name: "rating zero", input: domain.SubmitInput{Rating: 0, Comment: "long enough comment"}},
		{name: "rating six", input: domain.SubmitInput{Rating: 6, Comment: "long enough comment"}},
		{name: "short comment", input: domain.SubmitInput{Rating: 4, Comment: "  tasty   "}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo := new(mocks.ReviewRepository)
			svc := service.NewReviewService(repo, nil, nil, quietLogger())

			_, err := svc.Submit(context.Background(), uuid.New(), domain.Author{UserID: "u-1"}, testCase.input)
			assert.True(t, apperr.IsValidation(err))
			repo.AssertNotCalled(t, "InsertReview", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestReviewService_DuplicateSubmitBlocked(t *testing.T) {
	itemID := uuid.New()
	repo := new(mocks.ReviewRepository)
	cache := new(mocks.ReviewCache)
	cache.On("ReviewMarkerKey", itemID, "u-1").Return("review:x:u-1")
	cache.On("Claim", mock.Anything, "review:x:u-1").Return(false, nil).Once()

	svc := service.NewReviewService(repo, cache, nil, quietLogger())
	_, err := svc.Submit(context.Background(), itemID, domain.Author{UserID: "u-1"}, domain.SubmitInput{Rating: 4, Comment: "Lovely spices here"})

	assert.Equal(t, 409, apperr.StatusCode(err))
	repo.AssertNotCalled(t, "InsertReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewService_FailedWriteReleasesMarker(t *testing.T) {
	itemID := uuid.New()
	repo := new(mocks.ReviewRepository)
	repo.On("InsertReview", mock.Anything, mock.Anything, mock.Anything).Return(rating.Aggregate{}, errors.New("deadlock detected")).Once()
	cache := new(mocks.ReviewCache)
	cache.On("ReviewMarkerKey", itemID, "u-1").Return("review:x:u-1")
	cache.On("Claim", mock.Anything, "review:x:u-1").Return(true, nil).Once()
	cache.On("Release", mock.Anything, "review:x:u-1").Return(nil).Once()

	svc := service.NewReviewService(repo, cache, nil, quietLogger())
	_, err := svc.Submit(context.Background(), itemID, domain.Author{UserID: "u-1"}, domain.SubmitInput{Rating: 4, Comment: "Lovely spices here"})

	assert.True(t, apperr.IsExternal(err))
	cache.AssertExpectations(t)
}

func TestReviewService_MissingMenuItem(t *testing.T) {
	itemID := uuid.New()
	repo := new(mocks.ReviewRepository)
	repo.On("InsertReview", mock.Anything, mock.Anything, mock.Anything).
		Return(rating.Aggregate{}, apperr.NotFound("menu item", itemID.String())).Once()

	svc := service.NewReviewService(repo, nil, nil, quietLogger())
	_, err := svc.Submit(context.Background(), itemID, domain.Author{UserID: "u-1"}, domain.SubmitInput{Rating: 2, Comment: "Arrived cold, sadly"})
	assert.True(t, apperr.IsNotFound(err))
}

func TestReviewService_PublishFailureDoesNotFailSubmit(t *testing.T) {
	state := &menuItemState{}
	repo := new(mocks.ReviewRepository)
	repo.On("InsertReview", mock.Anything, mock.Anything, mock.Anything).Return(state.insert, nil)
	publisher := new(mocks.ReviewPublisher)
	publisher.On("PublishReview", mock.Anything, mock.MatchedBy(func(evt events.ReviewEvent) bool {
		return evt.Type == events.TypeReviewAdded && evt.Rating == 4
	})).Return(errors.New("kafka unavailable")).Once()

	svc := service.NewReviewService(repo, nil, publisher, quietLogger())
	result, err := svc.Submit(context.Background(), uuid.New(), domain.Author{UserID: "u-1"}, domain.SubmitInput{Rating: 4, Comment: "Good portion sizes"})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Aggregate.TotalReviews)
	publisher.AssertExpectations(t)
}

func TestAuthorDisplayName(t *testing.T) {
	assert.Equal(t, "Meron", domain.Author{Name: "Meron", Email: "m@x.io"}.DisplayName())
	assert.Equal(t, "m.tesfaye", domain.Author{Email: "m.tesfaye@x.io"}.DisplayName())
	assert.Equal(t, "Anonymous", domain.Author{}.DisplayName())
}

func TestReviewService_SubmitAverageMatchesMeanOfRatings(t *testing.T) {
	ctx := context.Background()
	itemID := uuid.New()
	state := &menuItemState{summaries: []rating.Summary{}}

	repo := new(mocks.ReviewRepository)
	repo.On("InsertReview", mock.Anything, mock.Anything, mock.Anything).Return(state.insert, nil)
	publisher := new(mocks.ReviewPublisher)
	publisher.On("PublishReview", mock.Anything, mock.AnythingOfType("events.ReviewEvent")).Return(nil)

	svc := service.NewReviewService(repo, nil, publisher, quietLogger())

	var last *domain.SubmitResult
	for i, r := range []int{1, 1, 2, 1} {
		res, err := svc.Submit(ctx, itemID, domain.Author{UserID: uuid.NewString()}, domain.SubmitInput{Rating: r, Comment: "Comment number " + string(rune('a'+i))})
		require.NoError(t, err)
		last = res
	}

	assert.Equal(t, rating.Aggregate{AverageRating: 1.3, TotalReviews: 4}, last.Aggregate)
	assert.Equal(t, rating.FromSummaries(state.summaries), last.Aggregate)
}

func TestReviewService_SubmitLegacyItemUsesIncrementalAverage(t *testing.T) {
	ctx := context.Background()
	// Counted reviews without an embedded list: only the stored pair is known.
	state := &menuItemState{agg: rating.Aggregate{AverageRating: 4.0, TotalReviews: 3}, summaries: []rating.Summary{}}

	repo := new(mocks.ReviewRepository)
	repo.On("InsertReview", mock.Anything, mock.Anything, mock.Anything).Return(state.insert, nil)
	publisher := new(mocks.ReviewPublisher)
	publisher.On("PublishReview", mock.Anything, mock.AnythingOfType("events.ReviewEvent")).Return(nil)

	svc := service.NewReviewService(repo, nil, publisher, quietLogger())
	res, err := svc.Submit(ctx, uuid.New(), domain.Author{UserID: "u-9"}, domain.SubmitInput{Rating: 2, Comment: "Cold when it arrived"})
	require.NoError(t, err)
	assert.Equal(t, rating.Aggregate{AverageRating: 3.5, TotalReviews: 4}, res.Aggregate)
}
