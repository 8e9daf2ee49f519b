package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savory-orders/internal/apperr"
	"savory-orders/menu-svc/internal/domain"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestListCategories_OrderedByDisplayOrderThenInsertion(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	first, second := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY display_order ASC, seq ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "emoji", "display_order", "created_at"}).
			AddRow(first.String(), "Breakfast", "", "🍳", 0, now).
			AddRow(second.String(), "Mains", "Hot plates", "🍛", 0, now))

	categories, err := repo.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, first, categories[0].ID)
	assert.Equal(t, "Hot plates", categories[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMenuItem_DecodesEmbeddedReviews(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	now := time.Now()
	reviews := `[{"id":"r1","menu_item_id":"` + id.String() + `","user_id":"u1","user_name":"Sara","rating":5,"comment":"Very tasty food","approved":true,"created_at":"2026-01-02T10:00:00Z"}]`

	mock.ExpectQuery(regexp.QuoteMeta("FROM menu_items WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price", "category", "image_url",
			"available", "average_rating", "total_reviews", "reviews", "created_at", "updated_at"}).
			AddRow(id.String(), "Kitfo", "", "320.00", "Mains", "", true, 5.0, 1, []byte(reviews), now, now))

	item, err := repo.GetMenuItem(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("320").Equal(item.Price))
	require.Len(t, item.Reviews, 1)
	assert.Equal(t, "Sara", item.Reviews[0].UserName)
	assert.Equal(t, 5.0, item.AverageRating)
}

func TestGetMenuItem_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM menu_items WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetMenuItem(context.Background(), id)
	assert.True(t, apperr.IsNotFound(err))
}

func TestListMenuItems_BuildsFilter(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE category = $1 AND available = TRUE AND (name ILIKE $2 OR description ILIKE $2) ORDER BY created_at DESC")).
		WithArgs("Mains", "%wat%").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, err := repo.ListMenuItems(context.Background(), domain.MenuFilter{Category: "Mains", Search: "wat", AvailableOnly: true})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureRatingFields_SingleTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET average_rating = 0")).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("SET total_reviews = 0")).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("SET reviews = '[]'::jsonb")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := repo.EnsureRatingFields(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureRatingFields_RollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET average_rating = 0")).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("SET total_reviews = 0")).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.EnsureRatingFields(context.Background())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetAvailability_UnknownItem(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE menu_items SET available=$1")).
		WithArgs(false, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetAvailability(context.Background(), id, false)
	assert.True(t, apperr.IsNotFound(err))
}

func TestRedisCache_Categories(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	ctx := context.Background()

	_, ok, err := cache.GetCategories(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	want := []domain.MenuCategory{{ID: uuid.New(), Name: "Drinks", Emoji: "🥤", Order: 2}}
	require.NoError(t, cache.SetCategories(ctx, want))

	got, ok, err := cache.GetCategories(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want[0].Name, got[0].Name)

	mr.FastForward(2 * time.Minute)
	_, ok, _ = cache.GetCategories(ctx)
	assert.False(t, ok)

	require.NoError(t, cache.SetCategories(ctx, want))
	require.NoError(t, cache.Invalidate(ctx))
	_, ok, _ = cache.GetCategories(ctx)
	assert.False(t, ok)
}
