package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"savory-orders/internal/apperr"
	"savory-orders/internal/rating"
	"savory-orders/rate-svc/internal/domain"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

// InsertReview stores the review and rewrites the owning menu item's rating
// fields in one transaction, holding the item row lock throughout.
func (r *PostgresRepository) InsertReview(ctx context.Context, review *domain.Review, update domain.RatingUpdate) (rating.Aggregate, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return rating.Aggregate{}, err
	}
	defer tx.Rollback()

	agg, summaries, err := lockMenuItem(ctx, tx, review.MenuItemID)
	if err != nil {
		return rating.Aggregate{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO reviews (id, menu_item_id, user_id, user_name, user_email, rating, comment, approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		review.ID, review.MenuItemID, review.UserID, review.UserName, review.UserEmail,
		review.Rating, review.Comment, review.Approved, review.CreatedAt); err != nil {
		return rating.Aggregate{}, fmt.Errorf("insert review: %w", err)
	}

	next, err := applyUpdate(ctx, tx, review.MenuItemID, agg, summaries, update)
	if err != nil {
		return rating.Aggregate{}, err
	}
	return next, tx.Commit()
}

// DeleteReview removes the review and its embedded copy, recomputing the
// aggregate inside the same transaction.
func (r *PostgresRepository) DeleteReview(ctx context.Context, reviewID, menuItemID uuid.UUID, update domain.RatingUpdate) (rating.Aggregate, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return rating.Aggregate{}, err
	}
	defer tx.Rollback()

	agg, summaries, err := lockMenuItem(ctx, tx, menuItemID)
	if err != nil {
		return rating.Aggregate{}, err
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE id = $1 AND menu_item_id = $2", reviewID, menuItemID)
	if err != nil {
		return rating.Aggregate{}, fmt.Errorf("delete review: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return rating.Aggregate{}, apperr.NotFound("review", reviewID.String())
	}

	next, err := applyUpdate(ctx, tx, menuItemID, agg, summaries, update)
	if err != nil {
		return rating.Aggregate{}, err
	}
	return next, tx.Commit()
}

func lockMenuItem(ctx context.Context, tx *sql.Tx, id uuid.UUID) (rating.Aggregate, []rating.Summary, error) {
	var (
		agg rating.Aggregate
		raw []byte
	)
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(average_rating, 0), COALESCE(total_reviews, 0), COALESCE(reviews, '[]'::jsonb)
		FROM menu_items WHERE id = $1
		FOR UPDATE`, id).Scan(&agg.AverageRating, &agg.TotalReviews, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return agg, nil, apperr.NotFound("menu item", id.String())
	}
	if err != nil {
		return agg, nil, fmt.Errorf("lock menu item: %w", err)
	}

	summaries := []rating.Summary{}
	if err := json.Unmarshal(raw, &summaries); err != nil {
		return agg, nil, fmt.Errorf("decode reviews of %s: %w", id, err)
	}
	return agg, summaries, nil
}

func applyUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID, agg rating.Aggregate, summaries []rating.Summary, update domain.RatingUpdate) (rating.Aggregate, error) {
	next, nextSummaries, err := update(agg, summaries)
	if err != nil {
		return rating.Aggregate{}, err
	}
	payload, err := json.Marshal(nextSummaries)
	if err != nil {
		return rating.Aggregate{}, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE menu_items
		SET average_rating = $1, total_reviews = $2, reviews = $3, updated_at = NOW()
		WHERE id = $4`,
		next.AverageRating, next.TotalReviews, payload, id); err != nil {
		return rating.Aggregate{}, fmt.Errorf("update menu item rating: %w", err)
	}
	return next, nil
}

const reviewColumns = "id, menu_item_id, user_id, user_name, COALESCE(user_email, ''), rating, comment, approved, created_at"

func (r *PostgresRepository) ListForMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]domain.Review, error) {
	return r.query(ctx, `SELECT `+reviewColumns+` FROM reviews
		WHERE menu_item_id = $1 AND approved = TRUE
		ORDER BY created_at DESC`, menuItemID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]domain.Review, error) {
	return r.query(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY created_at DESC`)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	return r.query(ctx, `SELECT `+reviewColumns+` FROM reviews
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(&rev.ID, &rev.MenuItemID, &rev.UserID, &rev.UserName, &rev.UserEmail,
			&rev.Rating, &rev.Comment, &rev.Approved, &rev.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

func (r *PostgresRepository) RatingDistribution(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT rating, COUNT(*) AS count
		FROM reviews
		GROUP BY rating
		ORDER BY rating`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	distribution := map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}
	for rows.Next() {
		var stars, count int
		if err := rows.Scan(&stars, &count); err != nil {
			return nil, err
		}
		distribution[fmt.Sprintf("%d", stars)] = count
	}
	return distribution, rows.Err()
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reviews (
			id UUID PRIMARY KEY,
			menu_item_id UUID NOT NULL,
			user_id TEXT NOT NULL,
			user_name TEXT NOT NULL,
			user_email TEXT,
			rating SMALLINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment TEXT NOT NULL,
			approved BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		"CREATE INDEX IF NOT EXISTS reviews_menu_item_idx ON reviews (menu_item_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS reviews_user_idx ON reviews (user_id)",
	}
	for _, stmt := range statements {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}
	return nil
}
