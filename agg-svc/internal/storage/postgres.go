package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"savory-orders/agg-svc/internal/domain"
	"savory-orders/internal/apperr"
	"savory-orders/internal/rating"
)

type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

// Reconcile recomputes the aggregate and embedded review list of a menu
// item from the reviews table and rewrites the row when they differ.
func (s *PostgresStore) Reconcile(ctx context.Context, menuItemID uuid.UUID) (domain.Reconciliation, error) {
	result := domain.Reconciliation{MenuItemID: menuItemID}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return result, err
	}
	defer tx.Rollback()

	var raw []byte
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(average_rating, 0), COALESCE(total_reviews, 0), COALESCE(reviews, '[]'::jsonb)
		FROM menu_items
		WHERE id = $1
		FOR UPDATE`, menuItemID).
		Scan(&result.Stored.AverageRating, &result.Stored.TotalReviews, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return result, apperr.NotFound("menu item", menuItemID.String())
	}
	if err != nil {
		return result, err
	}
	var embedded []rating.Summary
	if err := json.Unmarshal(raw, &embedded); err != nil {
		return result, fmt.Errorf("decode reviews of %s: %w", menuItemID, err)
	}

	summaries, err := approvedSummaries(ctx, tx, menuItemID)
	if err != nil {
		return result, err
	}
	result.Actual = rating.FromSummaries(summaries)

	if !result.Drifted() && sameReviews(embedded, summaries) {
		return result, tx.Commit()
	}

	payload, err := json.Marshal(summaries)
	if err != nil {
		return result, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE menu_items
		SET average_rating = $1, total_reviews = $2, reviews = $3, updated_at = NOW()
		WHERE id = $4`,
		result.Actual.AverageRating, result.Actual.TotalReviews, payload, menuItemID); err != nil {
		return result, err
	}
	if err := tx.Commit(); err != nil {
		return result, err
	}
	result.Rewritten = true
	return result, nil
}

func approvedSummaries(ctx context.Context, tx *sql.Tx, menuItemID uuid.UUID) ([]rating.Summary, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, menu_item_id, user_id, COALESCE(user_name, ''), COALESCE(user_email, ''),
			rating, COALESCE(comment, ''), approved, created_at
		FROM reviews
		WHERE menu_item_id = $1 AND approved
		ORDER BY created_at ASC`, menuItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []rating.Summary{}
	for rows.Next() {
		var sm rating.Summary
		if err := rows.Scan(&sm.ID, &sm.MenuItemID, &sm.UserID, &sm.UserName, &sm.UserEmail,
			&sm.Rating, &sm.Comment, &sm.Approved, &sm.CreatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, sm)
	}
	return summaries, rows.Err()
}

func sameReviews(a, b []rating.Summary) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Rating != b[i].Rating {
			return false
		}
	}
	return true
}

func (s *PostgresStore) MenuItemIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT id FROM menu_items ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
