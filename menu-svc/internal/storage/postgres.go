package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"savory-orders/internal/apperr"
	"savory-orders/internal/rating"
	"savory-orders/menu-svc/internal/domain"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

const menuItemColumns = `id, name, COALESCE(description, ''), price, category, COALESCE(image_url, ''),
	available, COALESCE(average_rating, 0), COALESCE(total_reviews, 0), COALESCE(reviews, '[]'::jsonb),
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMenuItem(row rowScanner) (*domain.MenuItem, error) {
	var (
		item    domain.MenuItem
		reviews []byte
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.Category, &item.Image,
		&item.Available, &item.AverageRating, &item.TotalReviews, &reviews,
		&item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.Reviews = []rating.Summary{}
	if len(reviews) > 0 {
		if err := json.Unmarshal(reviews, &item.Reviews); err != nil {
			return nil, fmt.Errorf("decode reviews of %s: %w", item.ID, err)
		}
	}
	return &item, nil
}

func (r *PostgresRepository) CreateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO menu_items (id, name, description, price, category, image_url, available,
			average_rating, total_reviews, reviews)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, '[]'::jsonb)
		RETURNING created_at, updated_at`,
		item.ID, item.Name, item.Description, item.Price, item.Category, item.Image, item.Available,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
}

func (r *PostgresRepository) ListMenuItems(ctx context.Context, filter domain.MenuFilter) ([]domain.MenuItem, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, "category = $"+strconv.Itoa(len(args)))
	}
	if filter.AvailableOnly {
		where = append(where, "available = TRUE")
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		where = append(where, "(name ILIKE $"+n+" OR description ILIKE $"+n+")")
	}

	query := "SELECT " + menuItemColumns + " FROM menu_items"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.MenuItem{}
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) GetMenuItem(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	item, err := scanMenuItem(r.DB.QueryRowContext(ctx,
		"SELECT "+menuItemColumns+" FROM menu_items WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("menu item", id.String())
	}
	return item, err
}

func (r *PostgresRepository) UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	updated, err := scanMenuItem(r.DB.QueryRowContext(ctx, `
		UPDATE menu_items
		SET name=$1, description=$2, price=$3, category=$4, image_url=$5, available=$6, updated_at=NOW()
		WHERE id=$7
		RETURNING `+menuItemColumns,
		item.Name, item.Description, item.Price, item.Category, item.Image, item.Available, item.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("menu item", item.ID.String())
	}
	if err != nil {
		return err
	}
	*item = *updated
	return nil
}

func (r *PostgresRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	return r.execOne(ctx, id,
		"UPDATE menu_items SET available=$1, updated_at=NOW() WHERE id=$2", available, id)
}

func (r *PostgresRepository) DeleteMenuItem(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM menu_items WHERE id=$1", id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresRepository) UpdateMenuItemImage(ctx context.Context, id uuid.UUID, imageURL string) error {
	return r.execOne(ctx, id,
		"UPDATE menu_items SET image_url=$1, updated_at=NOW() WHERE id=$2", imageURL, id)
}

func (r *PostgresRepository) execOne(ctx context.Context, id uuid.UUID, query string, args ...any) error {
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("menu item", id.String())
	}
	return nil
}

// EnsureRatingFields backfills rating columns on rows created before
// reviews existed. All updates commit together or not at all.
func (r *PostgresRepository) EnsureRatingFields(ctx context.Context) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	statements := []string{
		"UPDATE menu_items SET average_rating = 0 WHERE average_rating IS NULL",
		"UPDATE menu_items SET total_reviews = 0 WHERE total_reviews IS NULL",
		"UPDATE menu_items SET reviews = '[]'::jsonb WHERE reviews IS NULL",
	}
	var total int64
	for _, stmt := range statements {
		result, err := tx.ExecContext(ctx, stmt)
		if err != nil {
			return 0, fmt.Errorf("ensure rating fields `%s`: %w", stmt, err)
		}
		n, _ := result.RowsAffected()
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, c *domain.MenuCategory) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO categories (id, name, description, emoji, display_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		c.ID, c.Name, c.Description, c.Emoji, c.Order,
	).Scan(&c.CreatedAt)
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]domain.MenuCategory, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, COALESCE(description, ''), emoji, display_order, created_at
		FROM categories
		ORDER BY display_order ASC, seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.MenuCategory{}
	for rows.Next() {
		var c domain.MenuCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Emoji, &c.Order, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, c *domain.MenuCategory) error {
	err := r.DB.QueryRowContext(ctx, `
		UPDATE categories SET name=$1, description=$2, emoji=$3, display_order=$4
		WHERE id=$5
		RETURNING created_at`,
		c.Name, c.Description, c.Emoji, c.Order, c.ID,
	).Scan(&c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("category", c.ID.String())
	}
	return err
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id=$1", id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			emoji TEXT NOT NULL DEFAULT '🍽️',
			display_order INT NOT NULL DEFAULT 0,
			seq BIGSERIAL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS menu_items (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			price NUMERIC(12,2) NOT NULL CHECK (price > 0),
			category TEXT NOT NULL,
			image_url TEXT,
			available BOOLEAN NOT NULL DEFAULT TRUE,
			average_rating NUMERIC(2,1),
			total_reviews INT,
			reviews JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		"CREATE INDEX IF NOT EXISTS menu_items_category_idx ON menu_items (category)",
	}
	for _, stmt := range statements {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}
	return nil
}
