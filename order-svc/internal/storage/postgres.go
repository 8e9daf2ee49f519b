package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"savory-orders/internal/apperr"
	"savory-orders/order-svc/internal/domain"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

const orderColumns = `id, user_id, COALESCE(user_email, ''), COALESCE(user_name, ''), items,
	subtotal, delivery_fee, grand_total, status, payment_method, payment_status,
	COALESCE(payment_confirmation_id, ''), street, city, phone, COALESCE(instructions, ''),
	created_at, updated_at, estimated_delivery_at, delivered_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o         domain.Order
		items     []byte
		estimated sql.NullTime
		delivered sql.NullTime
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.UserEmail, &o.UserName, &items,
		&o.Subtotal, &o.DeliveryFee, &o.GrandTotal, &o.Status, &o.PaymentMethod, &o.PaymentStatus,
		&o.PaymentConfirmationID, &o.DeliveryAddress.Street, &o.DeliveryAddress.City,
		&o.DeliveryAddress.Phone, &o.DeliveryAddress.Instructions,
		&o.CreatedAt, &o.UpdatedAt, &estimated, &delivered); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items of order %s: %w", o.ID, err)
	}
	if estimated.Valid {
		o.EstimatedDeliveryAt = &estimated.Time
	}
	if delivered.Valid {
		o.DeliveredAt = &delivered.Time
	}
	return &o, nil
}

// CreateOrder inserts the order and its first status log entry together,
// unless another order already carries the same payment confirmation id, in
// which case it reports created=false and writes nothing.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o *domain.Order) (bool, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return false, err
	}
	var confirmation sql.NullString
	if o.PaymentConfirmationID != "" {
		confirmation = sql.NullString{String: o.PaymentConfirmationID, Valid: true}
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (id, user_id, user_email, user_name, items, subtotal, delivery_fee, grand_total,
			status, payment_method, payment_status, payment_confirmation_id,
			street, city, phone, instructions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
		ON CONFLICT (payment_confirmation_id) DO NOTHING
		RETURNING created_at`,
		o.ID, o.UserID, o.UserEmail, o.UserName, items, o.Subtotal, o.DeliveryFee, o.GrandTotal,
		o.Status, o.PaymentMethod, o.PaymentStatus, confirmation,
		o.DeliveryAddress.Street, o.DeliveryAddress.City, o.DeliveryAddress.Phone, o.DeliveryAddress.Instructions,
		o.CreatedAt,
	).Scan(&o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := insertStatusLog(ctx, tx, domain.StatusChange{
		OrderID:   o.ID,
		Status:    o.Status,
		ChangedBy: o.UserID,
		ChangedAt: o.CreatedAt,
	}); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	o.UpdatedAt = o.CreatedAt
	return true, nil
}

func (r *PostgresRepository) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, err := scanOrder(r.DB.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order", id.String())
	}
	return o, err
}

func (r *PostgresRepository) GetOrderByConfirmation(ctx context.Context, confirmationID string) (*domain.Order, error) {
	o, err := scanOrder(r.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE payment_confirmation_id = $1", confirmationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order", confirmationID)
	}
	return o, err
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, "SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
}

func (r *PostgresRepository) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	return r.list(ctx, "SELECT "+orderColumns+" FROM orders WHERE status = $1 ORDER BY created_at DESC", status)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC")
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// UpdateStatus moves the order from one status to the next and appends the
// status log entry in the same transaction. It reports false when the order
// was no longer in from.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, change domain.StatusChange, from domain.Status, estimated, delivered *time.Time) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = $2,
			estimated_delivery_at = COALESCE($3, estimated_delivery_at),
			delivered_at = COALESCE($4, delivered_at)
		WHERE id = $5 AND status = $6`,
		change.Status, change.ChangedAt, nullTime(estimated), nullTime(delivered), change.OrderID, from)
	if err != nil {
		return false, err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return false, nil
	}

	if err := insertStatusLog(ctx, tx, change); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertStatusLog(ctx context.Context, db execer, change domain.StatusChange) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)`,
		change.OrderID, change.Status, change.ChangedBy, change.ChangedAt)
	return err
}

func (r *PostgresRepository) StatusHistory(ctx context.Context, orderID uuid.UUID) ([]domain.StatusChange, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT order_id, status, changed_by, changed_at
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []domain.StatusChange{}
	for rows.Next() {
		var c domain.StatusChange
		if err := rows.Scan(&c.OrderID, &c.Status, &c.ChangedBy, &c.ChangedAt); err != nil {
			return nil, err
		}
		history = append(history, c)
	}
	return history, rows.Err()
}

func (r *PostgresRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET payment_status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperr.NotFound("order", id.String())
	}
	return nil
}

func (r *PostgresRepository) SaveQRCode(ctx context.Context, id uuid.UUID, qr []byte) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE orders SET qr_code = $1 WHERE id = $2", qr, id)
	return err
}

func (r *PostgresRepository) GetQRCode(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var qr []byte
	err := r.DB.QueryRowContext(ctx, "SELECT qr_code FROM orders WHERE id = $1", id).Scan(&qr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order", id.String())
	}
	return qr, err
}

// Lookup reads the live menu row so carts are priced server side.
func (r *PostgresRepository) Lookup(ctx context.Context, menuItemID uuid.UUID) (domain.LineItem, bool, error) {
	var (
		item      = domain.LineItem{MenuItemID: menuItemID}
		price     decimal.Decimal
		available bool
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT name, price, COALESCE(image_url, ''), category, available
		FROM menu_items WHERE id = $1`, menuItemID).
		Scan(&item.Name, &price, &item.Image, &item.Category, &available)
	if errors.Is(err, sql.ErrNoRows) {
		return item, false, apperr.NotFound("menu item", menuItemID.String())
	}
	if err != nil {
		return item, false, err
	}
	item.Price = price
	return item, available, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			user_email TEXT,
			user_name TEXT,
			items JSONB NOT NULL,
			subtotal NUMERIC(12,2) NOT NULL,
			delivery_fee NUMERIC(12,2) NOT NULL,
			grand_total NUMERIC(12,2) NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			payment_method TEXT NOT NULL,
			payment_status TEXT NOT NULL DEFAULT 'pending',
			payment_confirmation_id TEXT UNIQUE,
			street TEXT NOT NULL,
			city TEXT NOT NULL,
			phone TEXT NOT NULL,
			instructions TEXT,
			qr_code BYTEA,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			estimated_delivery_at TIMESTAMPTZ,
			delivered_at TIMESTAMPTZ,
			CHECK (grand_total = subtotal + delivery_fee)
		)`,
		"CREATE INDEX IF NOT EXISTS orders_user_idx ON orders (user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS orders_status_idx ON orders (status)",
		`CREATE TABLE IF NOT EXISTS order_status_log (
			id BIGSERIAL PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			status TEXT NOT NULL,
			changed_by TEXT NOT NULL,
			changed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range statements {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}
	return nil
}
