package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"savory-orders/analytics-svc/internal/domain"
)

// PostgresRepository runs read-only reports over the orders and menu
// tables owned by order-svc and menu-svc.
type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

// DailySales buckets orders created in [from, to] by UTC calendar day.
func (r *PostgresRepository) DailySales(ctx context.Context, from, to time.Time) ([]domain.DailySales, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT to_char((created_at AT TIME ZONE 'UTC')::date, 'YYYY-MM-DD') AS day,
			COALESCE(SUM(grand_total), 0), COUNT(*)
		FROM orders
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY day
		ORDER BY day ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []domain.DailySales{}
	for rows.Next() {
		var d domain.DailySales
		if err := rows.Scan(&d.Date, &d.Revenue, &d.Orders); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// PopularFromOrders ranks items from the line snapshots stored on orders.
// A zero since means all time.
func (r *PostgresRepository) PopularFromOrders(ctx context.Context, since time.Time, limit int) ([]domain.PopularItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT item->>'menu_item_id' AS menu_item_id,
			MAX(item->>'name'),
			SUM((item->>'quantity')::int) AS quantity,
			SUM((item->>'price')::numeric * (item->>'quantity')::int)
		FROM orders, jsonb_array_elements(items) AS item
		WHERE $1::timestamptz IS NULL OR orders.created_at >= $1
		GROUP BY menu_item_id
		ORDER BY quantity DESC, menu_item_id ASC
		LIMIT $2`, nullTime(since), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.PopularItem{}
	for rows.Next() {
		var (
			p       domain.PopularItem
			revenue decimal.Decimal
		)
		if err := rows.Scan(&p.MenuItemID, &p.Name, &p.Quantity, &revenue); err != nil {
			return nil, err
		}
		p.Revenue = &revenue
		items = append(items, p)
	}
	return items, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// CustomerTotals groups orders by customer, biggest spenders first.
func (r *PostgresRepository) CustomerTotals(ctx context.Context) ([]domain.CustomerStats, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, MAX(user_email), MAX(user_name), COUNT(*), SUM(grand_total), MAX(created_at)
		FROM orders
		GROUP BY user_id
		ORDER BY SUM(grand_total) DESC, user_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []domain.CustomerStats{}
	for rows.Next() {
		var c domain.CustomerStats
		if err := rows.Scan(&c.UserID, &c.Email, &c.Name, &c.Orders, &c.TotalSpent, &c.LastOrder); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *PostgresRepository) StatusCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT status, COUNT(*) FROM orders GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *PostgresRepository) RecentOrders(ctx context.Context, limit int) ([]domain.RecentOrder, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, COALESCE(user_name, ''), COALESCE(user_email, ''), grand_total, status,
			COALESCE((SELECT SUM((item->>'quantity')::int) FROM jsonb_array_elements(items) AS item), 0),
			created_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.RecentOrder{}
	for rows.Next() {
		var o domain.RecentOrder
		if err := rows.Scan(&o.ID, &o.UserName, &o.UserEmail, &o.GrandTotal, &o.Status, &o.ItemCount, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *PostgresRepository) TopRatedFromMenu(ctx context.Context, limit int) ([]domain.RatedItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, COALESCE(average_rating, 0), COALESCE(total_reviews, 0)
		FROM menu_items
		WHERE COALESCE(total_reviews, 0) > 0
		ORDER BY average_rating DESC, total_reviews DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.RatedItem{}
	for rows.Next() {
		var it domain.RatedItem
		if err := rows.Scan(&it.MenuItemID, &it.Name, &it.AverageRating, &it.TotalReviews); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// MenuItemRefs resolves leaderboard members to names. Members whose menu
// item was deleted are absent from the result.
func (r *PostgresRepository) MenuItemRefs(ctx context.Context, ids []string) (map[string]domain.ItemRef, error) {
	refs := map[string]domain.ItemRef{}
	if len(ids) == 0 {
		return refs, nil
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id::text, name, COALESCE(total_reviews, 0)
		FROM menu_items
		WHERE id::text = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  string
			ref domain.ItemRef
		)
		if err := rows.Scan(&id, &ref.Name, &ref.TotalReviews); err != nil {
			return nil, err
		}
		refs[id] = ref
	}
	return refs, rows.Err()
}
