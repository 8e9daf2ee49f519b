package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"savory-orders/internal/apperr"
)

const (
	PeriodToday   = "today"
	PeriodAllTime = "all"
)

// OrderStatuses lists every order status so distributions report zeros.
var OrderStatuses = []string{"pending", "preparing", "ready", "delivered", "cancelled"}

type DailySales struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type SalesReport struct {
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalOrders       int             `json:"total_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	DailySales        []DailySales    `json:"daily_sales"`
}

type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return apperr.Validation("range", "from and to are required")
	}
	if r.To.Before(r.From) {
		return apperr.Validation("range", "from must not be after to")
	}
	return nil
}

// PopularItem ranks a menu item by quantity ordered. Revenue is only known
// when the ranking comes from the orders table.
type PopularItem struct {
	MenuItemID string           `json:"menu_item_id"`
	Name       string           `json:"name"`
	Quantity   int64            `json:"quantity"`
	Revenue    *decimal.Decimal `json:"revenue,omitempty"`
}

type CustomerStats struct {
	UserID       string          `json:"user_id"`
	Email        string          `json:"email"`
	Name         string          `json:"name"`
	Orders       int             `json:"orders"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
	AverageOrder decimal.Decimal `json:"average_order"`
	LastOrder    time.Time       `json:"last_order"`
}

type CustomerReport struct {
	TotalCustomers       int             `json:"total_customers"`
	TopCustomers         []CustomerStats `json:"top_customers"`
	AverageCustomerOrder decimal.Decimal `json:"average_customer_order"`
}

type RecentOrder struct {
	ID         string          `json:"id"`
	UserName   string          `json:"user_name"`
	UserEmail  string          `json:"user_email"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	Status     string          `json:"status"`
	ItemCount  int             `json:"item_count"`
	CreatedAt  time.Time       `json:"created_at"`
}

type RatedItem struct {
	MenuItemID    string  `json:"menu_item_id"`
	Name          string  `json:"name"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// ItemRating is the cached rating mirror of one menu item.
type ItemRating struct {
	MenuItemID    string    `json:"menu_item_id"`
	AverageRating float64   `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
	LastUpdated   time.Time `json:"last_updated"`
}

// Ranked is one sorted-set member with its score.
type Ranked struct {
	MenuItemID string
	Score      float64
}

// ItemRef is what the menu table knows about a ranked member.
type ItemRef struct {
	Name         string
	TotalReviews int
}
