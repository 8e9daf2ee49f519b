package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"savory-orders/internal/apperr"
	"savory-orders/internal/rating"
)

type MenuItem struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	Category      string           `json:"category"`
	Image         string           `json:"image"`
	Available     bool             `json:"available"`
	AverageRating float64          `json:"average_rating"`
	TotalReviews  int              `json:"total_reviews"`
	Reviews       []rating.Summary `json:"reviews"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// MenuItemInput is the admin-editable part of a menu item. Rating fields
// are owned by the review flow and never accepted from clients.
type MenuItemInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Available   bool            `json:"available"`
}

func (in *MenuItemInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" {
		return apperr.Validation("name", "name is required")
	}
	if len(in.Name) > 100 {
		return apperr.Validation("name", "name must not exceed 100 characters")
	}
	if !in.Price.IsPositive() {
		return apperr.Validation("price", "price must be greater than 0")
	}
	if in.Category == "" {
		return apperr.Validation("category", "category is required")
	}
	return nil
}

type MenuFilter struct {
	Category      string
	Search        string
	AvailableOnly bool
}

type MenuCategory struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Emoji       string    `json:"emoji"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *MenuCategory) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperr.Validation("name", "category name is required")
	}
	if c.Order < 0 {
		return apperr.Validation("order", "order must not be negative")
	}
	if c.Emoji == "" {
		c.Emoji = "🍽️"
	}
	return nil
}
