package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"savory-orders/internal/rating"
)

type Review struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserEmail  string    `json:"user_email"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	Approved   bool      `json:"approved"`
	CreatedAt  time.Time `json:"created_at"`
}

// Summary is the copy embedded in the menu item document.
func (r Review) Summary() rating.Summary {
	return rating.Summary{
		ID:         r.ID.String(),
		MenuItemID: r.MenuItemID.String(),
		UserID:     r.UserID,
		UserName:   r.UserName,
		UserEmail:  r.UserEmail,
		Rating:     r.Rating,
		Comment:    r.Comment,
		Approved:   r.Approved,
		CreatedAt:  r.CreatedAt,
	}
}

type SubmitInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type Author struct {
	UserID string
	Name   string
	Email  string
}

// DisplayName falls back to the local part of the email.
func (a Author) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if local, _, ok := strings.Cut(a.Email, "@"); ok && local != "" {
		return local
	}
	return "Anonymous"
}

// RatingUpdate derives a menu item's new aggregate and embedded list from
// the locked current values.
type RatingUpdate func(current rating.Aggregate, summaries []rating.Summary) (rating.Aggregate, []rating.Summary, error)

type SubmitResult struct {
	Review    Review           `json:"review"`
	Aggregate rating.Aggregate `json:"aggregate"`
}
