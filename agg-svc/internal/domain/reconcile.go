package domain

import (
	"github.com/google/uuid"

	"savory-orders/internal/rating"
)

// Reconciliation compares the aggregate stored on a menu item with the one
// recomputed from its reviews.
type Reconciliation struct {
	MenuItemID uuid.UUID
	Stored     rating.Aggregate
	Actual     rating.Aggregate
	Rewritten  bool
}

func (r Reconciliation) Drifted() bool {
	return r.Stored != r.Actual
}
