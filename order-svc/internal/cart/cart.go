// Package cart holds a customer's cart between requests. Every mutation
// returns a new Cart with its totals recomputed.
package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"savory-orders/internal/apperr"
	"savory-orders/internal/pricing"
	"savory-orders/order-svc/internal/domain"
)

type Cart struct {
	Items     []domain.LineItem `json:"items"`
	Total     decimal.Decimal   `json:"total"`
	ItemCount int               `json:"item_count"`
}

func Empty() Cart {
	return build(nil)
}

func build(items []domain.LineItem) Cart {
	if items == nil {
		items = []domain.LineItem{}
	}
	totals := pricing.CartTotals(items)
	return Cart{Items: items, Total: totals.Subtotal, ItemCount: totals.ItemCount}
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Add merges item into an existing line for the same menu item, otherwise
// appends it. A non-positive quantity counts as one.
func (c Cart) Add(item domain.LineItem) Cart {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	items := make([]domain.LineItem, 0, len(c.Items)+1)
	merged := false
	for _, existing := range c.Items {
		if existing.MenuItemID == item.MenuItemID {
			existing.Quantity += item.Quantity
			merged = true
		}
		items = append(items, existing)
	}
	if !merged {
		items = append(items, item)
	}
	return build(items)
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
func (c Cart) UpdateQuantity(menuItemID uuid.UUID, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(menuItemID)
	}
	items := make([]domain.LineItem, 0, len(c.Items))
	for _, existing := range c.Items {
		if existing.MenuItemID == menuItemID {
			existing.Quantity = quantity
		}
		items = append(items, existing)
	}
	return build(items)
}

func (c Cart) Remove(menuItemID uuid.UUID) Cart {
	items := make([]domain.LineItem, 0, len(c.Items))
	for _, existing := range c.Items {
		if existing.MenuItemID != menuItemID {
			items = append(items, existing)
		}
	}
	return build(items)
}

func (c Cart) Clear() Cart {
	return Empty()
}

// Snapshot copies the lines so later cart edits cannot reach an order.
func (c Cart) Snapshot() []domain.LineItem {
	out := make([]domain.LineItem, len(c.Items))
	copy(out, c.Items)
	return out
}

// Persistence is where carts live between requests.
type Persistence interface {
	Load(ctx context.Context, session string) (Cart, bool, error)
	Save(ctx context.Context, session string, c Cart) error
	Delete(ctx context.Context, session string) error
}

// Catalog resolves the current name, price and availability of menu items.
type Catalog interface {
	Lookup(ctx context.Context, menuItemID uuid.UUID) (domain.LineItem, bool, error)
}

type Store struct {
	persistence Persistence
	catalog     Catalog
}

func NewStore(persistence Persistence, catalog Catalog) *Store {
	return &Store{persistence: persistence, catalog: catalog}
}

func (s *Store) Get(ctx context.Context, session string) (Cart, error) {
	c, ok, err := s.persistence.Load(ctx, session)
	if err != nil {
		return Cart{}, apperr.External("cart store", err)
	}
	if !ok {
		return Empty(), nil
	}
	return c, nil
}

// Add prices the item from the catalog, never from the client.
func (s *Store) Add(ctx context.Context, session string, menuItemID uuid.UUID, quantity int) (Cart, error) {
	item, available, err := s.catalog.Lookup(ctx, menuItemID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return Cart{}, err
		}
		return Cart{}, apperr.External("menu catalog", err)
	}
	if !available {
		return Cart{}, apperr.Validation("menu_item_id", fmt.Sprintf("%s is currently unavailable", item.Name))
	}
	item.Quantity = quantity
	return s.mutate(ctx, session, func(c Cart) Cart { return c.Add(item) })
}

func (s *Store) UpdateQuantity(ctx context.Context, session string, menuItemID uuid.UUID, quantity int) (Cart, error) {
	return s.mutate(ctx, session, func(c Cart) Cart { return c.UpdateQuantity(menuItemID, quantity) })
}

func (s *Store) Remove(ctx context.Context, session string, menuItemID uuid.UUID) (Cart, error) {
	return s.mutate(ctx, session, func(c Cart) Cart { return c.Remove(menuItemID) })
}

func (s *Store) Clear(ctx context.Context, session string) error {
	if err := s.persistence.Delete(ctx, session); err != nil {
		return apperr.External("cart store", err)
	}
	return nil
}

func (s *Store) mutate(ctx context.Context, session string, fn func(Cart) Cart) (Cart, error) {
	current, err := s.Get(ctx, session)
	if err != nil {
		return Cart{}, err
	}
	next := fn(current)
	if err := s.persistence.Save(ctx, session, next); err != nil {
		return Cart{}, apperr.External("cart store", err)
	}
	return next, nil
}
