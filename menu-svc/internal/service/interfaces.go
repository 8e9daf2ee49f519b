package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"savory-orders/menu-svc/internal/domain"
)

type MenuRepository interface {
	CreateMenuItem(ctx context.Context, item *domain.MenuItem) error
	ListMenuItems(ctx context.Context, filter domain.MenuFilter) ([]domain.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error)
	UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
	DeleteMenuItem(ctx context.Context, id uuid.UUID) (int64, error)
	UpdateMenuItemImage(ctx context.Context, id uuid.UUID, imageURL string) error
	EnsureRatingFields(ctx context.Context) (int64, error)
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *domain.MenuCategory) error
	ListCategories(ctx context.Context) ([]domain.MenuCategory, error)
	UpdateCategory(ctx context.Context, category *domain.MenuCategory) error
	DeleteCategory(ctx context.Context, id uuid.UUID) (int64, error)
}

type CategoryCache interface {
	GetCategories(ctx context.Context) ([]domain.MenuCategory, bool, error)
	SetCategories(ctx context.Context, categories []domain.MenuCategory) error
	Invalidate(ctx context.Context) error
}

// MediaStore is the hosted image store uploads are relayed to.
type MediaStore interface {
	Upload(ctx context.Context, filename string, file io.Reader) (string, error)
}

type MenuServiceInterface interface {
	Create(ctx context.Context, input domain.MenuItemInput) (*domain.MenuItem, error)
	List(ctx context.Context, filter domain.MenuFilter) ([]domain.MenuItem, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error)
	Update(ctx context.Context, id uuid.UUID, input domain.MenuItemInput) (*domain.MenuItem, error)
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateImage(ctx context.Context, id uuid.UUID, imageURL string) error
	EnsureRatingFields(ctx context.Context) (int64, error)
}

type CategoryServiceInterface interface {
	Create(ctx context.Context, category *domain.MenuCategory) error
	List(ctx context.Context) ([]domain.MenuCategory, error)
	Update(ctx context.Context, category *domain.MenuCategory) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ImageServiceInterface interface {
	Upload(ctx context.Context, upload ImageUpload) (string, error)
}

var (
	_ MenuServiceInterface     = (*MenuService)(nil)
	_ CategoryServiceInterface = (*CategoryService)(nil)
	_ ImageServiceInterface    = (*ImageService)(nil)
)
