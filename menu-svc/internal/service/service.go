package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"savory-orders/internal/apperr"
	"savory-orders/internal/logger"
	"savory-orders/menu-svc/internal/domain"
)

type MenuService struct {
	repo MenuRepository
}

func NewMenuService(repo MenuRepository) *MenuService {
	return &MenuService{repo: repo}
}

func (s *MenuService) Create(ctx context.Context, input domain.MenuItemInput) (*domain.MenuItem, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	item := &domain.MenuItem{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Image:       input.Image,
		Available:   input.Available,
	}
	if err := s.repo.CreateMenuItem(ctx, item); err != nil {
		return nil, apperr.External("postgres", fmt.Errorf("create menu item: %w", err))
	}
	return item, nil
}

func (s *MenuService) List(ctx context.Context, filter domain.MenuFilter) ([]domain.MenuItem, error) {
	items, err := s.repo.ListMenuItems(ctx, filter)
	if err != nil {
		return nil, apperr.External("postgres", fmt.Errorf("list menu items: %w", err))
	}
	return items, nil
}

func (s *MenuService) Get(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	item, err := s.repo.GetMenuItem(ctx, id)
	if err != nil {
		return nil, wrapStorage(err, "get menu item")
	}
	return item, nil
}

// Update replaces the editable fields. Existing orders keep the price they
// were placed with because they store their own line snapshots.
func (s *MenuService) Update(ctx context.Context, id uuid.UUID, input domain.MenuItemInput) (*domain.MenuItem, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	item := &domain.MenuItem{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Image:       input.Image,
		Available:   input.Available,
	}
	if err := s.repo.UpdateMenuItem(ctx, item); err != nil {
		return nil, wrapStorage(err, "update menu item")
	}
	return item, nil
}

func (s *MenuService) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	return wrapStorage(s.repo.SetAvailability(ctx, id, available), "set availability")
}

func (s *MenuService) Delete(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.DeleteMenuItem(ctx, id)
	if err != nil {
		return wrapStorage(err, "delete menu item")
	}
	if rows == 0 {
		return apperr.NotFound("menu item", id.String())
	}
	return nil
}

func (s *MenuService) UpdateImage(ctx context.Context, id uuid.UUID, imageURL string) error {
	return wrapStorage(s.repo.UpdateMenuItemImage(ctx, id, imageURL), "update menu item image")
}

func (s *MenuService) EnsureRatingFields(ctx context.Context) (int64, error) {
	n, err := s.repo.EnsureRatingFields(ctx)
	if err != nil {
		return 0, apperr.External("postgres", fmt.Errorf("ensure rating fields: %w", err))
	}
	return n, nil
}

type CategoryService struct {
	repo  CategoryRepository
	cache CategoryCache
	log   *logger.Logger
}

func NewCategoryService(repo CategoryRepository, cache CategoryCache, log *logger.Logger) *CategoryService {
	return &CategoryService{repo: repo, cache: cache, log: log}
}

func (s *CategoryService) Create(ctx context.Context, category *domain.MenuCategory) error {
	if err := category.Validate(); err != nil {
		return err
	}
	category.ID = uuid.New()
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return apperr.External("postgres", fmt.Errorf("create category: %w", err))
	}
	s.invalidate(ctx)
	return nil
}

// List returns categories by display order, ties in insertion order.
func (s *CategoryService) List(ctx context.Context) ([]domain.MenuCategory, error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.GetCategories(ctx); err == nil && ok {
			return cached, nil
		} else if err != nil {
			s.log.Warn(ctx, "category_cache_read_failed", err.Error())
		}
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, apperr.External("postgres", fmt.Errorf("list categories: %w", err))
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, categories); err != nil {
			s.log.Warn(ctx, "category_cache_write_failed", err.Error())
		}
	}
	return categories, nil
}

func (s *CategoryService) Update(ctx context.Context, category *domain.MenuCategory) error {
	if err := category.Validate(); err != nil {
		return err
	}
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return wrapStorage(err, "update category")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.DeleteCategory(ctx, id)
	if err != nil {
		return apperr.External("postgres", fmt.Errorf("delete category: %w", err))
	}
	if rows == 0 {
		return apperr.NotFound("category", id.String())
	}
	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn(ctx, "category_cache_invalidate_failed", err.Error())
	}
}

// wrapStorage passes not-found through and marks everything else as a
// storage failure.
func wrapStorage(err error, op string) error {
	if err == nil || apperr.IsNotFound(err) {
		return err
	}
	return apperr.External("postgres", fmt.Errorf("%s: %w", op, err))
}
