package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"practice-planner/internal/dateutil"
	"practice-planner/internal/logging"
	"practice-planner/internal/model"
)

// CategoryService keeps category names unique and guards categories in use.
type CategoryService struct {
	stores StoreProvider
	loc    *time.Location
	logger *zap.Logger
}

func NewCategoryService(stores StoreProvider, loc *time.Location, logger *zap.Logger) *CategoryService {
	return &CategoryService{stores: stores, loc: loc, logger: logging.OrNop(logger).Named("categories")}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.stores.Store().ListCategories(ctx)
}

// AddCategory creates a category. A name that matches an existing one ignoring
// case yields ErrCategoryExists.
func (s *CategoryService) AddCategory(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}

	store := s.stores.Store()
	categories, err := store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return nil, fmt.Errorf("%w: %q", ErrCategoryExists, c.Name)
		}
	}

	category := model.Category{
		ID:        dateutil.NewID(),
		Name:      name,
		CreatedAt: dateutil.Today(s.loc),
	}
	if err := store.AddCategory(ctx, category); err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category unless an item still uses its name.
// It reports false when the category is in use or unknown.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) (bool, error) {
	store := s.stores.Store()
	categories, err := store.ListCategories(ctx)
	if err != nil {
		return false, err
	}
	var target *model.Category
	for i := range categories {
		if categories[i].ID == id {
			target = &categories[i]
			break
		}
	}
	if target == nil {
		return false, nil
	}

	items, err := store.ListItems(ctx)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		if item.Category == target.Name {
			s.logger.Info("category in use", zap.String("category", target.Name), zap.String("item_id", item.ID))
			return false, nil
		}
	}

	return store.DeleteCategory(ctx, id)
}

// EnsureDefaults seeds the default categories into an empty category set and
// returns how many were added.
func (s *CategoryService) EnsureDefaults(ctx context.Context) (int, error) {
	categories, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(categories) > 0 {
		return 0, nil
	}
	for _, name := range model.DefaultCategories {
		if _, err := s.AddCategory(ctx, name); err != nil {
			return 0, fmt.Errorf("seed category %q: %w", name, err)
		}
	}
	return len(model.DefaultCategories), nil
}
