package repository

import (
	"context"
	"fmt"

	"practice-planner/internal/model"
)

func (s *LocalStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := s.db.WithContext(ctx).Order("rowid").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *LocalStore) AddCategory(ctx context.Context, category model.Category) error {
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (s *LocalStore) DeleteCategory(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Category{})
	if res.Error != nil {
		return false, fmt.Errorf("delete category: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
