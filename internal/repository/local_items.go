package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"practice-planner/internal/model"
)

// ListItems returns items in the order they were added. SQLite keeps the rowid
// of a row stable across updates, so ordering by it preserves insertion order.
func (s *LocalStore) ListItems(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if err := s.db.WithContext(ctx).Order("rowid").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *LocalStore) GetItem(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	switch {
	case err == nil:
		return &item, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find item: %w", err)
	}
}

func (s *LocalStore) AddItem(ctx context.Context, item model.Item) error {
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// UpdateItem overwrites every column of the stored item with the same id.
func (s *LocalStore) UpdateItem(ctx context.Context, item model.Item) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Item{}).Where("id = ?", item.ID).
		Select("*").Omit("id").Updates(&item)
	if res.Error != nil {
		return false, fmt.Errorf("update item: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *LocalStore) DeleteItems(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Item{}).Error; err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	return nil
}
