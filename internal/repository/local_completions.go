package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"practice-planner/internal/model"
)

// completionRow is one (item, day) completion. The unique index keeps days
// distinct per item; the autoincrement id records insertion order.
type completionRow struct {
	ID     uint   `gorm:"primaryKey"`
	ItemID string `gorm:"uniqueIndex:idx_completion_item_day"`
	Day    string `gorm:"uniqueIndex:idx_completion_item_day"`
}

func (completionRow) TableName() string {
	return "completions"
}

func (s *LocalStore) ListCompletions(ctx context.Context) (model.Completions, error) {
	var rows []completionRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	completions := make(model.Completions)
	for _, row := range rows {
		completions[row.ItemID] = append(completions[row.ItemID], row.Day)
	}
	return completions, nil
}

func (s *LocalStore) CompletionDays(ctx context.Context, itemID string) ([]string, error) {
	var days []string
	err := s.db.WithContext(ctx).Model(&completionRow{}).
		Where("item_id = ?", itemID).Order("id").Pluck("day", &days).Error
	if err != nil {
		return nil, fmt.Errorf("list completion days: %w", err)
	}
	return days, nil
}

func (s *LocalStore) AddCompletion(ctx context.Context, itemID, day string) error {
	row := completionRow{ItemID: itemID, Day: day}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("add completion: %w", err)
	}
	return nil
}

// RemoveCompletion deletes a single day. Entries exist only as rows, so an item
// whose last day is removed has no entry left.
func (s *LocalStore) RemoveCompletion(ctx context.Context, itemID, day string) error {
	err := s.db.WithContext(ctx).Where("item_id = ? AND day = ?", itemID, day).
		Delete(&completionRow{}).Error
	if err != nil {
		return fmt.Errorf("remove completion: %w", err)
	}
	return nil
}

func (s *LocalStore) DeleteCompletions(ctx context.Context, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("item_id IN ?", itemIDs).Delete(&completionRow{}).Error; err != nil {
		return fmt.Errorf("delete completions: %w", err)
	}
	return nil
}
