package repository

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"practice-planner/internal/logging"
	"practice-planner/internal/model"
)

const importBatchSize = 100

// LocalStore keeps all data in a local SQLite database through gorm.
type LocalStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore(db *gorm.DB, logger *zap.Logger) *LocalStore {
	return &LocalStore{db: db, logger: logging.OrNop(logger).Named("local")}
}

func (s *LocalStore) Kind() Kind {
	return KindLocal
}

func (s *LocalStore) Snapshot(ctx context.Context) (model.Snapshot, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	completions, err := s.ListCompletions(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{Items: items, Categories: categories, Completions: completions}, nil
}

func (s *LocalStore) Import(ctx context.Context, snap model.Snapshot) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if snap.Items != nil {
			if err := tx.Where("1 = 1").Delete(&model.Item{}).Error; err != nil {
				return fmt.Errorf("clear items: %w", err)
			}
			if len(snap.Items) > 0 {
				if err := tx.CreateInBatches(slices.Clone(snap.Items), importBatchSize).Error; err != nil {
					return fmt.Errorf("import items: %w", err)
				}
			}
		}
		if snap.Categories != nil {
			if err := tx.Where("1 = 1").Delete(&model.Category{}).Error; err != nil {
				return fmt.Errorf("clear categories: %w", err)
			}
			if len(snap.Categories) > 0 {
				if err := tx.CreateInBatches(slices.Clone(snap.Categories), importBatchSize).Error; err != nil {
					return fmt.Errorf("import categories: %w", err)
				}
			}
		}
		if snap.Completions != nil {
			if err := tx.Where("1 = 1").Delete(&completionRow{}).Error; err != nil {
				return fmt.Errorf("clear completions: %w", err)
			}
			rows := completionRows(snap.Completions)
			if len(rows) > 0 {
				if err := tx.CreateInBatches(rows, importBatchSize).Error; err != nil {
					return fmt.Errorf("import completions: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("imported snapshot",
		zap.Int("items", len(snap.Items)),
		zap.Int("categories", len(snap.Categories)),
		zap.Int("completions", len(snap.Completions)))
	return nil
}

func (s *LocalStore) HasData(ctx context.Context) (bool, error) {
	db := s.db.WithContext(ctx)
	for _, table := range []any{&model.Item{}, &model.Category{}, &completionRow{}} {
		var n int64
		if err := db.Model(table).Count(&n).Error; err != nil {
			return false, fmt.Errorf("count rows: %w", err)
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (s *LocalStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []any{&completionRow{}, &model.Item{}, &model.Category{}} {
			if err := tx.Where("1 = 1").Delete(table).Error; err != nil {
				return fmt.Errorf("clear data: %w", err)
			}
		}
		return nil
	})
}

// completionRows flattens completions into rows, skipping repeated days.
// Item ids are visited in sorted order so imports are deterministic.
func completionRows(c model.Completions) []completionRow {
	var rows []completionRow
	for _, id := range slices.Sorted(maps.Keys(c)) {
		seen := make(map[string]struct{}, len(c[id]))
		for _, day := range c[id] {
			if _, dup := seen[day]; dup {
				continue
			}
			seen[day] = struct{}{}
			rows = append(rows, completionRow{ItemID: id, Day: day})
		}
	}
	return rows
}
