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

// ItemInput represents data required to create an item.
type ItemInput struct {
	Name        string
	Category    string
	Description string
	RecurDays   int
	ParentID    string
	Status      model.ItemStatus
}

// ItemPatch lists the fields to change on an item. Nil fields are left as they are.
type ItemPatch struct {
	Name        *string
	Category    *string
	Description *string
	RecurDays   *int
	ParentID    *string
	Status      *model.ItemStatus
}

// ItemService manages items and their one-level parent/child hierarchy.
type ItemService struct {
	stores StoreProvider
	loc    *time.Location
	logger *zap.Logger
}

func NewItemService(stores StoreProvider, loc *time.Location, logger *zap.Logger) *ItemService {
	return &ItemService{stores: stores, loc: loc, logger: logging.OrNop(logger).Named("items")}
}

func (s *ItemService) AddItem(ctx context.Context, input ItemInput) (*model.Item, error) {
	item := model.Item{
		ID:          dateutil.NewID(),
		Name:        strings.TrimSpace(input.Name),
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
		RecurDays:   input.RecurDays,
		ParentID:    strings.TrimSpace(input.ParentID),
		Status:      input.Status,
		CreatedAt:   dateutil.Today(s.loc),
	}
	if item.RecurDays == 0 {
		item.RecurDays = model.DefaultRecurDays
	}
	if item.Status == "" {
		item.Status = model.StatusActive
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	if err := s.stores.Store().AddItem(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("item added", zap.String("item_id", item.ID), zap.String("name", item.Name))
	return &item, nil
}

func validateItem(item model.Item) error {
	switch {
	case item.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case item.Category == "":
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	case item.RecurDays < 1:
		return fmt.Errorf("%w: recur days must be at least 1", ErrInvalidInput)
	case item.Status != model.StatusActive && item.Status != model.StatusPaused:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, item.Status)
	case item.ParentID != "" && item.ParentID == item.ID:
		return fmt.Errorf("%w: an item cannot be its own parent", ErrInvalidInput)
	}
	return nil
}

// GetItem returns nil when the id is unknown.
func (s *ItemService) GetItem(ctx context.Context, id string) (*model.Item, error) {
	return s.stores.Store().GetItem(ctx, id)
}

func (s *ItemService) ListItems(ctx context.Context, filter model.ItemFilter) ([]model.Item, error) {
	items, err := s.stores.Store().ListItems(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Item
	for _, item := range items {
		if filter.Match(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// TopLevelItems returns items without a parent.
func (s *ItemService) TopLevelItems(ctx context.Context) ([]model.Item, error) {
	items, err := s.stores.Store().ListItems(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Item
	for _, item := range items {
		if !item.IsSubItem() {
			out = append(out, item)
		}
	}
	return out, nil
}

// SubItems returns the direct children of parentID.
func (s *ItemService) SubItems(ctx context.Context, parentID string) ([]model.Item, error) {
	items, err := s.stores.Store().ListItems(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Item
	for _, item := range items {
		if item.ParentID != "" && item.ParentID == parentID {
			out = append(out, item)
		}
	}
	return out, nil
}

// UpdateItem merges patch into the stored item. It returns nil for unknown ids.
func (s *ItemService) UpdateItem(ctx context.Context, id string, patch ItemPatch) (*model.Item, error) {
	store := s.stores.Store()
	current, err := store.GetItem(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}

	item := *current
	if patch.Name != nil {
		item.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Category != nil {
		item.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Description != nil {
		item.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.RecurDays != nil {
		item.RecurDays = *patch.RecurDays
	}
	if patch.ParentID != nil {
		item.ParentID = strings.TrimSpace(*patch.ParentID)
	}
	if patch.Status != nil {
		item.Status = *patch.Status
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	ok, err := store.UpdateItem(ctx, item)
	if err != nil || !ok {
		return nil, err
	}
	return &item, nil
}

// ToggleStatus flips an item between active and paused. It returns nil for unknown ids.
func (s *ItemService) ToggleStatus(ctx context.Context, id string) (*model.Item, error) {
	item, err := s.stores.Store().GetItem(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	next := model.StatusPaused
	if item.Status == model.StatusPaused {
		next = model.StatusActive
	}
	return s.UpdateItem(ctx, id, ItemPatch{Status: &next})
}

// DeleteItemCascade removes an item, every item below it and all their completions.
// It returns how many items were removed; 0 means the id was unknown.
func (s *ItemService) DeleteItemCascade(ctx context.Context, id string) (int, error) {
	store := s.stores.Store()
	items, err := store.ListItems(ctx)
	if err != nil {
		return 0, err
	}

	children := make(map[string][]string)
	known := false
	for _, item := range items {
		if item.ID == id {
			known = true
		}
		if item.ParentID != "" {
			children[item.ParentID] = append(children[item.ParentID], item.ID)
		}
	}
	if !known {
		return 0, nil
	}

	doomed := descendants(id, children)
	if err := store.DeleteItems(ctx, doomed); err != nil {
		return 0, err
	}
	if err := store.DeleteCompletions(ctx, doomed); err != nil {
		return 0, err
	}

	s.logger.Info("items deleted", zap.String("item_id", id), zap.Int("count", len(doomed)))
	return len(doomed), nil
}

// descendants walks children breadth-first from root. The visited set stops the
// walk on accidental cycles.
func descendants(root string, children map[string][]string) []string {
	visited := map[string]bool{root: true}
	queue := []string{root}
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)
		for _, child := range children[cur] {
			if visited[child] {
				continue
			}
			visited[child] = true
			queue = append(queue, child)
		}
	}
	return out
}
