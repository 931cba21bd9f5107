package service

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"practice-planner/internal/dateutil"
	"practice-planner/internal/logging"
	"practice-planner/internal/model"
)

// RecurrenceService answers "what is due today" and records completions against
// whichever store is active.
type RecurrenceService struct {
	stores StoreProvider
	logger *zap.Logger
}

func NewRecurrenceService(stores StoreProvider, logger *zap.Logger) *RecurrenceService {
	return &RecurrenceService{stores: stores, logger: logging.OrNop(logger).Named("recurrence")}
}

func checkDay(day string) error {
	if !dateutil.Valid(day) {
		return fmt.Errorf("%w: day %q is not YYYY-MM-DD", ErrInvalidInput, day)
	}
	return nil
}

// DueItems returns the items due on day.
func (s *RecurrenceService) DueItems(ctx context.Context, day string) ([]model.DueItem, error) {
	if err := checkDay(day); err != nil {
		return nil, err
	}
	store := s.stores.Store()
	items, err := store.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	completions, err := store.ListCompletions(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeDueItems(items, completions, day), nil
}

func (s *RecurrenceService) Stats(ctx context.Context, day string) (model.Stats, error) {
	due, err := s.DueItems(ctx, day)
	if err != nil {
		return model.Stats{}, err
	}
	return ComputeStats(due), nil
}

// TodayView returns the due set grouped by parent together with its stats.
func (s *RecurrenceService) TodayView(ctx context.Context, day string) ([]model.DueGroup, model.Stats, error) {
	due, err := s.DueItems(ctx, day)
	if err != nil {
		return nil, model.Stats{}, err
	}
	return GroupDueItems(due), ComputeStats(due), nil
}

// MarkCompleted records day for itemID. It reports false when the day was
// already recorded or the item does not exist.
func (s *RecurrenceService) MarkCompleted(ctx context.Context, itemID, day string) (bool, error) {
	if err := checkDay(day); err != nil {
		return false, err
	}
	store := s.stores.Store()
	item, err := store.GetItem(ctx, itemID)
	if err != nil || item == nil {
		return false, err
	}

	days, err := store.CompletionDays(ctx, itemID)
	if err != nil {
		return false, err
	}
	if slices.Contains(days, day) {
		return false, nil
	}
	if err := store.AddCompletion(ctx, itemID, day); err != nil {
		return false, err
	}
	s.logger.Debug("marked completed", zap.String("item_id", itemID), zap.String("day", day))
	return true, nil
}

// UnmarkCompleted removes day for itemID and reports whether it was recorded.
func (s *RecurrenceService) UnmarkCompleted(ctx context.Context, itemID, day string) (bool, error) {
	if err := checkDay(day); err != nil {
		return false, err
	}
	store := s.stores.Store()
	days, err := store.CompletionDays(ctx, itemID)
	if err != nil {
		return false, err
	}
	if !slices.Contains(days, day) {
		return false, nil
	}
	if err := store.RemoveCompletion(ctx, itemID, day); err != nil {
		return false, err
	}
	s.logger.Debug("unmarked completed", zap.String("item_id", itemID), zap.String("day", day))
	return true, nil
}

// Toggle marks day when it is not recorded and unmarks it otherwise.
// It returns the completion state after the call.
func (s *RecurrenceService) Toggle(ctx context.Context, itemID, day string) (bool, error) {
	done, err := s.IsCompleted(ctx, itemID, day)
	if err != nil {
		return false, err
	}
	if done {
		_, err := s.UnmarkCompleted(ctx, itemID, day)
		return false, err
	}
	marked, err := s.MarkCompleted(ctx, itemID, day)
	return marked, err
}

func (s *RecurrenceService) IsCompleted(ctx context.Context, itemID, day string) (bool, error) {
	days, err := s.stores.Store().CompletionDays(ctx, itemID)
	if err != nil {
		return false, err
	}
	return slices.Contains(days, day), nil
}

// LastCompletion returns the latest completion day of itemID, or "" if none.
func (s *RecurrenceService) LastCompletion(ctx context.Context, itemID string) (string, error) {
	days, err := s.stores.Store().CompletionDays(ctx, itemID)
	if err != nil {
		return "", err
	}
	return model.Completions{itemID: days}.Last(itemID), nil
}
