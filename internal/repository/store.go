package repository

import (
	"context"
	"errors"

	"practice-planner/internal/model"
)

var (
	// ErrRemoteUnavailable is returned when no document backend is configured.
	ErrRemoteUnavailable = errors.New("remote store is not configured")
	// ErrNotSignedIn is returned when the remote store is addressed without an identity.
	ErrNotSignedIn = errors.New("remote store has no signed-in user")
)

// Kind names a store backend.
type Kind string

const (
	KindLocal  Kind = "local"
	KindRemote Kind = "remote"
)

// ItemRepository persists items in insertion order.
// GetItem returns nil when the id is unknown; UpdateItem reports false.
type ItemRepository interface {
	ListItems(ctx context.Context) ([]model.Item, error)
	GetItem(ctx context.Context, id string) (*model.Item, error)
	AddItem(ctx context.Context, item model.Item) error
	UpdateItem(ctx context.Context, item model.Item) (bool, error)
	DeleteItems(ctx context.Context, ids []string) error
}

// CategoryRepository persists categories. DeleteCategory reports false for unknown ids.
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	AddCategory(ctx context.Context, category model.Category) error
	DeleteCategory(ctx context.Context, id string) (bool, error)
}

// CompletionRepository persists completion days per item.
// RemoveCompletion drops the whole per-item entry once its last day is removed.
type CompletionRepository interface {
	ListCompletions(ctx context.Context) (model.Completions, error)
	CompletionDays(ctx context.Context, itemID string) ([]string, error)
	AddCompletion(ctx context.Context, itemID, day string) error
	RemoveCompletion(ctx context.Context, itemID, day string) error
	DeleteCompletions(ctx context.Context, itemIDs []string) error
}

// Store is a complete backend. Both the local and the remote store implement it.
type Store interface {
	ItemRepository
	CategoryRepository
	CompletionRepository

	// Snapshot returns every collection.
	Snapshot(ctx context.Context) (model.Snapshot, error)
	// Import replaces each collection present (non-nil) in snap and leaves the rest.
	Import(ctx context.Context, snap model.Snapshot) error
	// HasData is true when any collection is non-empty.
	HasData(ctx context.Context) (bool, error)
	// Clear removes all data.
	Clear(ctx context.Context) error
	Kind() Kind
}
