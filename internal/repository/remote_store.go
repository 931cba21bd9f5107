package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"practice-planner/internal/logging"
	"practice-planner/internal/model"
)

// RemoteStore keeps a user's data in a single document. Every mutation reads the
// whole document, changes one collection and writes the document back.
type RemoteStore struct {
	client DocumentClient
	logger *zap.Logger

	mu        sync.RWMutex
	userID    string
	listeners []func(model.SyncStatus)

	// writeMu serializes read-modify-write cycles issued by this process.
	writeMu sync.Mutex
}

var _ Store = (*RemoteStore)(nil)

// NewRemoteStore wraps client. A nil client yields a store whose every
// operation fails with ErrRemoteUnavailable.
func NewRemoteStore(client DocumentClient, logger *zap.Logger) *RemoteStore {
	return &RemoteStore{client: client, logger: logging.OrNop(logger).Named("remote")}
}

func (s *RemoteStore) Kind() Kind {
	return KindRemote
}

// SetUser scopes the store to a user; an empty id signs it out.
func (s *RemoteStore) SetUser(userID string) {
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()
}

func (s *RemoteStore) User() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Available reports whether a document backend is configured.
func (s *RemoteStore) Available() bool {
	return s.client != nil
}

// OnStatusChange registers fn to receive sync status transitions.
func (s *RemoteStore) OnStatusChange(fn func(model.SyncStatus)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *RemoteStore) notify(status model.SyncStatus) {
	s.mu.RLock()
	listeners := slices.Clone(s.listeners)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(status)
	}
}

func (s *RemoteStore) documentKey() (string, error) {
	if s.client == nil {
		return "", ErrRemoteUnavailable
	}
	user := s.User()
	if user == "" {
		return "", ErrNotSignedIn
	}
	return "users/" + user, nil
}

// execute runs op against the user's document key and reports sync status around it.
func (s *RemoteStore) execute(ctx context.Context, name string, op func(ctx context.Context, key string) error) error {
	key, err := s.documentKey()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	s.notify(model.SyncStatusSyncing)
	if err := op(ctx, key); err != nil {
		s.logger.Warn("remote operation failed", zap.String("op", name), zap.Error(err))
		s.notify(model.SyncStatusOffline)
		return fmt.Errorf("%s: %w", name, err)
	}
	s.notify(model.SyncStatusSynced)
	return nil
}

func (s *RemoteStore) load(ctx context.Context, key string) (model.Snapshot, error) {
	doc, err := s.client.Get(ctx, key)
	if err != nil {
		return model.Snapshot{}, err
	}
	if doc == nil {
		return model.Snapshot{}, nil
	}
	return *doc, nil
}

func (s *RemoteStore) read(ctx context.Context, name string) (model.Snapshot, error) {
	var doc model.Snapshot
	err := s.execute(ctx, name, func(ctx context.Context, key string) error {
		var err error
		doc, err = s.load(ctx, key)
		return err
	})
	return doc, err
}

func (s *RemoteStore) mutate(ctx context.Context, name string, change func(doc *model.Snapshot) error) error {
	return s.execute(ctx, name, func(ctx context.Context, key string) error {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		doc, err := s.load(ctx, key)
		if err != nil {
			return err
		}
		if err := change(&doc); err != nil {
			return err
		}
		return s.client.Set(ctx, key, doc)
	})
}

func (s *RemoteStore) Snapshot(ctx context.Context) (model.Snapshot, error) {
	doc, err := s.read(ctx, "export data")
	if err != nil {
		return model.Snapshot{}, err
	}
	return doc.Normalized(), nil
}

func (s *RemoteStore) Import(ctx context.Context, snap model.Snapshot) error {
	return s.mutate(ctx, "import data", func(doc *model.Snapshot) error {
		if snap.Items != nil {
			doc.Items = slices.Clone(snap.Items)
		}
		if snap.Categories != nil {
			doc.Categories = slices.Clone(snap.Categories)
		}
		if snap.Completions != nil {
			doc.Completions = snap.Completions.Unique()
		}
		return nil
	})
}

func (s *RemoteStore) HasData(ctx context.Context) (bool, error) {
	doc, err := s.read(ctx, "check data")
	if err != nil {
		return false, err
	}
	return doc.HasData(), nil
}

func (s *RemoteStore) Clear(ctx context.Context) error {
	return s.execute(ctx, "clear data", func(ctx context.Context, key string) error {
		return s.client.Delete(ctx, key)
	})
}

func (s *RemoteStore) ListItems(ctx context.Context) ([]model.Item, error) {
	doc, err := s.read(ctx, "get items")
	if err != nil {
		return nil, err
	}
	return doc.Items, nil
}

func (s *RemoteStore) GetItem(ctx context.Context, id string) (*model.Item, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(items, func(it model.Item) bool { return it.ID == id })
	if idx < 0 {
		return nil, nil
	}
	return &items[idx], nil
}

func (s *RemoteStore) AddItem(ctx context.Context, item model.Item) error {
	return s.mutate(ctx, "add item", func(doc *model.Snapshot) error {
		doc.Items = append(doc.Items, item)
		return nil
	})
}

func (s *RemoteStore) UpdateItem(ctx context.Context, item model.Item) (bool, error) {
	found := false
	err := s.mutate(ctx, "update item", func(doc *model.Snapshot) error {
		idx := slices.IndexFunc(doc.Items, func(it model.Item) bool { return it.ID == item.ID })
		if idx >= 0 {
			doc.Items[idx] = item
			found = true
		}
		return nil
	})
	return found, err
}

func (s *RemoteStore) DeleteItems(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.mutate(ctx, "delete items", func(doc *model.Snapshot) error {
		doc.Items = slices.DeleteFunc(doc.Items, func(it model.Item) bool {
			return slices.Contains(ids, it.ID)
		})
		return nil
	})
}

func (s *RemoteStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	doc, err := s.read(ctx, "get categories")
	if err != nil {
		return nil, err
	}
	return doc.Categories, nil
}

func (s *RemoteStore) AddCategory(ctx context.Context, category model.Category) error {
	return s.mutate(ctx, "add category", func(doc *model.Snapshot) error {
		doc.Categories = append(doc.Categories, category)
		return nil
	})
}

func (s *RemoteStore) DeleteCategory(ctx context.Context, id string) (bool, error) {
	found := false
	err := s.mutate(ctx, "delete category", func(doc *model.Snapshot) error {
		before := len(doc.Categories)
		doc.Categories = slices.DeleteFunc(doc.Categories, func(c model.Category) bool { return c.ID == id })
		found = len(doc.Categories) < before
		return nil
	})
	return found, err
}

func (s *RemoteStore) ListCompletions(ctx context.Context) (model.Completions, error) {
	doc, err := s.read(ctx, "get completions")
	if err != nil {
		return nil, err
	}
	if doc.Completions == nil {
		return model.Completions{}, nil
	}
	return doc.Completions, nil
}

func (s *RemoteStore) CompletionDays(ctx context.Context, itemID string) ([]string, error) {
	completions, err := s.ListCompletions(ctx)
	if err != nil {
		return nil, err
	}
	return completions[itemID], nil
}

func (s *RemoteStore) AddCompletion(ctx context.Context, itemID, day string) error {
	return s.mutate(ctx, "mark completed", func(doc *model.Snapshot) error {
		if doc.Completions == nil {
			doc.Completions = model.Completions{}
		}
		if !doc.Completions.Has(itemID, day) {
			doc.Completions[itemID] = append(doc.Completions[itemID], day)
		}
		return nil
	})
}

func (s *RemoteStore) RemoveCompletion(ctx context.Context, itemID, day string) error {
	return s.mutate(ctx, "unmark completed", func(doc *model.Snapshot) error {
		days, ok := doc.Completions[itemID]
		if !ok {
			return nil
		}
		days = slices.DeleteFunc(days, func(d string) bool { return d == day })
		if len(days) == 0 {
			delete(doc.Completions, itemID)
		} else {
			doc.Completions[itemID] = days
		}
		return nil
	})
}

func (s *RemoteStore) DeleteCompletions(ctx context.Context, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return s.mutate(ctx, "delete completions", func(doc *model.Snapshot) error {
		for _, id := range itemIDs {
			delete(doc.Completions, id)
		}
		return nil
	})
}
