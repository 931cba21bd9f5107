package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practice-planner/internal/model"
)

type statusRecorder struct {
	mu       sync.Mutex
	statuses []model.SyncStatus
}

func (r *statusRecorder) record(s model.SyncStatus) {
	r.mu.Lock()
	r.statuses = append(r.statuses, s)
	r.mu.Unlock()
}

func (r *statusRecorder) all() []model.SyncStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.SyncStatus(nil), r.statuses...)
}

type failingDocuments struct{ err error }

func (f failingDocuments) Get(context.Context, string) (*model.Snapshot, error) { return nil, f.err }
func (f failingDocuments) Set(context.Context, string, model.Snapshot) error    { return f.err }
func (f failingDocuments) Delete(context.Context, string) error                 { return f.err }
func (f failingDocuments) Close() error                                         { return nil }

func TestRemoteStoreRequiresClient(t *testing.T) {
	store := NewRemoteStore(nil, nil)
	store.SetUser("u1")
	assert.False(t, store.Available())

	_, err := store.ListItems(context.Background())
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestRemoteStoreRequiresUser(t *testing.T) {
	store := newRemoteStore(t, "")
	rec := &statusRecorder{}
	store.OnStatusChange(rec.record)

	err := store.AddItem(context.Background(), item("a", "A"))
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.Empty(t, rec.all(), "no status change before the operation starts")
}

func TestRemoteStoreReportsSyncStatus(t *testing.T) {
	store := newRemoteStore(t, "u1")
	rec := &statusRecorder{}
	store.OnStatusChange(rec.record)

	require.NoError(t, store.AddItem(context.Background(), item("a", "A")))
	assert.Equal(t, []model.SyncStatus{model.SyncStatusSyncing, model.SyncStatusSynced}, rec.all())
}

func TestRemoteStoreGoesOfflineOnFailure(t *testing.T) {
	boom := errors.New("network down")
	store := NewRemoteStore(failingDocuments{err: boom}, nil)
	store.SetUser("u1")
	rec := &statusRecorder{}
	store.OnStatusChange(rec.record)

	_, err := store.HasData(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []model.SyncStatus{model.SyncStatusSyncing, model.SyncStatusOffline}, rec.all())
}

func TestRemoteStoreScopesByUser(t *testing.T) {
	store := newRemoteStore(t, "alice")
	ctx := context.Background()
	require.NoError(t, store.AddItem(ctx, item("a", "A")))

	store.SetUser("bob")
	has, err := store.HasData(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	store.SetUser("alice")
	items, err := store.ListItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestDocumentsDriver(t *testing.T) {
	assert.Equal(t, "postgres", documentsDriver("postgres://user@localhost/practice"))
	assert.Equal(t, "postgres", documentsDriver("host=db user=practice sslmode=disable"))
	assert.Equal(t, "sqlite3", documentsDriver("remote.db"))
}

func TestOpenDocumentsEmptyDSN(t *testing.T) {
	_, err := OpenDocuments(context.Background(), " ")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}
