package service

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practice-planner/internal/model"
	"practice-planner/internal/repository"
)

func seed(t *testing.T, store repository.Store, ids ...string) model.Snapshot {
	t.Helper()
	snap := model.Snapshot{
		Categories:  []model.Category{{ID: "cat-" + ids[0], Name: "Scales"}},
		Completions: model.Completions{},
	}
	for _, id := range ids {
		snap.Items = append(snap.Items, practiceItem(id, 3))
		snap.Completions[id] = []string{"2024-03-01"}
	}
	require.NoError(t, store.Import(context.Background(), snap))
	return snap
}

func snapshotOf(t *testing.T, store repository.Store) model.Snapshot {
	t.Helper()
	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	return snap
}

func assertSameData(t *testing.T, want, got model.Snapshot) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSyncStartsLocal(t *testing.T) {
	sync := NewSyncService(newLocal(t), newRemote(t), nil)
	assert.Equal(t, repository.KindLocal, sync.Active())
	assert.Empty(t, sync.User())
}

func TestSignInWithoutLocalData(t *testing.T) {
	remote := newRemote(t)
	sync := NewSyncService(newLocal(t), remote, nil)

	res, err := sync.SignIn(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, MigrationNone, res.Migration)
	assert.NoError(t, res.Warning)
	assert.Equal(t, repository.KindRemote, sync.Active())
	assert.Equal(t, "alice", sync.User())
}

func TestSignInUploadsLocalData(t *testing.T) {
	local := newLocal(t)
	remote := newRemote(t)
	want := seed(t, local, "a", "b")
	sync := NewSyncService(local, remote, nil)

	res, err := sync.SignIn(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, MigrationUpload, res.Migration)
	assert.Equal(t, repository.KindRemote, sync.Active())

	assertSameData(t, want, snapshotOf(t, remote))
	assertSameData(t, want, snapshotOf(t, sync.Store()))
}

func TestSignInDownloadsRemoteData(t *testing.T) {
	local := newLocal(t)
	remote := newRemote(t)
	seed(t, local, "local-only")

	remote.SetUser("alice")
	want := seed(t, remote, "r1", "r2")
	remote.SetUser("")

	sync := NewSyncService(local, remote, nil)
	res, err := sync.SignIn(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, MigrationDownload, res.Migration)

	assertSameData(t, want, snapshotOf(t, local))
	assertSameData(t, want, snapshotOf(t, remote))
}

func TestSignInFallsBackToLocal(t *testing.T) {
	local := newLocal(t)
	want := seed(t, local, "a")
	sync := NewSyncService(local, repository.NewRemoteStore(nil, nil), nil)

	res, err := sync.SignIn(context.Background(), "alice")
	require.NoError(t, err)
	assert.ErrorIs(t, res.Warning, repository.ErrRemoteUnavailable)
	assert.Equal(t, MigrationNone, res.Migration)
	assert.Equal(t, repository.KindLocal, sync.Active())

	assertSameData(t, want, snapshotOf(t, local))
}

func TestSignOutKeepsData(t *testing.T) {
	local := newLocal(t)
	remote := newRemote(t)
	before := seed(t, local, "a")
	sync := NewSyncService(local, remote, nil)
	ctx := context.Background()

	_, err := sync.SignIn(ctx, "alice")
	require.NoError(t, err)

	items := NewItemService(sync, nil, nil)
	_, err = items.AddItem(ctx, ItemInput{Name: "remote only", Category: "Scales"})
	require.NoError(t, err)

	sync.SignOut()
	assert.Equal(t, repository.KindLocal, sync.Active())
	assert.Empty(t, remote.User())
	assertSameData(t, before, snapshotOf(t, local))

	require.NoError(t, sync.Resume("alice"))
	assert.Equal(t, repository.KindRemote, sync.Active())
	remoteItems, err := items.ListItems(ctx, model.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, remoteItems, 2)
}

func TestSignInRequiresUser(t *testing.T) {
	sync := NewSyncService(newLocal(t), newRemote(t), nil)

	_, err := sync.SignIn(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, sync.Resume(""), ErrInvalidInput)
	assert.Equal(t, repository.KindLocal, sync.Active())
}
