package service

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practice-planner/internal/model"
)

func sampleSnapshot() model.Snapshot {
	parent := practiceItem("p", 7)
	parent.Description = "all keys"
	child := practiceItem("c", 2)
	child.ParentID = "p"
	child.Status = model.StatusPaused
	return model.Snapshot{
		Items:       []model.Item{parent, child},
		Categories:  []model.Category{{ID: "k1", Name: "Scales", CreatedAt: "2024-01-01"}},
		Completions: model.Completions{"p": {"2024-03-01", "2024-03-08"}},
		ExportDate:  "2024-03-10T08:00:00Z",
	}
}

func TestCodecsRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			want := sampleSnapshot()
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, want, format))

			got, err := Decode(&buf, format)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeKeepsAbsentCollectionsNil(t *testing.T) {
	snap, err := Decode(strings.NewReader(`{"categories":[{"id":"x","name":"Theory"}]}`), FormatJSON)
	require.NoError(t, err)
	assert.Nil(t, snap.Items)
	assert.Nil(t, snap.Completions)
	assert.Len(t, snap.Categories, 1)

	_, err = Decode(strings.NewReader("{"), FormatJSON)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("{}"), Format("xml"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDecodeKeepsEmptyCollections(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, model.Snapshot{ExportDate: "2024-03-10T08:30:00Z"}.Normalized(), format))

			snap, err := Decode(&buf, format)
			require.NoError(t, err)
			assert.NotNil(t, snap.Items)
			assert.NotNil(t, snap.Categories)
			assert.NotNil(t, snap.Completions)
			assert.False(t, snap.HasData())
		})
	}

	snap, err := Decode(strings.NewReader("exportDate = \"2024-03-10T08:30:00Z\"\n"), FormatTOML)
	require.NoError(t, err)
	assert.Nil(t, snap.Items)
	assert.Nil(t, snap.Categories)
	assert.Nil(t, snap.Completions)
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"backup.json":     FormatJSON,
		"backup.YAML":     FormatYAML,
		"dir/backup.yml":  FormatYAML,
		"backup.toml":     FormatTOML,
		"backup":          FormatJSON,
		"backup.tar.json": FormatJSON,
	}
	for path, want := range tests {
		assert.Equal(t, want, FormatFromPath(path), path)
	}
}

func TestExportStampsDate(t *testing.T) {
	store := newLocal(t)
	transfer := NewTransferService(Fixed(store), nil)
	transfer.now = func() time.Time { return time.Date(2024, 3, 10, 9, 30, 0, 0, time.FixedZone("CET", 3600)) }

	snap, err := transfer.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10T08:30:00Z", snap.ExportDate)
	assert.NotNil(t, snap.Items)
	assert.NotNil(t, snap.Categories)
	assert.NotNil(t, snap.Completions)
}

func TestImportReplacesOnlyPresentCollections(t *testing.T) {
	store := newLocal(t)
	ctx := context.Background()
	require.NoError(t, store.Import(ctx, sampleSnapshot()))

	transfer := NewTransferService(Fixed(store), nil)
	require.NoError(t, transfer.Import(ctx, model.Snapshot{
		Categories: []model.Category{{ID: "k2", Name: "Pieces"}},
	}))

	snap := snapshotOf(t, store)
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, []model.Category{{ID: "k2", Name: "Pieces"}}, snap.Categories)
	assert.Equal(t, model.Completions{"p": {"2024-03-01", "2024-03-08"}}, snap.Completions)
}

func TestExportImportFile(t *testing.T) {
	ctx := context.Background()
	source := newRemote(t)
	source.SetUser("alice")
	require.NoError(t, source.Import(ctx, sampleSnapshot()))

	for _, name := range []string{"out.json", "nested/out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			exported, err := NewTransferService(Fixed(source), nil).ExportFile(ctx, path)
			require.NoError(t, err)

			target := newLocal(t)
			imported, err := NewTransferService(Fixed(target), nil).ImportFile(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, exported.ExportDate, imported.ExportDate)

			want := sampleSnapshot()
			want.ExportDate = ""
			assertSameData(t, want, snapshotOf(t, target))
		})
	}
}

func TestImportFileMissing(t *testing.T) {
	transfer := NewTransferService(Fixed(newLocal(t)), nil)
	_, err := transfer.ImportFile(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestImportFileReplacesWithEmptyCollections(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"empty.json", "empty.yaml", "empty.toml"} {
		t.Run(name, func(t *testing.T) {
			source := newRemote(t)
			source.SetUser("bob")
			path := filepath.Join(t.TempDir(), name)
			_, err := NewTransferService(Fixed(source), nil).ExportFile(ctx, path)
			require.NoError(t, err)

			target := newLocal(t)
			require.NoError(t, target.Import(ctx, sampleSnapshot()))
			_, err = NewTransferService(Fixed(target), nil).ImportFile(ctx, path)
			require.NoError(t, err)

			snap := snapshotOf(t, target)
			assert.Empty(t, snap.Items)
			assert.Empty(t, snap.Categories)
			assert.Empty(t, snap.Completions)
		})
	}
}
