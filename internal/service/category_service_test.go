package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practice-planner/internal/model"
)

func TestAddCategoryRejectsCaseInsensitiveDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.categories.AddCategory(ctx, "Scales")
	require.NoError(t, err)
	assert.Equal(t, "Scales", created.Name)

	_, err = f.categories.AddCategory(ctx, "  scales ")
	assert.ErrorIs(t, err, ErrCategoryExists)

	categories, err := f.categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestAddCategoryRequiresName(t *testing.T) {
	f := newFixture(t)
	_, err := f.categories.AddCategory(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteCategoryInUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	theory, err := f.categories.AddCategory(ctx, "Theory")
	require.NoError(t, err)
	_, err = f.items.AddItem(ctx, ItemInput{Name: "Intervals", Category: "Theory"})
	require.NoError(t, err)

	ok, err := f.categories.DeleteCategory(ctx, theory.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	categories, err := f.categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestDeleteCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chords, err := f.categories.AddCategory(ctx, "Chords")
	require.NoError(t, err)

	ok, err := f.categories.DeleteCategory(ctx, chords.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.categories.DeleteCategory(ctx, chords.ID)
	require.NoError(t, err)
	assert.False(t, ok, "unknown id is a no-op")
}

func TestEnsureDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.categories.EnsureDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(model.DefaultCategories), n)

	n, err = f.categories.EnsureDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	categories, err := f.categories.List(ctx)
	require.NoError(t, err)
	var names []string
	for _, c := range categories {
		names = append(names, c.Name)
	}
	assert.Equal(t, model.DefaultCategories, names)
}
