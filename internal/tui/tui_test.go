package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practice-planner/internal/model"
	"practice-planner/internal/repository"
	"practice-planner/internal/service"
)

const today = "2024-03-10"

type env struct {
	items      *service.ItemService
	recurrence *service.RecurrenceService
}

func newEnv(t *testing.T) env {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.NewDB(fmt.Sprintf("file:tui_%s?mode=memory&cache=shared", name), nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	stores := service.Fixed(repository.NewLocalStore(db, nil))
	return env{
		items:      service.NewItemService(stores, time.UTC, nil),
		recurrence: service.NewRecurrenceService(stores, nil),
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestChecklistToggle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	first, err := e.items.AddItem(ctx, service.ItemInput{Name: "Scales", Category: "Technique"})
	require.NoError(t, err)
	second, err := e.items.AddItem(ctx, service.ItemInput{Name: "Sonata", Category: "Pieces"})
	require.NoError(t, err)

	m := New(ctx, e.items, e.recurrence, today)
	require.Len(t, m.rows, 2)
	assert.Contains(t, m.View(), "Scales")
	assert.Contains(t, m.View(), "0/2 done")

	m, _ = press(t, m, runes("j"))
	assert.Equal(t, 1, m.cursor)
	m, _ = press(t, m, runes("j"))
	assert.Equal(t, 1, m.cursor, "cursor stays on the last row")

	m, _ = press(t, m, runes("x"))
	done, err := e.recurrence.IsCompleted(ctx, second.ID, today)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Contains(t, m.status, "Sonata")

	// A completion today takes the item out of today's set.
	require.Len(t, m.rows, 1)
	assert.Equal(t, first.ID, m.rows[0].item.ID)
	assert.Equal(t, 0, m.cursor)
}

func TestChecklistAddAndPause(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := New(ctx, e.items, e.recurrence, today)
	assert.Contains(t, m.View(), "Nothing due today")

	m, _ = press(t, m, runes("a"))
	assert.Equal(t, modeAdd, m.mode)
	m, _ = press(t, m, runes("Hanon, Technique"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeList, m.mode)
	require.Len(t, m.rows, 1)
	assert.Equal(t, "Hanon", m.rows[0].item.Name)
	assert.Equal(t, "Technique", m.rows[0].item.Category)

	m, _ = press(t, m, runes("p"))
	assert.Empty(t, m.rows)
	paused, err := e.items.ListItems(ctx, model.ItemFilter{Status: model.StatusPaused})
	require.NoError(t, err)
	assert.Len(t, paused, 1)
}

func TestChecklistPauseVanishedItem(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	item, err := e.items.AddItem(ctx, service.ItemInput{Name: "Etude", Category: "Pieces"})
	require.NoError(t, err)

	m := New(ctx, e.items, e.recurrence, today)
	require.Len(t, m.rows, 1)
	_, err = e.items.DeleteItemCascade(ctx, item.ID)
	require.NoError(t, err)

	m, _ = press(t, m, runes("p"))
	assert.Equal(t, "item not found", m.status)
	assert.Empty(t, m.rows)
}

func TestChecklistAddValidation(t *testing.T) {
	e := newEnv(t)
	m := New(context.Background(), e.items, e.recurrence, today)

	m, _ = press(t, m, runes("a"))
	m, _ = press(t, m, runes("no category"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeAdd, m.mode)
	assert.Contains(t, m.status, "add failed")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeList, m.mode)
	assert.Empty(t, m.rows)
}

func TestChecklistQuit(t *testing.T) {
	e := newEnv(t)
	m := New(context.Background(), e.items, e.recurrence, today)
	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestClampCursor(t *testing.T) {
	assert.Equal(t, 0, clampCursor(-1, 3))
	assert.Equal(t, 2, clampCursor(5, 3))
	assert.Equal(t, 0, clampCursor(1, 0))
	assert.Equal(t, 1, clampCursor(1, 3))
}
