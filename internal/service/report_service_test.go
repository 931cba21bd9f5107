package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practice-planner/internal/model"
)

func TestDailySummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent, err := f.items.AddItem(ctx, ItemInput{Name: "Scales & arpeggios", Category: "Scales", RecurDays: 1})
	require.NoError(t, err)
	child, err := f.items.AddItem(ctx, ItemInput{Name: "F# minor", Category: "Scales", RecurDays: 1, ParentID: parent.ID, Description: "<slow>"})
	require.NoError(t, err)
	_, err = f.recurrence.MarkCompleted(ctx, child.ID, "2024-03-07")
	require.NoError(t, err)

	report := NewReportService(f.recurrence)
	text, err := report.DailySummary(ctx, today)
	require.NoError(t, err)

	assert.Contains(t, text, "Sunday, March 10, 2024")
	assert.Contains(t, text, "📊 0/2 done (0%), 2 left")
	assert.Contains(t, text, "1. ⬜ Scales &amp; arpeggios <i>(Scales)</i> 🆕")
	assert.Contains(t, text, "   2. ⬜ F# minor ♻️ 3d")
	assert.Contains(t, text, "📝 &lt;slow&gt;")
}

func TestDailySummaryNothingDue(t *testing.T) {
	f := newFixture(t)
	text, err := NewReportService(f.recurrence).DailySummary(context.Background(), today)
	require.NoError(t, err)
	assert.Contains(t, text, "Nothing due today")
	assert.Contains(t, text, FormatStats(model.Stats{}))
}
