package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"practice-planner/internal/dateutil"
	"practice-planner/internal/model"
)

const (
	iconTodo      = "⬜"
	iconDone      = "✅"
	iconNew       = "🆕"
	iconRecurring = "♻️"
)

// ReportService builds human-readable summaries for daily notifications.
type ReportService struct {
	recurrence *RecurrenceService
}

func NewReportService(recurrence *RecurrenceService) *ReportService {
	return &ReportService{recurrence: recurrence}
}

// DailySummary renders the due set of day as Telegram HTML.
func (s *ReportService) DailySummary(ctx context.Context, day string) (string, error) {
	groups, stats, err := s.recurrence.TodayView(ctx, day)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("🎵 <b>Practice plan</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n", html.EscapeString(dateutil.Human(day))))
	builder.WriteString(FormatStats(stats))
	builder.WriteString("\n\n")

	if len(groups) == 0 {
		builder.WriteString("Nothing due today 🎉\n")
		return strings.TrimSpace(builder.String()), nil
	}

	n := 0
	for _, group := range groups {
		n++
		builder.WriteString(formatDueItem(n, group.DueItem, ""))
		for _, sub := range group.SubItems {
			n++
			builder.WriteString(formatDueItem(n, sub, "   "))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// FormatStats renders progress as "2/5 done (40%)".
func FormatStats(stats model.Stats) string {
	return fmt.Sprintf("📊 %d/%d done (%d%%), %d left", stats.Completed, stats.Total, stats.Percentage, stats.Remaining)
}

// Flatten lists groups in display order: each parent followed by its sub-items.
// The position of an item in the result matches the number shown in DailySummary.
func Flatten(groups []model.DueGroup) []model.DueItem {
	var out []model.DueItem
	for _, group := range groups {
		out = append(out, group.DueItem)
		out = append(out, group.SubItems...)
	}
	return out
}

func formatDueItem(n int, item model.DueItem, indent string) string {
	var sb strings.Builder

	icon := iconTodo
	if item.IsCompleted {
		icon = iconDone
	}
	sb.WriteString(fmt.Sprintf("%s%d. %s %s", indent, n, icon, html.EscapeString(item.Name)))

	if category := strings.TrimSpace(item.Category); category != "" && indent == "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(category)))
	}

	if item.DaysSinceLastCompletion == nil {
		sb.WriteString(" " + iconNew)
	} else {
		sb.WriteString(fmt.Sprintf(" %s %dd", iconRecurring, *item.DaysSinceLastCompletion))
	}

	if item.Description != "" {
		sb.WriteString(fmt.Sprintf("\n%s   📝 %s", indent, html.EscapeString(item.Description)))
	}

	sb.WriteByte('\n')
	return sb.String()
}
