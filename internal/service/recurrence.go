package service

import (
	"practice-planner/internal/dateutil"
	"practice-planner/internal/model"
)

// ComputeDueItems returns the active items due on day, in input order.
//
// An item never completed is always due. Otherwise it is due when the absolute
// day distance between day and its latest completion is at least RecurDays.
// Because the distance is unsigned, a completion dated after day counts the
// same as one before it.
func ComputeDueItems(items []model.Item, completions model.Completions, day string) []model.DueItem {
	due := make([]model.DueItem, 0, len(items))
	for _, item := range items {
		if item.IsPaused() {
			continue
		}

		entry := model.DueItem{Item: item, IsCompleted: completions.Has(item.ID, day)}
		last := completions.Last(item.ID)
		if last == "" {
			due = append(due, entry)
			continue
		}

		gap, err := dateutil.DaysBetween(day, last)
		if err != nil {
			// Unreadable history behaves like no history.
			due = append(due, entry)
			continue
		}
		if gap >= item.RecurDays {
			entry.DaysSinceLastCompletion = &gap
			due = append(due, entry)
		}
	}
	return due
}

// ComputeStats aggregates a due set. Percentage rounds half up and is 0 for an empty set.
func ComputeStats(due []model.DueItem) model.Stats {
	stats := model.Stats{Total: len(due)}
	for _, d := range due {
		if d.IsCompleted {
			stats.Completed++
		}
	}
	stats.Remaining = stats.Total - stats.Completed
	if stats.Total > 0 {
		stats.Percentage = (stats.Completed*200 + stats.Total) / (stats.Total * 2)
	}
	return stats
}

// GroupDueItems nests due sub-items under their due parent. Sub-items whose parent
// is not itself due stay at the top level. Relative order is kept at both levels.
func GroupDueItems(due []model.DueItem) []model.DueGroup {
	roots := make(map[string]bool)
	for _, d := range due {
		if !d.IsSubItem() {
			roots[d.ID] = true
		}
	}

	children := make(map[string][]model.DueItem)
	groups := make([]model.DueGroup, 0, len(due))
	for _, d := range due {
		if d.IsSubItem() && roots[d.ParentID] {
			children[d.ParentID] = append(children[d.ParentID], d)
			continue
		}
		groups = append(groups, model.DueGroup{DueItem: d})
	}
	for i := range groups {
		groups[i].SubItems = children[groups[i].ID]
	}
	return groups
}
