package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"practice-planner/internal/model"
	"practice-planner/internal/service"
)

func (c *cli) todayCmd() *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the items due today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if day == "" {
				day = c.today()
			}
			groups, stats, err := c.app.Recurrence.TodayView(c.ctx(cmd), day)
			if err != nil {
				return err
			}
			printf(cmd, "Practice plan for %s\n%s\n\n", day, service.FormatStats(stats))
			due := service.Flatten(groups)
			if len(due) == 0 {
				printf(cmd, "Nothing due.\n")
			}
			subs := make(map[string]bool)
			for _, g := range groups {
				for _, s := range g.SubItems {
					subs[s.ID] = true
				}
			}
			for i, item := range due {
				indent := ""
				if subs[item.ID] {
					indent = "   "
				}
				printf(cmd, "%s%2d. %s\n", indent, i+1, formatDue(item))
			}

			done, err := c.completedOn(cmd, day, due)
			if err != nil {
				return err
			}
			if len(done) > 0 {
				printf(cmd, "\nDone today:\n")
			}
			for i, item := range done {
				printf(cmd, "%2d. [x] %s (%s)\n", len(due)+i+1, item.Name, item.Category)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "day to show as YYYY-MM-DD (default today)")
	return cmd
}

func formatDue(item model.DueItem) string {
	check := "[ ]"
	if item.IsCompleted {
		check = "[x]"
	}
	since := "new"
	if d := item.DaysSinceLastCompletion; d != nil {
		since = fmt.Sprintf("%dd since last", *d)
	}
	return fmt.Sprintf("%s %s (%s, %s)", check, item.Name, item.Category, since)
}

func (c *cli) doneCmd() *cobra.Command {
	return c.markCmd("done", "Mark an item completed today", true)
}

func (c *cli) undoCmd() *cobra.Command {
	return c.markCmd("undo", "Remove today's completion of an item", false)
}

func (c *cli) markCmd(use, short string, done bool) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   use + " <number|id|name>",
		Short: short,
		Long: short + `.

The item is given by its number in "practicectl today", its id or its name.
Numbers cover the due list followed by the items done that day, so an item
moves to the end of the list once it is marked done. Run "practicectl today"
again before reusing a number.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.ctx(cmd)
			if day == "" {
				day = c.today()
			}
			item, err := c.resolveDueOrItem(cmd, day, args[0])
			if err != nil {
				return err
			}

			if done {
				changed, err := c.app.Recurrence.MarkCompleted(ctx, item.ID, day)
				if err != nil {
					return err
				}
				if !changed {
					printf(cmd, "%s is already done on %s\n", item.Name, day)
					return nil
				}
				printf(cmd, "Done: %s\n", item.Name)
				return nil
			}

			changed, err := c.app.Recurrence.UnmarkCompleted(ctx, item.ID, day)
			if err != nil {
				return err
			}
			if !changed {
				printf(cmd, "%s was not marked on %s\n", item.Name, day)
				return nil
			}
			printf(cmd, "Unmarked: %s\n", item.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "day as YYYY-MM-DD (default today)")
	return cmd
}

// completedOn lists the items completed on day that are not in due.
func (c *cli) completedOn(cmd *cobra.Command, day string, due []model.DueItem) ([]model.Item, error) {
	listed := make(map[string]bool, len(due))
	for _, d := range due {
		listed[d.ID] = true
	}
	items, err := c.app.Items.ListItems(c.ctx(cmd), model.ItemFilter{})
	if err != nil {
		return nil, err
	}
	var out []model.Item
	for _, item := range items {
		if listed[item.ID] {
			continue
		}
		done, err := c.app.Recurrence.IsCompleted(c.ctx(cmd), item.ID, day)
		if err != nil {
			return nil, err
		}
		if done {
			out = append(out, item)
		}
	}
	return out, nil
}

// resolveDueOrItem treats a number as a position in the list printed by
// today (due items, then items done that day) and anything else as an item
// id or name.
func (c *cli) resolveDueOrItem(cmd *cobra.Command, day, ref string) (*model.Item, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		groups, _, err := c.app.Recurrence.TodayView(c.ctx(cmd), day)
		if err != nil {
			return nil, err
		}
		due := service.Flatten(groups)
		if n >= 1 && n <= len(due) {
			item := due[n-1].Item
			return &item, nil
		}
		done, err := c.completedOn(cmd, day, due)
		if err != nil {
			return nil, err
		}
		if k := n - len(due); k >= 1 && k <= len(done) {
			return &done[k-1], nil
		}
		return nil, fmt.Errorf("no item number %d on %s", n, day)
	}
	return c.resolveItem(cmd, ref)
}

func (c *cli) resolveItem(cmd *cobra.Command, ref string) (*model.Item, error) {
	items, err := c.app.Items.ListItems(c.ctx(cmd), model.ItemFilter{})
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == ref {
			return &items[i], nil
		}
	}
	var found *model.Item
	for i := range items {
		if strings.EqualFold(items[i].Name, strings.TrimSpace(ref)) {
			if found != nil {
				return nil, fmt.Errorf("%q matches more than one item, use its id", ref)
			}
			found = &items[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("no item %q", ref)
	}
	return found, nil
}

func (c *cli) statsCmd() *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if day == "" {
				day = c.today()
			}
			stats, err := c.app.Recurrence.Stats(c.ctx(cmd), day)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", service.FormatStats(stats))
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "day as YYYY-MM-DD (default today)")
	return cmd
}
