package main

import (
	"github.com/spf13/cobra"

	"practice-planner/internal/model"
	"practice-planner/internal/service"
)

func (c *cli) itemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage practice items",
	}
	cmd.AddCommand(c.itemsListCmd(), c.itemsAddCmd(), c.itemsEditCmd(), c.itemsPauseCmd(), c.itemsDeleteCmd())
	return cmd
}

func (c *cli) itemsListCmd() *cobra.Command {
	var filter model.ItemFilter
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items with their sub-items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter.Status = model.ItemStatus(status)
			items, err := c.app.Items.ListItems(c.ctx(cmd), filter)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				printf(cmd, "No items.\n")
				return nil
			}

			listed := make(map[string]bool, len(items))
			children := make(map[string][]model.Item)
			for _, item := range items {
				listed[item.ID] = true
				if item.IsSubItem() {
					children[item.ParentID] = append(children[item.ParentID], item)
				}
			}
			for _, item := range items {
				if item.IsSubItem() && listed[item.ParentID] {
					continue
				}
				printItem(cmd, item, "")
				for _, sub := range children[item.ID] {
					printItem(cmd, sub, "   ")
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Category, "category", "", "only items of this category")
	cmd.Flags().StringVar(&status, "status", "", "only active or paused items")
	return cmd
}

func printItem(cmd *cobra.Command, item model.Item, indent string) {
	state := ""
	if item.IsPaused() {
		state = " [paused]"
	}
	printf(cmd, "%s%s  %s (%s, every %dd)%s\n", indent, item.ID, item.Name, item.Category, item.RecurDays, state)
	if item.Description != "" {
		printf(cmd, "%s    %s\n", indent, item.Description)
	}
}

func (c *cli) itemsAddCmd() *cobra.Command {
	var input service.ItemInput
	var parent string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Name = args[0]
			if parent != "" {
				p, err := c.resolveItem(cmd, parent)
				if err != nil {
					return err
				}
				input.ParentID = p.ID
				if input.Category == "" {
					input.Category = p.Category
				}
			}
			item, err := c.app.Items.AddItem(c.ctx(cmd), input)
			if err != nil {
				return err
			}
			printf(cmd, "Added %s (%s)\n", item.Name, item.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input.Category, "category", "c", "", "category name")
	cmd.Flags().IntVarP(&input.RecurDays, "every", "e", 0, "repeat every N days (default 7)")
	cmd.Flags().StringVarP(&input.Description, "note", "n", "", "short description")
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent item id or name")
	return cmd
}

func (c *cli) itemsEditCmd() *cobra.Command {
	var name, category, note, parent string
	var every int
	cmd := &cobra.Command{
		Use:   "edit <id|name>",
		Short: "Change fields of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := c.resolveItem(cmd, args[0])
			if err != nil {
				return err
			}
			var patch service.ItemPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("category") {
				patch.Category = &category
			}
			if flags.Changed("note") {
				patch.Description = &note
			}
			if flags.Changed("every") {
				patch.RecurDays = &every
			}
			if flags.Changed("parent") {
				if parent != "" {
					p, err := c.resolveItem(cmd, parent)
					if err != nil {
						return err
					}
					parent = p.ID
				}
				patch.ParentID = &parent
			}
			updated, err := c.app.Items.UpdateItem(c.ctx(cmd), item.ID, patch)
			if err != nil {
				return err
			}
			if updated == nil {
				printf(cmd, "Item %s no longer exists\n", item.ID)
				return nil
			}
			printItem(cmd, *updated, "")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category")
	cmd.Flags().StringVarP(&note, "note", "n", "", "new description")
	cmd.Flags().IntVarP(&every, "every", "e", 0, "repeat every N days")
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "new parent id or name, empty for top level")
	return cmd
}

func (c *cli) itemsPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause <id|name>",
		Short: "Pause an active item or resume a paused one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := c.resolveItem(cmd, args[0])
			if err != nil {
				return err
			}
			toggled, err := c.app.Items.ToggleStatus(c.ctx(cmd), item.ID)
			if err != nil {
				return err
			}
			if toggled == nil {
				printf(cmd, "Item %s no longer exists\n", item.ID)
				return nil
			}
			printf(cmd, "%s is now %s\n", toggled.Name, toggled.Status)
			return nil
		},
	}
}

func (c *cli) itemsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete an item with its sub-items and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := c.resolveItem(cmd, args[0])
			if err != nil {
				return err
			}
			n, err := c.app.Items.DeleteItemCascade(c.ctx(cmd), item.ID)
			if err != nil {
				return err
			}
			printf(cmd, "Deleted %d item(s)\n", n)
			return nil
		},
	}
}
