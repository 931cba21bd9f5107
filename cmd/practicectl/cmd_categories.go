package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"practice-planner/internal/service"
)

func (c *cli) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := c.app.Categories.List(c.ctx(cmd))
			if err != nil {
				return err
			}
			for _, category := range categories {
				printf(cmd, "%s\n", category.Name)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := c.app.Categories.AddCategory(c.ctx(cmd), args[0])
			if errors.Is(err, service.ErrCategoryExists) {
				return fmt.Errorf("category %q already exists", strings.TrimSpace(args[0]))
			}
			if err != nil {
				return err
			}
			printf(cmd, "Added category %s\n", category.Name)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category that no item uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.ctx(cmd)
			categories, err := c.app.Categories.List(ctx)
			if err != nil {
				return err
			}
			for _, category := range categories {
				if !strings.EqualFold(category.Name, strings.TrimSpace(args[0])) {
					continue
				}
				ok, err := c.app.Categories.DeleteCategory(ctx, category.ID)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("category %q is in use", category.Name)
				}
				printf(cmd, "Deleted category %s\n", category.Name)
				return nil
			}
			return fmt.Errorf("no category %q", args[0])
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}
