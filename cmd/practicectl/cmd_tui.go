package main

import (
	"github.com/spf13/cobra"

	"practice-planner/internal/tui"
)

func (c *cli) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open today's checklist in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(c.ctx(cmd), c.app.Items, c.app.Recurrence, c.today())
		},
	}
}
