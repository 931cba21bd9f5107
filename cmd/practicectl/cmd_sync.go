package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"practice-planner/internal/repository"
	"practice-planner/internal/service"
)

func (c *cli) signInCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signin <user>",
		Short: "Switch to the remote store, migrating data once",
		Long: `Sign in to the remote store as <user>.

If the local store has data and the remote store has none, local data is
uploaded. If both have data, the remote data replaces the local data.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.app.Sync.SignIn(c.ctx(cmd), args[0])
			if err != nil {
				return err
			}
			if res.Warning != nil {
				printf(cmd, "Sync failed (%v), still using local data\n", res.Warning)
				return nil
			}

			c.session.User = c.app.Sync.User()
			c.session.SignedInAt = time.Now().UTC().Format(time.RFC3339)
			if err := saveSession(c.cfg.SessionFile, c.session); err != nil {
				return err
			}

			switch res.Migration {
			case service.MigrationUpload:
				printf(cmd, "Signed in as %s, local data uploaded\n", c.session.User)
			case service.MigrationDownload:
				printf(cmd, "Signed in as %s, remote data downloaded\n", c.session.User)
			default:
				printf(cmd, "Signed in as %s\n", c.session.User)
			}
			return nil
		},
	}
}

func (c *cli) signOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Switch back to the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.app.Sync.SignOut()
			c.session.User = ""
			c.session.SignedInAt = ""
			if err := saveSession(c.cfg.SessionFile, c.session); err != nil {
				return err
			}
			printf(cmd, "Signed out, using local data\n")
			return nil
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which store is active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			remote := "not configured"
			if c.app.Remote.Available() {
				remote = "configured"
			}
			if c.app.Sync.Active() != repository.KindRemote {
				printf(cmd, "Store: local (remote %s)\n", remote)
				return nil
			}
			printf(cmd, "Store: remote, user %s", c.app.Sync.User())
			if c.session.SignedInAt != "" {
				printf(cmd, ", signed in %s", c.session.SignedInAt)
			}
			printf(cmd, "\n")
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write all data to a .json, .yaml or .toml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.app.Transfer.ExportFile(c.ctx(cmd), args[0])
			if err != nil {
				return err
			}
			printf(cmd, "Exported %d items, %d categories to %s\n", len(snap.Items), len(snap.Categories), args[0])
			return nil
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace data with the collections found in a file",
		Long: `Import a file written by "practicectl export". Each collection present in
the file replaces the stored one; collections missing from the file are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.app.Transfer.ImportFile(c.ctx(cmd), args[0])
			if err != nil {
				return err
			}
			printf(cmd, "Imported %d items, %d categories from %s\n", len(snap.Items), len(snap.Categories), args[0])
			return nil
		},
	}
}

func (c *cli) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all data in the active store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete everything without --yes")
			}
			if err := c.app.Sync.Store().Clear(c.ctx(cmd)); err != nil {
				return err
			}
			printf(cmd, "All %s data deleted\n", c.app.Sync.Active())
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
