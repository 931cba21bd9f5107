// Command practicectl manages the practice plan from a terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"practice-planner/internal/app"
	"practice-planner/internal/config"
	"practice-planner/internal/dateutil"
	"practice-planner/internal/logging"
)

// cli carries the state shared by every subcommand of one invocation.
type cli struct {
	configPath string
	verbose    bool

	cfg     config.Config
	logger  *zap.Logger
	app     *app.App
	session *session
}

func main() {
	c := &cli{}
	err := newRootCmd(c).Execute()
	if cerr := c.close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "practicectl",
		Short: "Track what to practice and when",
		Long: `practicectl keeps a list of practice items, each repeating every N days,
and shows which of them are due today.

Data lives in a local SQLite database. After "practicectl signin <user>" it is
kept in the configured remote store instead.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.open,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (yaml, toml or json)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		c.todayCmd(),
		c.doneCmd(),
		c.undoCmd(),
		c.statsCmd(),
		c.itemsCmd(),
		c.categoriesCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.resetCmd(),
		c.signInCmd(),
		c.signOutCmd(),
		c.statusCmd(),
		c.tuiCmd(),
	)
	return root
}

func (c *cli) open(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := "warn"
	if c.verbose {
		level = "debug"
	}
	if c.logger, err = logging.New(level, true); err != nil {
		return err
	}

	if c.app, err = app.Open(cmd.Context(), cfg, c.logger); err != nil {
		return err
	}

	c.session, err = loadSession(cfg.SessionFile)
	if err != nil {
		return err
	}
	if c.session.User != "" {
		if err := c.app.Sync.Resume(c.session.User); err != nil {
			return err
		}
		c.logger.Debug("session restored", zap.String("user", c.session.User))
	}
	return nil
}

func (c *cli) close() error {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

func (c *cli) today() string {
	return dateutil.Today(c.cfg.Location())
}

func (c *cli) ctx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printf(cmd *cobra.Command, format string, a ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, a...)
}
