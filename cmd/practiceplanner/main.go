package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"practice-planner/internal/app"
	"practice-planner/internal/bot"
	"practice-planner/internal/config"
	"practice-planner/internal/logging"
	"practice-planner/internal/service"
)

func main() {
	var configPath string
	root := &cobra.Command{
		Use:          "practiceplanner",
		Short:        "Telegram bot that sends the daily practice plan",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "config file (yaml, toml or json)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Printf("logger: %v", err)
		return err
	}
	defer logger.Sync()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("practice planner stopped with error", zap.Error(err))
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	telegramBot, err := bot.New(cfg.TelegramToken, cfg.OwnerID, bot.Services{
		Items:      a.Items,
		Categories: a.Categories,
		Recurrence: a.Recurrence,
		Reports:    a.Reports,
		Sync:       a.Sync,
	}, cfg.Location(), logger)
	if err != nil {
		return err
	}
	a.Remote.OnStatusChange(telegramBot.SetSyncStatus)

	scheduler := service.NewSchedulerService(cfg.Location(), logger)
	id, err := scheduler.ScheduleDailyContext(cfg.ReportTime, 30*time.Second, "daily report", telegramBot.SendDailyReport)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scheduler.Start()
		logger.Info("daily report scheduled", zap.Time("next", scheduler.Next(id)))
		<-ctx.Done()
		scheduler.Stop()
		return nil
	})
	g.Go(func() error {
		logger.Info("practice planner bot started")
		if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	return g.Wait()
}
