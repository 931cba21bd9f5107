// Package app wires stores and services for the bot daemon and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"practice-planner/internal/config"
	"practice-planner/internal/logging"
	"practice-planner/internal/repository"
	"practice-planner/internal/service"
)

// App holds the wired services of one process.
type App struct {
	Config config.Config
	Logger *zap.Logger

	Local  *repository.LocalStore
	Remote *repository.RemoteStore

	Sync       *service.SyncService
	Items      *service.ItemService
	Categories *service.CategoryService
	Recurrence *service.RecurrenceService
	Reports    *service.ReportService
	Transfer   *service.TransferService

	closers []func() error
}

// Open connects the local database and, when configured, the remote document
// store. A remote store that cannot be reached is logged and left unavailable.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)
	a := &App{Config: cfg, Logger: logger}

	db, err := repository.NewDB(cfg.LocalDB, logger)
	if err != nil {
		return nil, fmt.Errorf("open local db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open local db: %w", err)
	}
	a.closers = append(a.closers, sqlDB.Close)
	a.Local = repository.NewLocalStore(db, logger)

	var docs repository.DocumentClient
	if cfg.RemoteDSN != "" {
		d, err := repository.OpenDocuments(ctx, cfg.RemoteDSN)
		if err != nil {
			logger.Warn("remote store unavailable, working locally", zap.Error(err))
		} else {
			docs = d
			a.closers = append(a.closers, d.Close)
		}
	}
	a.Remote = repository.NewRemoteStore(docs, logger)

	loc := cfg.Location()
	a.Sync = service.NewSyncService(a.Local, a.Remote, logger)
	a.Items = service.NewItemService(a.Sync, loc, logger)
	a.Categories = service.NewCategoryService(a.Sync, loc, logger)
	a.Recurrence = service.NewRecurrenceService(a.Sync, logger)
	a.Reports = service.NewReportService(a.Recurrence)
	a.Transfer = service.NewTransferService(a.Sync, logger)

	if cfg.SeedCategories {
		n, err := a.Categories.EnsureDefaults(ctx)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("seed categories: %w", err)
		}
		if n > 0 {
			logger.Info("seeded default categories", zap.Int("count", n))
		}
	}
	return a, nil
}

// Close releases database handles in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
