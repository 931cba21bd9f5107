package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"practice-planner/internal/logging"
	"practice-planner/internal/repository"
)

// RemoteBackend is a store that can be scoped to a signed-in user.
type RemoteBackend interface {
	repository.Store
	SetUser(userID string)
	User() string
}

// Migration names the data movement performed at sign-in.
type Migration string

const (
	MigrationNone     Migration = "none"
	MigrationUpload   Migration = "upload"
	MigrationDownload Migration = "download"
)

// SignInResult describes what sign-in did. Warning is set when reconciliation
// failed; the local store then stays active.
type SignInResult struct {
	Migration Migration
	Warning   error
}

// SyncService owns the active store handle. It starts on the local store,
// switches to the remote store on sign-in and back on sign-out.
type SyncService struct {
	local  repository.Store
	remote RemoteBackend
	logger *zap.Logger

	mu     sync.RWMutex
	active repository.Store

	// signMu keeps sign-in and sign-out from interleaving.
	signMu sync.Mutex
}

var _ StoreProvider = (*SyncService)(nil)

func NewSyncService(local repository.Store, remote RemoteBackend, logger *zap.Logger) *SyncService {
	return &SyncService{
		local:  local,
		remote: remote,
		logger: logging.OrNop(logger).Named("sync"),
		active: local,
	}
}

// Store returns the active store.
func (s *SyncService) Store() repository.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Active names the active backend.
func (s *SyncService) Active() repository.Kind {
	return s.Store().Kind()
}

// User returns the signed-in identity, or "" when working locally.
func (s *SyncService) User() string {
	if s.Active() != repository.KindRemote {
		return ""
	}
	return s.remote.User()
}

func (s *SyncService) switchTo(store repository.Store) {
	s.mu.Lock()
	s.active = store
	s.mu.Unlock()
}

// SignIn scopes the remote store to userID, reconciles local and remote data
// once and makes the remote store active. Reconciliation failures do not fail
// sign-in: they are returned as a warning and the local store stays active.
func (s *SyncService) SignIn(ctx context.Context, userID string) (SignInResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return SignInResult{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	s.signMu.Lock()
	defer s.signMu.Unlock()

	s.remote.SetUser(userID)
	migration, err := s.reconcile(ctx)
	if err != nil {
		s.logger.Warn("sync failed, using local data", zap.String("user", userID), zap.Error(err))
		s.switchTo(s.local)
		return SignInResult{Migration: MigrationNone, Warning: err}, nil
	}

	s.switchTo(s.remote)
	s.logger.Info("signed in", zap.String("user", userID), zap.String("migration", string(migration)))
	return SignInResult{Migration: migration}, nil
}

// Resume makes the remote store active for userID without reconciling. It is
// used when a sign-in from an earlier session is restored.
func (s *SyncService) Resume(userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	s.signMu.Lock()
	defer s.signMu.Unlock()

	s.remote.SetUser(userID)
	s.switchTo(s.remote)
	return nil
}

// SignOut makes the local store active. No data is moved.
func (s *SyncService) SignOut() {
	s.signMu.Lock()
	defer s.signMu.Unlock()

	s.switchTo(s.local)
	s.remote.SetUser("")
	s.logger.Info("signed out")
}

func (s *SyncService) reconcile(ctx context.Context) (Migration, error) {
	hasLocal, err := s.local.HasData(ctx)
	if err != nil {
		return MigrationNone, fmt.Errorf("check local data: %w", err)
	}
	if !hasLocal {
		return MigrationNone, nil
	}

	hasRemote, err := s.remote.HasData(ctx)
	if err != nil {
		return MigrationNone, fmt.Errorf("check remote data: %w", err)
	}

	if hasRemote {
		snap, err := s.remote.Snapshot(ctx)
		if err != nil {
			return MigrationNone, fmt.Errorf("download: %w", err)
		}
		if err := s.local.Import(ctx, snap.Normalized()); err != nil {
			return MigrationNone, fmt.Errorf("download: %w", err)
		}
		return MigrationDownload, nil
	}

	snap, err := s.local.Snapshot(ctx)
	if err != nil {
		return MigrationNone, fmt.Errorf("upload: %w", err)
	}
	if err := s.remote.Import(ctx, snap.Normalized()); err != nil {
		return MigrationNone, fmt.Errorf("upload: %w", err)
	}
	return MigrationUpload, nil
}
