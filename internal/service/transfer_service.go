package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"practice-planner/internal/logging"
	"practice-planner/internal/model"
)

// Format is an export file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the encoding from a file extension; unknown extensions are JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Encode writes snap in the given format.
func Encode(w io.Writer, snap model.Snapshot, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(snap)
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidInput, format)
	}
}

// Decode reads a snapshot. Collections missing from the input stay nil.
func Decode(r io.Reader, format Format) (model.Snapshot, error) {
	var snap model.Snapshot
	var err error
	switch format {
	case FormatJSON, "":
		err = json.NewDecoder(r).Decode(&snap)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&snap)
	case FormatTOML:
		snap, err = decodeTOML(r)
	default:
		return snap, fmt.Errorf("%w: unknown format %q", ErrInvalidInput, format)
	}
	if err != nil {
		return snap, fmt.Errorf("decode %s: %w", format, err)
	}
	return snap, nil
}

// decodeTOML decodes a snapshot and marks every top-level table or array that
// is present as a collection, since go-toml leaves empty tables as nil maps.
func decodeTOML(r io.Reader) (model.Snapshot, error) {
	var snap model.Snapshot
	data, err := io.ReadAll(r)
	if err != nil {
		return snap, err
	}
	if err := toml.Unmarshal(data, &snap); err != nil {
		return snap, err
	}
	var keys map[string]any
	if err := toml.Unmarshal(data, &keys); err != nil {
		return snap, err
	}
	if _, ok := keys["items"]; ok && snap.Items == nil {
		snap.Items = []model.Item{}
	}
	if _, ok := keys["categories"]; ok && snap.Categories == nil {
		snap.Categories = []model.Category{}
	}
	if _, ok := keys["completions"]; ok && snap.Completions == nil {
		snap.Completions = model.Completions{}
	}
	return snap, nil
}

// TransferService exports and imports whole data sets on the active store.
type TransferService struct {
	stores StoreProvider
	now    func() time.Time
	logger *zap.Logger
}

func NewTransferService(stores StoreProvider, logger *zap.Logger) *TransferService {
	return &TransferService{stores: stores, now: time.Now, logger: logging.OrNop(logger).Named("transfer")}
}

// Export returns every collection stamped with the export time.
func (s *TransferService) Export(ctx context.Context) (model.Snapshot, error) {
	snap, err := s.stores.Store().Snapshot(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	snap = snap.Normalized()
	snap.ExportDate = s.now().UTC().Format(time.RFC3339)
	return snap, nil
}

// Import replaces each collection present in snap; absent ones are untouched.
func (s *TransferService) Import(ctx context.Context, snap model.Snapshot) error {
	snap.ExportDate = ""
	return s.stores.Store().Import(ctx, snap)
}

func (s *TransferService) ExportFile(ctx context.Context, path string) (model.Snapshot, error) {
	snap, err := s.Export(ctx)
	if err != nil {
		return snap, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return snap, fmt.Errorf("create export dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return snap, fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := Encode(f, snap, FormatFromPath(path)); err != nil {
		return snap, fmt.Errorf("write export: %w", err)
	}
	s.logger.Info("exported", zap.String("path", path), zap.Int("items", len(snap.Items)))
	return snap, f.Close()
}

func (s *TransferService) ImportFile(ctx context.Context, path string) (model.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	snap, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return snap, err
	}
	if err := s.Import(ctx, snap); err != nil {
		return snap, err
	}
	s.logger.Info("imported", zap.String("path", path), zap.Int("items", len(snap.Items)))
	return snap, nil
}
