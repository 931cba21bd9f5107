package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"practice-planner/internal/model"
)

// DocumentClient stores one snapshot document per user key.
type DocumentClient interface {
	// Get returns nil when no document exists for key.
	Get(ctx context.Context, key string) (*model.Snapshot, error)
	// Set overwrites the document for key.
	Set(ctx context.Context, key string, doc model.Snapshot) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// SQLDocuments keeps documents as JSON text in a single table. Postgres DSNs
// use lib/pq; anything else is opened as a SQLite file.
type SQLDocuments struct {
	db     *sql.DB
	driver string
}

var _ DocumentClient = (*SQLDocuments)(nil)

const documentsDDL = `
CREATE TABLE IF NOT EXISTS practice_documents (
	user_id TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// OpenDocuments connects to the document database and ensures its schema.
func OpenDocuments(ctx context.Context, dsn string) (*SQLDocuments, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, ErrRemoteUnavailable
	}

	driver := documentsDriver(dsn)
	if driver == "sqlite3" {
		if err := ensureDirForSQLite(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open documents: %w", err)
	}
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping documents: %w", err)
	}
	if _, err := db.ExecContext(ctx, documentsDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	return &SQLDocuments{db: db, driver: driver}, nil
}

func documentsDriver(dsn string) string {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") ||
		strings.Contains(lower, "host=") {
		return "postgres"
	}
	return "sqlite3"
}

func (d *SQLDocuments) Get(ctx context.Context, key string) (*model.Snapshot, error) {
	var body string
	err := d.db.QueryRowContext(ctx,
		`SELECT body FROM practice_documents WHERE user_id = $1`, key).Scan(&body)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("get document: %w", err)
	}

	var doc model.Snapshot
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

func (d *SQLDocuments) Set(ctx context.Context, key string, doc model.Snapshot) error {
	doc.ExportDate = ""
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = d.db.ExecContext(ctx, `
INSERT INTO practice_documents (user_id, body, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		key, string(body), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set document: %w", err)
	}
	return nil
}

func (d *SQLDocuments) Delete(ctx context.Context, key string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM practice_documents WHERE user_id = $1`, key); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (d *SQLDocuments) Close() error {
	return d.db.Close()
}
