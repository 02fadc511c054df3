// Package sqlite stores diagram documents in an embedded SQLite database
// through the pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/easel/pkg/domain"

	_ "modernc.org/sqlite"
)

//go:embed schema/0001_init.sql
var schema string

// Store implements ports.DocumentStore on SQLite. Documents are kept as
// JSON bodies keyed by id.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dsn and runs migrations.
// dsn is a file path or "file::memory:?cache=shared".
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Save(ctx context.Context, id string, doc *domain.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, kind, body, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET kind = excluded.kind, body = excluded.body, updated_at = excluded.updated_at`,
		id, string(doc.Kind), string(body), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("saving document %q: %w", id, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (*domain.Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading document %q: %w", id, err)
	}

	var doc domain.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return &doc, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting document %q: %w", id, err)
	}
	return nil
}

// List returns stored ids in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
