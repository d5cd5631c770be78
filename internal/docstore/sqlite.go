package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // driver: sqlite
)

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS documents (
  kind TEXT NOT NULL,
  name TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  PRIMARY KEY (kind, name)
);
`

// SQLite stores documents in a single table using the JSON1 functions.
// Intended for offline/local development.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database at dsn and ensures the schema exists.
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQLite); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Insert(ctx context.Context, kind string, v any) (Key, error) {
	key := Key{Kind: kind, Name: uuid.NewString()}
	if err := validateKey(key); err != nil {
		return Key{}, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Key{}, fmt.Errorf("encode %s: %w", kind, err)
	}

	now := time.Now().UnixNano()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (kind, name, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		key.Kind, key.Name, string(data), now, now,
	)
	if err != nil {
		return Key{}, fmt.Errorf("insert %s: %w", kind, err)
	}
	return key, nil
}

func (s *SQLite) Put(ctx context.Context, key Key, v any) error {
	if err := validateKey(key); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	now := time.Now().UnixNano()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (kind, name, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (kind, name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key.Kind, key.Name, string(data), now, now,
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key Key) (Document, error) {
	var data string
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT data, created_at FROM documents WHERE kind = ? AND name = ?`,
		key.Kind, key.Name,
	).Scan(&data, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s: %w", key, err)
	}
	return Document{Key: key, Data: json.RawMessage(data), CreatedAt: time.Unix(0, created)}, nil
}

func (s *SQLite) Query(ctx context.Context, kind string, filters ...Filter) ([]Document, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(`SELECT name, data, created_at FROM documents WHERE kind = ?`)
	args := []any{kind}
	for _, f := range filters {
		b.WriteString(` AND json_extract(data, ?) = ?`)
		args = append(args, "$."+f.Field, f.Value)
	}
	b.WriteString(` ORDER BY created_at, rowid`)

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var name, data string
		var created int64
		if err := rows.Scan(&name, &data, &created); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		docs = append(docs, Document{
			Key:       Key{Kind: kind, Name: name},
			Data:      json.RawMessage(data),
			CreatedAt: time.Unix(0, created),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}
	return docs, nil
}

func (s *SQLite) Delete(ctx context.Context, key Key) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE kind = ? AND name = ?`,
		key.Kind, key.Name,
	); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
