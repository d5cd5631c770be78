package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores documents in a JSONB table created by the db migrations.
type Postgres struct {
	db *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres creates a store on the given connection pool.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Insert(ctx context.Context, kind string, v any) (Key, error) {
	key := Key{Kind: kind, Name: uuid.NewString()}
	data, err := json.Marshal(v)
	if err != nil {
		return Key{}, fmt.Errorf("encode %s: %w", kind, err)
	}
	if err := validateKey(key); err != nil {
		return Key{}, err
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO documents (kind, name, data) VALUES ($1, $2, $3)`,
		key.Kind, key.Name, string(data),
	)
	if err != nil {
		return Key{}, fmt.Errorf("insert %s: %w", kind, err)
	}
	return key, nil
}

func (s *Postgres) Put(ctx context.Context, key Key, v any) error {
	if err := validateKey(key); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO documents (kind, name, data) VALUES ($1, $2, $3)
		 ON CONFLICT (kind, name) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		key.Kind, key.Name, string(data),
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, key Key) (Document, error) {
	doc := Document{Key: key}
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT data, created_at FROM documents WHERE kind = $1 AND name = $2`,
		key.Kind, key.Name,
	).Scan(&data, &doc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s: %w", key, err)
	}
	doc.Data = data
	return doc, nil
}

func (s *Postgres) Query(ctx context.Context, kind string, filters ...Filter) ([]Document, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(`SELECT name, data, created_at FROM documents WHERE kind = $1`)
	args := []any{kind}
	for _, f := range filters {
		args = append(args, f.Value)
		fmt.Fprintf(&b, ` AND %s = $%d`, jsonField(f.Field), len(args))
	}
	b.WriteString(` ORDER BY created_at, name`)

	rows, err := s.db.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc := Document{Key: Key{Kind: kind}}
		var data []byte
		if err := rows.Scan(&doc.Key.Name, &data, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		doc.Data = data
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}
	return docs, nil
}

func (s *Postgres) Delete(ctx context.Context, key Key) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx,
		`DELETE FROM documents WHERE kind = $1 AND name = $2`,
		key.Kind, key.Name,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// jsonField renders the ->> expression for a validated field name as a
// literal, so it matches the expression indexes in the migrations.
func jsonField(field string) string {
	return "data->>'" + field + "'"
}
