package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PostgresSchema creates the shared JSONB table backing every collection.
const PostgresSchema = `CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	body JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
)`

const (
	pgListSQL    = `SELECT body FROM documents WHERE collection = $1 ORDER BY created_at, id`
	pgGetSQL     = `SELECT body FROM documents WHERE collection = $1 AND id = $2`
	pgFindSQL    = `SELECT body FROM documents WHERE collection = $1 AND body->>$2 = $3 ORDER BY created_at, id LIMIT 1`
	pgInsertSQL  = `INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3)`
	pgReplaceSQL = `UPDATE documents SET body = $3 WHERE collection = $1 AND id = $2`
	pgDeleteSQL  = `DELETE FROM documents WHERE collection = $1 AND id = $2`
)

// EnsurePostgresSchema applies PostgresSchema.
func EnsurePostgresSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("docstore: ensure schema: %w", err)
	}
	return nil
}

// PostgresCollection stores documents as JSONB rows keyed by collection and id.
type PostgresCollection[T Document[T]] struct {
	db   *sql.DB
	name string
}

// NewPostgresCollection binds a collection name to the documents table.
func NewPostgresCollection[T Document[T]](db *sql.DB, name string) *PostgresCollection[T] {
	return &PostgresCollection[T]{db: db, name: name}
}

func (c *PostgresCollection[T]) List(ctx context.Context) ([]T, error) {
	rows, err := c.db.QueryContext(ctx, pgListSQL, c.name)
	if err != nil {
		return nil, fmt.Errorf("docstore: list %s: %w", c.name, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("docstore: scan %s: %w", c.name, err)
		}
		var doc T
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("docstore: decode %s: %w", c.name, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("docstore: list %s: %w", c.name, err)
	}
	return out, nil
}

func (c *PostgresCollection[T]) Get(ctx context.Context, id string) (T, error) {
	return c.queryOne(ctx, "get", pgGetSQL, c.name, id)
}

func (c *PostgresCollection[T]) FindOne(ctx context.Context, field, value string) (T, error) {
	if err := validField(field); err != nil {
		var zero T
		return zero, err
	}
	return c.queryOne(ctx, "find", pgFindSQL, c.name, field, value)
}

func (c *PostgresCollection[T]) queryOne(ctx context.Context, op, query string, args ...any) (T, error) {
	var zero T
	var body []byte
	err := c.db.QueryRowContext(ctx, query, args...).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("docstore: %s %s: %w", op, c.name, err)
	}
	var doc T
	if err := json.Unmarshal(body, &doc); err != nil {
		return zero, fmt.Errorf("docstore: decode %s: %w", c.name, err)
	}
	return doc, nil
}

func (c *PostgresCollection[T]) Insert(ctx context.Context, doc T) (T, error) {
	var zero T
	id := doc.DocID()
	if id == "" {
		id = uuid.NewString()
	}
	doc = doc.WithDocID(id)
	body, err := json.Marshal(doc)
	if err != nil {
		return zero, fmt.Errorf("docstore: encode %s: %w", c.name, err)
	}
	if _, err := c.db.ExecContext(ctx, pgInsertSQL, c.name, id, body); err != nil {
		return zero, fmt.Errorf("docstore: insert %s: %w", c.name, err)
	}
	return doc, nil
}

func (c *PostgresCollection[T]) Replace(ctx context.Context, id string, doc T) error {
	body, err := json.Marshal(doc.WithDocID(id))
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", c.name, err)
	}
	res, err := c.db.ExecContext(ctx, pgReplaceSQL, c.name, id, body)
	if err != nil {
		return fmt.Errorf("docstore: replace %s: %w", c.name, err)
	}
	return affectedOne(res, "replace", c.name)
}

func (c *PostgresCollection[T]) Delete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, pgDeleteSQL, c.name, id)
	if err != nil {
		return fmt.Errorf("docstore: delete %s: %w", c.name, err)
	}
	return affectedOne(res, "delete", c.name)
}

func (c *PostgresCollection[T]) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func affectedOne(res sql.Result, op, name string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("docstore: %s %s: %w", op, name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
