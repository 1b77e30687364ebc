package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/FranksOps/leadscout/internal/contact"
	"github.com/FranksOps/leadscout/internal/storage"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	topic TEXT NOT NULL,
	position INTEGER NOT NULL,
	email TEXT NOT NULL,
	source_title TEXT NOT NULL,
	source_link TEXT NOT NULL,
	context TEXT NOT NULL,
	origin TEXT NOT NULL,
	synthetic BOOLEAN NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS contacts_run_id ON contacts (run_id);
`

const insertEntry = `
INSERT INTO contacts (
	id, run_id, topic, position, email, source_title, source_link, context, origin, synthetic, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// New creates a SQLite-backed storage.Backend.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, x execer, e *storage.Entry) error {
	_, err := x.ExecContext(ctx, insertEntry,
		e.ID,
		e.RunID,
		e.Topic,
		e.Position,
		e.Record.Email,
		e.Record.SourceTitle,
		e.Record.SourceLink,
		e.Record.Context,
		string(e.Record.Origin),
		e.Record.Synthetic,
		e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", e.Record.Email, err)
	}
	return nil
}

func (b *sqliteBackend) Save(ctx context.Context, entry *storage.Entry) error {
	return insert(ctx, b.db, entry)
}

// SaveBatch inserts entries in one transaction.
func (b *sqliteBackend) SaveBatch(ctx context.Context, entries []*storage.Entry) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, e := range entries {
		if err := insert(ctx, tx, e); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (b *sqliteBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Entry, error) {
	query := `SELECT id, run_id, topic, position, email, source_title, source_link, context, origin, synthetic, created_at FROM contacts WHERE 1=1`
	args := []any{}

	if filter.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, filter.RunID)
	}
	if filter.Topic != "" {
		query += ` AND topic = ?`
		args = append(args, filter.Topic)
	}
	if filter.Synthetic != nil {
		query += ` AND synthetic = ?`
		args = append(args, *filter.Synthetic)
	}
	if filter.Since != nil {
		// Timestamps are stored as text, so both sides must share a zone to compare.
		query += ` AND created_at >= ?`
		args = append(args, filter.Since.UTC())
	}

	query += ` ORDER BY created_at DESC, position ASC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var results []*storage.Entry
	for rows.Next() {
		var e storage.Entry
		var origin string
		err := rows.Scan(
			&e.ID, &e.RunID, &e.Topic, &e.Position, &e.Record.Email, &e.Record.SourceTitle,
			&e.Record.SourceLink, &e.Record.Context, &origin, &e.Record.Synthetic, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		e.Record.Origin = contact.Origin(origin)
		results = append(results, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}

	return results, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
