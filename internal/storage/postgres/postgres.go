package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FranksOps/leadscout/internal/contact"
	"github.com/FranksOps/leadscout/internal/storage"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
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
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS contacts_run_id ON contacts (run_id);
`

const insertEntry = `
INSERT INTO contacts (
	id, run_id, topic, position, email, source_title, source_link, context, origin, synthetic, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// New creates a Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create postgres schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func args(e *storage.Entry) []any {
	return []any{
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
		e.CreatedAt,
	}
}

func (b *postgresBackend) Save(ctx context.Context, entry *storage.Entry) error {
	if _, err := b.pool.Exec(ctx, insertEntry, args(entry)...); err != nil {
		return fmt.Errorf("insert %s: %w", entry.Record.Email, err)
	}
	return nil
}

// SaveBatch sends every insert in one round trip inside a transaction.
func (b *postgresBackend) SaveBatch(ctx context.Context, entries []*storage.Entry) error {
	return pgx.BeginFunc(ctx, b.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range entries {
			batch.Queue(insertEntry, args(e)...)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}
		return nil
	})
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Entry, error) {
	query := `SELECT id, run_id, topic, position, email, source_title, source_link, context, origin, synthetic, created_at FROM contacts WHERE 1=1`
	params := []any{}
	paramCount := 1

	if filter.RunID != "" {
		query += fmt.Sprintf(` AND run_id = $%d`, paramCount)
		params = append(params, filter.RunID)
		paramCount++
	}
	if filter.Topic != "" {
		query += fmt.Sprintf(` AND topic = $%d`, paramCount)
		params = append(params, filter.Topic)
		paramCount++
	}
	if filter.Synthetic != nil {
		query += fmt.Sprintf(` AND synthetic = $%d`, paramCount)
		params = append(params, *filter.Synthetic)
		paramCount++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND created_at >= $%d`, paramCount)
		params = append(params, *filter.Since)
		paramCount++
	}

	query += ` ORDER BY created_at DESC, position ASC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		params = append(params, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		params = append(params, filter.Offset)
	}

	rows, err := b.pool.Query(ctx, query, params...)
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

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
