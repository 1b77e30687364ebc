package csvbackend

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/FranksOps/leadscout/internal/contact"
	"github.com/FranksOps/leadscout/internal/storage"
)

// ensure csvBackend implements storage.Backend
var _ storage.Backend = (*csvBackend)(nil)

type csvBackend struct {
	mu   sync.Mutex
	file *os.File
}

// headers defines the CSV column order
var headers = []string{
	"id",
	"run_id",
	"topic",
	"position",
	"email",
	"source_title",
	"source_link",
	"context",
	"origin",
	"synthetic",
	"created_at",
}

// New creates a CSV-backed storage.Backend. A header row is written to new files.
func New(filePath string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open csv store: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat csv store: %w", err)
	}

	if info.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(headers); err != nil {
			f.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
	}

	return &csvBackend{file: f}, nil
}

func toRow(e *storage.Entry) []string {
	return []string{
		e.ID,
		e.RunID,
		e.Topic,
		strconv.Itoa(e.Position),
		e.Record.Email,
		e.Record.SourceTitle,
		e.Record.SourceLink,
		e.Record.Context,
		string(e.Record.Origin),
		strconv.FormatBool(e.Record.Synthetic),
		e.CreatedAt.Format(time.RFC3339Nano),
	}
}

func fromRow(row []string) *storage.Entry {
	position, _ := strconv.Atoi(row[3])
	synthetic, _ := strconv.ParseBool(row[9])
	createdAt, _ := time.Parse(time.RFC3339Nano, row[10])
	return &storage.Entry{
		ID:       row[0],
		RunID:    row[1],
		Topic:    row[2],
		Position: position,
		Record: contact.Record{
			Email:       row[4],
			SourceTitle: row[5],
			SourceLink:  row[6],
			Context:     row[7],
			Origin:      contact.Origin(row[8]),
			Synthetic:   synthetic,
		},
		CreatedAt: createdAt,
	}
}

func (b *csvBackend) Save(ctx context.Context, entry *storage.Entry) error {
	return b.SaveBatch(ctx, []*storage.Entry{entry})
}

// SaveBatch writes all rows with a single flush.
func (b *csvBackend) SaveBatch(ctx context.Context, entries []*storage.Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek csv store: %w", err)
	}

	w := csv.NewWriter(b.file)
	for _, e := range entries {
		if err := w.Write(toRow(e)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv store: %w", err)
	}
	return nil
}

func (b *csvBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind csv store: %w", err)
	}
	defer func() {
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	r := csv.NewReader(b.file)
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return []*storage.Entry{}, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var matched []*storage.Entry
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if len(row) != len(headers) {
			continue // skip malformed rows
		}
		if e := fromRow(row); filter.Match(e) {
			matched = append(matched, e)
		}
	}

	return storage.Page(matched, filter), nil
}

func (b *csvBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
