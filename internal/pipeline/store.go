package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/FranksOps/leadscout/internal/storage"
	"github.com/FranksOps/leadscout/internal/storage/csvbackend"
	"github.com/FranksOps/leadscout/internal/storage/jsonbackend"
	"github.com/FranksOps/leadscout/internal/storage/postgres"
	"github.com/FranksOps/leadscout/internal/storage/sqlite"
)

// Store kinds accepted by OpenStore.
const (
	StoreJSON     = "json"
	StoreCSV      = "csv"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// OpenStore opens the export backend named by kind. dsn is a file path for the
// file and sqlite backends and a connection string for postgres.
func OpenStore(ctx context.Context, kind, dsn string) (storage.Backend, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("store %s: dsn is required", kind)
	}
	switch strings.ToLower(kind) {
	case StoreJSON, "ndjson":
		return jsonbackend.New(dsn)
	case StoreCSV:
		return csvbackend.New(dsn)
	case StoreSQLite:
		return sqlite.New(dsn)
	case StorePostgres:
		return postgres.New(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store %q (want json, csv, sqlite or postgres)", kind)
	}
}
