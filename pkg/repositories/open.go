package repositories

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Open picks a backend from the scheme of databaseURL:
// file://<path>, sqlite://<path>, postgres:// or postgresql://.
// migrationsDir holds one subdirectory of migrations per SQL backend.
func Open(ctx context.Context, databaseURL string, migrationsDir string) (SnapshotRepository, error) {
	scheme, rest, ok := strings.Cut(databaseURL, "://")
	if !ok {
		return nil, fmt.Errorf("database url %q has no scheme", databaseURL)
	}

	var repository SnapshotRepository
	var err error
	switch scheme {
	case "file":
		repository, err = asSnapshotRepository(NewFileRepository(rest))
	case "sqlite", "sqlite3":
		repository, err = asSnapshotRepository(NewSQLiteRepository(ctx, rest, filepath.Join(migrationsDir, "sqlite")))
	case "postgres", "postgresql":
		repository, err = asSnapshotRepository(NewPostgresRepository(ctx, databaseURL, filepath.Join(migrationsDir, "postgres")))
	default:
		return nil, fmt.Errorf("unsupported database scheme: %s", scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s repository: %v", scheme, err)
	}
	return repository, nil
}

// asSnapshotRepository keeps a failed constructor from yielding a non-nil
// interface around a nil pointer.
func asSnapshotRepository[R SnapshotRepository](r R, err error) (SnapshotRepository, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}
