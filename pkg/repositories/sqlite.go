package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gametypes "github.com/cbodonnell/tycoon/pkg/game/types"
	"github.com/cbodonnell/tycoon/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

var _ Repository = &SQLiteRepository{}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string, migrations string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// a single connection keeps writes serialized and lets ":memory:" work
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := runMigrations(ctx, db, migrations); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func runMigrations(ctx context.Context, db *sql.DB, migrations string) error {
	dir, err := os.ReadDir(migrations)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %v", err)
	}

	for _, entry := range dir {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		migrationPath := filepath.Join(migrations, entry.Name())
		migration, err := os.ReadFile(migrationPath)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}

		if _, err := db.ExecContext(ctx, string(migration)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %v", migrationPath, err)
		}
	}

	return nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, snapshot *gametypes.RegistrySnapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	q := `
	INSERT OR REPLACE INTO registry_snapshots (id, taken_at, data)
	VALUES (1, ?, ?);
	`
	if _, err := r.db.ExecContext(ctx, q, snapshot.Timestamp, string(data)); err != nil {
		return fmt.Errorf("failed to save snapshot: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) LoadSnapshot(ctx context.Context) (*gametypes.RegistrySnapshot, error) {
	q := `
	SELECT data FROM registry_snapshots WHERE id = 1;
	`
	var data string
	if err := r.db.QueryRowContext(ctx, q).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan snapshot: %v", err)
	}

	return decodeSnapshot([]byte(data))
}

func (r *SQLiteRepository) LookupLobby(ctx context.Context, code string) (*models.Lobby, error) {
	q := `
	SELECT code, admin_identity, starting_balance, created_at FROM lobbies WHERE code = ?;
	`
	lobby := &models.Lobby{}
	var createdAt int64
	err := r.db.QueryRowContext(ctx, q, code).Scan(&lobby.Code, &lobby.AdminIdentity, &lobby.StartingBalance, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan lobby: %v", err)
	}
	lobby.CreatedAt = time.UnixMilli(createdAt)

	return lobby, nil
}

func (r *SQLiteRepository) SaveLobby(ctx context.Context, lobby *models.Lobby) error {
	q := `
	INSERT OR REPLACE INTO lobbies (code, admin_identity, starting_balance, created_at)
	VALUES (?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q, lobby.Code, lobby.AdminIdentity, lobby.StartingBalance, lobby.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save lobby: %v", err)
	}

	return nil
}
