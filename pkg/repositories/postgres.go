package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gametypes "github.com/cbodonnell/tycoon/pkg/game/types"
	"github.com/cbodonnell/tycoon/pkg/log"
	"github.com/cbodonnell/tycoon/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Repository = &PostgresRepository{}

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to the database and applies migrations.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string, migrations string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %v", err)
	}

	var username string
	var database string
	err = pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to query database: %v", err)
	}
	log.Info("Connected to %s as %s", database, username)

	r := &PostgresRepository{
		pool: pool,
	}
	if err := r.migrate(ctx, migrations); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) migrate(ctx context.Context, migrations string) error {
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

		if _, err := r.pool.Exec(ctx, string(migration)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %v", migrationPath, err)
		}
	}

	return nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) SaveSnapshot(ctx context.Context, snapshot *gametypes.RegistrySnapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	q := `
	INSERT INTO registry_snapshots (id, taken_at, data) VALUES (1, $1, $2)
	ON CONFLICT (id) DO UPDATE SET taken_at = $1, data = $2;
	`
	if _, err := tx.Exec(ctx, q, snapshot.Timestamp, string(data)); err != nil {
		return fmt.Errorf("failed to save snapshot: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *PostgresRepository) LoadSnapshot(ctx context.Context) (*gametypes.RegistrySnapshot, error) {
	q := `
	SELECT data::text FROM registry_snapshots WHERE id = 1;
	`
	var data string
	if err := r.pool.QueryRow(ctx, q).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan snapshot: %v", err)
	}

	return decodeSnapshot([]byte(data))
}

func (r *PostgresRepository) LookupLobby(ctx context.Context, code string) (*models.Lobby, error) {
	q := `
	SELECT code, admin_identity, starting_balance, created_at FROM lobbies WHERE code = $1;
	`
	lobby := &models.Lobby{}
	err := r.pool.QueryRow(ctx, q, code).Scan(&lobby.Code, &lobby.AdminIdentity, &lobby.StartingBalance, &lobby.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan lobby: %v", err)
	}

	return lobby, nil
}

func (r *PostgresRepository) SaveLobby(ctx context.Context, lobby *models.Lobby) error {
	q := `
	INSERT INTO lobbies (code, admin_identity, starting_balance, created_at) VALUES ($1, $2, $3, $4)
	ON CONFLICT (code) DO UPDATE SET admin_identity = $2, starting_balance = $3;
	`
	_, err := r.pool.Exec(ctx, q, lobby.Code, lobby.AdminIdentity, lobby.StartingBalance, lobby.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save lobby: %v", err)
	}

	return nil
}
