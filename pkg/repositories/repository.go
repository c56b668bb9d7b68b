package repositories

import (
	"context"

	gametypes "github.com/cbodonnell/tycoon/pkg/game/types"
	"github.com/cbodonnell/tycoon/pkg/repositories/models"
)

// SnapshotRepository stores the latest registry snapshot, overwriting the previous one.
type SnapshotRepository interface {
	Close(ctx context.Context) error
	SaveSnapshot(ctx context.Context, snapshot *gametypes.RegistrySnapshot) error
	// LoadSnapshot returns *ErrNotFound when nothing has been saved yet.
	LoadSnapshot(ctx context.Context) (*gametypes.RegistrySnapshot, error)
}

// LobbyDirectory resolves lobby records by room code.
type LobbyDirectory interface {
	LookupLobby(ctx context.Context, code string) (*models.Lobby, error)
	SaveLobby(ctx context.Context, lobby *models.Lobby) error
}

// Repository is implemented by the database backends.
type Repository interface {
	SnapshotRepository
	LobbyDirectory
}
