package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/cbodonnell/tycoon/pkg/repositories/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteRepository(t *testing.T) *SQLiteRepository {
	repo, err := NewSQLiteRepository(context.Background(), ":memory:", "../../migrations/sqlite")
	if err != nil {
		// go-sqlite3 needs cgo
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { repo.Close(context.Background()) })
	return repo
}

func TestSQLiteRepository_Snapshot(t *testing.T) {
	ctx := context.Background()
	repo := newTestSQLiteRepository(t)

	_, err := repo.LoadSnapshot(ctx)
	assert.True(t, IsNotFound(err))

	want := testSnapshot()
	require.NoError(t, repo.SaveSnapshot(ctx, want))
	require.NoError(t, repo.SaveSnapshot(ctx, want))

	got, err := repo.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSQLiteRepository_Lobby(t *testing.T) {
	ctx := context.Background()
	repo := newTestSQLiteRepository(t)

	_, err := repo.LookupLobby(ctx, "654321")
	assert.True(t, IsNotFound(err))

	created := time.UnixMilli(1700000000000)
	require.NoError(t, repo.SaveLobby(ctx, &models.Lobby{
		Code:            "654321",
		AdminIdentity:   "uid-1",
		StartingBalance: 2000,
		CreatedAt:       created,
	}))

	lobby, err := repo.LookupLobby(ctx, "654321")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", lobby.AdminIdentity)
	assert.Equal(t, 2000, lobby.StartingBalance)
	assert.True(t, created.Equal(lobby.CreatedAt))
}
