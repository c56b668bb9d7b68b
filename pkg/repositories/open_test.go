package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json.zst")

	repository, err := Open(context.Background(), "file://"+path, "")
	require.NoError(t, err)
	defer repository.Close(context.Background())

	assert.IsType(t, &FileRepository{}, repository)
	_, isDirectory := repository.(LobbyDirectory)
	assert.False(t, isDirectory)
}

func TestOpen_Invalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "no scheme", url: "state.json"},
		{name: "unknown scheme", url: "redis://localhost:6379"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repository, err := Open(context.Background(), tt.url, "")
			assert.Error(t, err)
			assert.Nil(t, repository)
		})
	}
}
