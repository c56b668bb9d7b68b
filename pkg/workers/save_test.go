package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	mocks "github.com/cbodonnell/tycoon/mocks/github.com/cbodonnell/tycoon/pkg/repositories"
	"github.com/cbodonnell/tycoon/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	n atomic.Int32
}

func (s *countingSource) Snapshot() *types.RegistrySnapshot {
	n := s.n.Add(1)
	return &types.RegistrySnapshot{Timestamp: int64(n)}
}

func TestSaveGameStateWorker_Save(t *testing.T) {
	repository := mocks.NewSnapshotRepository(t)
	source := &countingSource{}
	worker := NewSaveGameStateWorker(NewSaveGameStateWorkerOptions{
		Repository: repository,
		Source:     source,
	})

	repository.EXPECT().SaveSnapshot(mock.Anything, &types.RegistrySnapshot{Timestamp: 1}).Return(nil).Once()
	require.NoError(t, worker.Save(context.Background()))

	repository.EXPECT().SaveSnapshot(mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	assert.Error(t, worker.Save(context.Background()))
}

func TestSaveGameStateWorker_RequestsAndFlush(t *testing.T) {
	repository := mocks.NewSnapshotRepository(t)
	saved := make(chan *types.RegistrySnapshot, 16)
	repository.EXPECT().SaveSnapshot(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, s *types.RegistrySnapshot) error {
			saved <- s
			return nil
		})

	worker := NewSaveGameStateWorker(NewSaveGameStateWorkerOptions{
		Repository: repository,
		Source:     &countingSource{},
	})

	// requests made before the worker runs collapse into one
	for i := 0; i < 10; i++ {
		worker.RequestSnapshot()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	select {
	case s := <-saved:
		assert.Equal(t, int64(1), s.Timestamp)
	case <-time.After(time.Second):
		t.Fatal("requested save did not happen")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}

	// the final flush writes the latest state
	require.Len(t, saved, 1)
	assert.Equal(t, int64(2), (<-saved).Timestamp)
}

func TestSaveGameStateWorker_Interval(t *testing.T) {
	repository := mocks.NewSnapshotRepository(t)
	var saves atomic.Int32
	repository.EXPECT().SaveSnapshot(mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, *types.RegistrySnapshot) error {
			saves.Add(1)
			return nil
		})

	worker := NewSaveGameStateWorker(NewSaveGameStateWorkerOptions{
		Repository: repository,
		Source:     &countingSource{},
		Interval:   5 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx)

	assert.Eventually(t, func() bool {
		return saves.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}
