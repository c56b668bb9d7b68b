package workers

import (
	"context"
	"sync"
	"time"

	"github.com/cbodonnell/tycoon/pkg/game/types"
	"github.com/cbodonnell/tycoon/pkg/log"
	"github.com/cbodonnell/tycoon/pkg/repositories"
)

// FlushTimeout bounds the final save when the worker stops.
const FlushTimeout = 5 * time.Second

// SnapshotSource produces the state to persist.
type SnapshotSource interface {
	Snapshot() *types.RegistrySnapshot
}

type SaveGameStateWorker struct {
	repository repositories.SnapshotRepository
	source     SnapshotSource
	requests   chan struct{}
	interval   time.Duration
	saveLock   sync.Mutex
}

type NewSaveGameStateWorkerOptions struct {
	Repository repositories.SnapshotRepository
	Source     SnapshotSource
	// Interval adds a periodic save on top of requested ones. Zero disables it.
	Interval time.Duration
}

// NewSaveGameStateWorker creates a new SaveGameStateWorker.
// The worker is the only writer of snapshots. Requests made while a save is
// pending collapse into one save of the latest state.
func NewSaveGameStateWorker(opts NewSaveGameStateWorkerOptions) *SaveGameStateWorker {
	return &SaveGameStateWorker{
		repository: opts.Repository,
		source:     opts.Source,
		requests:   make(chan struct{}, 1),
		interval:   opts.Interval,
	}
}

// RequestSnapshot asks for a save without blocking.
func (w *SaveGameStateWorker) RequestSnapshot() {
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

// Start runs until ctx is done, then writes a final snapshot.
func (w *SaveGameStateWorker) Start(ctx context.Context) {
	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), FlushTimeout)
			if err := w.Save(flushCtx); err != nil {
				log.Error("Failed to flush game state: %v", err)
			} else {
				log.Info("Flushed game state")
			}
			cancel()
			return
		case <-w.requests:
			w.saveGameState(ctx)
		case <-tick:
			w.saveGameState(ctx)
		}
	}
}

func (w *SaveGameStateWorker) saveGameState(ctx context.Context) {
	if err := w.Save(ctx); err != nil {
		log.Error("Failed to save game state: %v", err)
	}
}

// Save writes the current state immediately.
func (w *SaveGameStateWorker) Save(ctx context.Context) error {
	w.saveLock.Lock()
	defer w.saveLock.Unlock()

	snapshot := w.source.Snapshot()
	if err := w.repository.SaveSnapshot(ctx, snapshot); err != nil {
		return err
	}
	log.Trace("Saved snapshot of %d rooms", len(snapshot.Rooms))
	return nil
}
