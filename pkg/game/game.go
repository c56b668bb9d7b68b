package game

import (
	"context"
	"time"

	"github.com/cbodonnell/tycoon/pkg/game/constants"
	"github.com/cbodonnell/tycoon/pkg/game/types"
	"github.com/cbodonnell/tycoon/pkg/log"
	"github.com/cbodonnell/tycoon/pkg/messages"
	"github.com/cbodonnell/tycoon/pkg/network"
	"github.com/cbodonnell/tycoon/pkg/repositories"
)

// SnapshotRequester is signalled after every mutation.
type SnapshotRequester interface {
	RequestSnapshot()
}

// SnapshotLoader reads the last persisted registry.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (*types.RegistrySnapshot, error)
}

type GameManager struct {
	registry        *Registry
	network         *network.NetworkManager
	snapshots       SnapshotRequester
	loader          SnapshotLoader
	dice            Dice
	botPolicy       BotPolicy
	botTurnInterval time.Duration
}

// NewGameManagerOptions contains options for creating a new GameManager.
type NewGameManagerOptions struct {
	Registry          *Registry
	NetworkManager    *network.NetworkManager
	SnapshotRequester SnapshotRequester
	SnapshotLoader    SnapshotLoader
	// Dice and BotPolicy default to uniform random rolls and a 70% buy chance
	Dice            Dice
	BotPolicy       BotPolicy
	BotTurnInterval time.Duration
}

func NewGameManager(opts NewGameManagerOptions) *GameManager {
	gm := &GameManager{
		registry:        opts.Registry,
		network:         opts.NetworkManager,
		snapshots:       opts.SnapshotRequester,
		loader:          opts.SnapshotLoader,
		dice:            opts.Dice,
		botPolicy:       opts.BotPolicy,
		botTurnInterval: opts.BotTurnInterval,
	}
	if gm.dice == nil {
		gm.dice = RandomDice{}
	}
	if gm.botPolicy == nil {
		gm.botPolicy = NewRandomBotPolicy()
	}
	if gm.botTurnInterval <= 0 {
		gm.botTurnInterval = constants.BotTurnInterval
	}
	return gm
}

func (gm *GameManager) Registry() *Registry {
	return gm.registry
}

// LoadState hydrates the registry from the last snapshot. It must run
// before any client traffic. A missing or unreadable snapshot leaves the
// registry empty.
func (gm *GameManager) LoadState(ctx context.Context) int {
	if gm.loader == nil {
		return 0
	}
	snapshot, err := gm.loader.LoadSnapshot(ctx)
	if err != nil {
		if repositories.IsNotFound(err) {
			log.Info("No saved game state found, starting empty")
		} else {
			log.Error("Failed to load game state, starting empty: %v", err)
		}
		return 0
	}
	restored := gm.registry.Restore(snapshot)
	log.Info("Restored %d rooms from saved game state", restored)
	return restored
}

// Start runs the bot turn scheduler until ctx is done.
func (gm *GameManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(gm.botTurnInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			gm.processBotTurns()
		}
	}
}

// processBotTurns plays at most one bot turn per room and returns the
// number of turns played.
func (gm *GameManager) processBotTurns() int {
	played := 0
	for _, room := range gm.registry.Rooms() {
		if gm.playBotTurn(room) {
			played++
		}
	}
	return played
}

func (gm *GameManager) playBotTurn(room *Room) (played bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Bot turn in room %s panicked: %v", room.ID(), r)
			played = false
		}
	}()

	turn, ok := room.PlayBotTurn(gm.dice, gm.botPolicy)
	if !ok {
		return false
	}
	log.Debug("Bot %s rolled %d in room %s (bought %d, rent %d)", turn.BotID, turn.Dice, room.ID(), turn.BoughtTileID, turn.RentPaid)
	gm.afterMutation(room)
	return true
}

// afterMutation persists and broadcasts the room.
func (gm *GameManager) afterMutation(room *Room) {
	if gm.snapshots != nil {
		gm.snapshots.RequestSnapshot()
	}
	gm.broadcastRoomState(room)
}

// broadcastRoomState enqueues the room's state under the room lock. The
// enqueue never blocks, and the last state a client receives is the latest.
func (gm *GameManager) broadcastRoomState(room *Room) {
	if gm.network == nil {
		return
	}
	room.Publish(func(s *types.RoomSnapshot) {
		msg, err := messages.NewMessage(messages.MessageTypeServerState, ServerStateFromSnapshot(s))
		if err != nil {
			log.Error("Failed to build state for room %s: %v", room.ID(), err)
			return
		}
		gm.network.BroadcastMessageToRoom(room.ID(), msg)
	})
}

// CreateLobby creates a room with adminIdentity reserved as its admin.
func (gm *GameManager) CreateLobby(adminIdentity string) (string, error) {
	code, err := gm.registry.CreateLobby(adminIdentity)
	if err != nil {
		return "", err
	}
	if gm.snapshots != nil {
		gm.snapshots.RequestSnapshot()
	}
	return code, nil
}

// ReserveAdmin reserves adminIdentity as the pending admin of roomID.
func (gm *GameManager) ReserveAdmin(ctx context.Context, roomID string, adminIdentity string) bool {
	reserved := gm.registry.ReserveAdmin(ctx, roomID, adminIdentity)
	if reserved && gm.snapshots != nil {
		gm.snapshots.RequestSnapshot()
	}
	return reserved
}

// RoomState returns the broadcast view of an existing room.
func (gm *GameManager) RoomState(roomID string) (*messages.ServerState, bool) {
	room, ok := gm.registry.GetRoom(roomID)
	if !ok {
		return nil, false
	}
	return ServerStateFromSnapshot(room.Snapshot()), true
}

// ChargeRent settles rent owed by participantID for tileID in roomID.
func (gm *GameManager) ChargeRent(roomID string, participantID string, tileID int) (int, error) {
	room, ok := gm.registry.GetRoom(roomID)
	if !ok {
		return 0, ErrNoRoom
	}
	amount, err := room.ChargeRent(participantID, tileID)
	if err != nil {
		return 0, err
	}
	if amount > 0 {
		gm.afterMutation(room)
	}
	return amount, nil
}
