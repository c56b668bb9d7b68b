package game

import (
	"context"
	"math/rand/v2"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cbodonnell/tycoon/pkg/game/constants"
	"github.com/cbodonnell/tycoon/pkg/game/types"
	"github.com/cbodonnell/tycoon/pkg/log"
	"github.com/cbodonnell/tycoon/pkg/repositories"
	"github.com/cbodonnell/tycoon/pkg/repositories/models"
)

// LobbyLookup resolves the lobby record for a room code.
type LobbyLookup interface {
	LookupLobby(ctx context.Context, code string) (*models.Lobby, error)
}

// Registry is the process-wide table of rooms.
type Registry struct {
	rooms           sync.Map // string -> *Room
	lobbies         LobbyLookup
	layout          BoardLayout
	startingBalance int
	codeSource      func() int
}

type NewRegistryOptions struct {
	// Lobbies is optional
	Lobbies         LobbyLookup
	BoardLayout     BoardLayout
	StartingBalance int
}

func NewRegistry(opts NewRegistryOptions) *Registry {
	layout := opts.BoardLayout
	if layout == "" {
		layout = BoardLayoutClassic
	}
	startingBalance := opts.StartingBalance
	if startingBalance <= 0 {
		startingBalance = constants.DefaultStartingBalance
	}
	return &Registry{
		lobbies:         opts.Lobbies,
		layout:          layout,
		startingBalance: startingBalance,
		codeSource:      randomLobbyCode,
	}
}

func randomLobbyCode() int {
	return constants.LobbyCodeMin + rand.IntN(constants.LobbyCodeMax-constants.LobbyCodeMin+1)
}

func (r *Registry) newRoom(id string) *Room {
	return NewRoom(id, NewBoard(r.layout), r.startingBalance)
}

// GetRoom returns an existing room without creating one.
func (r *Registry) GetRoom(roomID string) (*Room, bool) {
	room, ok := r.rooms.Load(roomID)
	if !ok {
		return nil, false
	}
	return room.(*Room), true
}

// EnsureRoom returns the room for roomID, creating it on first reference.
func (r *Registry) EnsureRoom(ctx context.Context, roomID string) *Room {
	if room, ok := r.GetRoom(roomID); ok {
		return room
	}

	room := r.newRoom(roomID)
	r.hydrateFromLobby(ctx, room)

	actual, loaded := r.rooms.LoadOrStore(roomID, room)
	if !loaded {
		log.Info("Room %s created", roomID)
	}
	return actual.(*Room)
}

func (r *Registry) hydrateFromLobby(ctx context.Context, room *Room) {
	if r.lobbies == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, constants.LobbyLookupTimeout)
	defer cancel()

	lobby, err := r.lobbies.LookupLobby(ctx, room.ID())
	if err != nil {
		if !repositories.IsNotFound(err) {
			log.Debug("Failed to look up lobby %s: %v", room.ID(), err)
		}
		return
	}
	if lobby.AdminIdentity != "" {
		room.pendingAdminIdentity = lobby.AdminIdentity
	}
	if lobby.StartingBalance > 0 {
		room.startingBalance = lobby.StartingBalance
	}
}

// CreateLobby creates a room under a fresh 6-digit code with adminIdentity
// reserved as its admin.
func (r *Registry) CreateLobby(adminIdentity string) (string, error) {
	for attempt := 0; attempt < constants.LobbyCodeMaxAttempts; attempt++ {
		code := strconv.Itoa(r.codeSource())
		room := r.newRoom(code)
		room.pendingAdminIdentity = adminIdentity
		if _, loaded := r.rooms.LoadOrStore(code, room); !loaded {
			log.Info("Lobby %s created", code)
			return code, nil
		}
	}
	return "", ErrLobbyCodesExhausted
}

// ReserveAdmin ensures the room exists and reserves adminIdentity as its
// pending admin if none is reserved yet.
func (r *Registry) ReserveAdmin(ctx context.Context, roomID string, adminIdentity string) bool {
	return r.EnsureRoom(ctx, roomID).ReserveAdmin(adminIdentity)
}

// Rooms returns all rooms ordered by id.
func (r *Registry) Rooms() []*Room {
	var rooms []*Room
	r.rooms.Range(func(_, value any) bool {
		rooms = append(rooms, value.(*Room))
		return true
	})
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].ID() < rooms[j].ID()
	})
	return rooms
}

// Snapshot copies every room, locking one room at a time.
func (r *Registry) Snapshot() *types.RegistrySnapshot {
	rooms := r.Rooms()
	snapshot := &types.RegistrySnapshot{
		Timestamp: time.Now().UnixMilli(),
		Rooms:     make([]*types.RoomSnapshot, 0, len(rooms)),
	}
	for _, room := range rooms {
		snapshot.Rooms = append(snapshot.Rooms, room.Snapshot())
	}
	return snapshot
}

// Restore replaces rooms with the contents of a snapshot and returns how
// many were restored.
func (r *Registry) Restore(snapshot *types.RegistrySnapshot) int {
	restored := 0
	for _, s := range snapshot.Rooms {
		if s == nil || s.ID == "" {
			continue
		}
		r.rooms.Store(s.ID, RestoreRoom(s, NewBoard(r.layout)))
		restored++
	}
	return restored
}
