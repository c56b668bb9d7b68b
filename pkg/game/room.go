package game

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"sync"

	"github.com/cbodonnell/tycoon/pkg/game/constants"
	"github.com/cbodonnell/tycoon/pkg/game/types"
	"github.com/google/uuid"
)

// Room is one game session. All reads and writes go through mu.
type Room struct {
	mu sync.Mutex

	id                   string
	participants         map[string]*types.Participant
	order                []string
	board                []types.Tile
	status               types.RoomStatus
	adminID              string
	pendingAdminIdentity string
	startingBalance      int
	currentTurn          string
	turnIndex            int
	lastMove             *types.LastMove
}

func NewRoom(id string, board []types.Tile, startingBalance int) *Room {
	return &Room{
		id:              id,
		participants:    make(map[string]*types.Participant),
		board:           board,
		status:          types.RoomStatusWaiting,
		startingBalance: startingBalance,
	}
}

func (r *Room) ID() string {
	return r.id
}

type JoinRequest struct {
	Name string
	// Identity is the verified external identity of the connection, if any
	Identity string
	// ResumeID and ResumeToken come from an earlier assigned message and
	// reclaim an anonymous seat. They are ignored when Identity is set.
	ResumeID    string
	ResumeToken string
}

type JoinResult struct {
	ParticipantID string
	// ResumeToken is empty for identity-bound seats
	ResumeToken string
	Reconnected bool
}

// Join seats a new human participant or reconnects an existing one.
// A verified identity only reconnects to the seat bound to it. An
// anonymous connection only reconnects with the seat's resume token.
func (r *Room) Join(req JoinRequest) (*JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p := r.seatForLocked(req); p != nil {
		return &JoinResult{ParticipantID: p.ID, ResumeToken: p.ResumeToken, Reconnected: true}, nil
	}

	if len(r.order) >= constants.MaxParticipants {
		return nil, ErrRoomFull
	}

	id := req.Identity
	generated := id == ""
	if _, taken := r.participants[id]; generated || taken {
		id = uuid.NewString()
		generated = true
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Player"
		if generated {
			name += "-" + id[:4]
		}
	}
	var token string
	if req.Identity == "" {
		token = uuid.NewString()
	}

	r.addLocked(&types.Participant{
		ID:          id,
		Name:        name,
		Kind:        types.ParticipantKindHuman,
		Balance:     r.startingBalance,
		Identity:    req.Identity,
		ResumeToken: token,
	})
	if r.adminID == "" {
		r.adminID = id
	}
	if req.Identity != "" && req.Identity == r.pendingAdminIdentity {
		r.adminID = id
		r.pendingAdminIdentity = ""
	}

	return &JoinResult{ParticipantID: id, ResumeToken: token}, nil
}

// seatForLocked finds the existing human seat req may reclaim.
func (r *Room) seatForLocked(req JoinRequest) *types.Participant {
	for _, id := range r.order {
		p := r.participants[id]
		if p.IsBot() {
			continue
		}
		if req.Identity != "" {
			if p.Identity == req.Identity {
				return p
			}
			continue
		}
		if req.ResumeToken == "" || p.Identity != "" || p.ResumeToken == "" {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(p.ResumeToken), []byte(req.ResumeToken)) == 1 &&
			(req.ResumeID == "" || req.ResumeID == p.ID) {
			return p
		}
	}
	return nil
}

// AddBot seats a bot. Only the admin may add bots.
func (r *Room) AddBot(requesterID string, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireAdminLocked(requesterID); err != nil {
		return "", err
	}
	if len(r.order) >= constants.MaxParticipants {
		return "", ErrRoomFull
	}

	id := constants.BotIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:constants.BotIDLength]
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Bot %d", r.botCountLocked()+1)
	}
	r.addLocked(&types.Participant{
		ID:      id,
		Name:    name,
		Kind:    types.ParticipantKindBot,
		Balance: r.startingBalance,
		Ready:   true,
	})

	return id, nil
}

func (r *Room) botCountLocked() int {
	n := 0
	for _, p := range r.participants {
		if p.IsBot() {
			n++
		}
	}
	return n
}

// Leave removes a participant on its own request.
func (r *Room) Leave(participantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.participants[participantID]; !ok {
		return ErrNoPlayer
	}
	r.removeLocked(participantID)
	return nil
}

// Kick removes targetID. Only the admin may kick.
func (r *Room) Kick(requesterID string, targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireAdminLocked(requesterID); err != nil {
		return err
	}
	if _, ok := r.participants[targetID]; !ok {
		return ErrNotFound
	}
	r.removeLocked(targetID)
	return nil
}

// SetReady updates the ready flag and runs the ready-up state machine.
func (r *Room) SetReady(participantID string, ready bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantID]
	if !ok {
		return ErrNoPlayer
	}
	p.Ready = ready

	if !ready {
		r.status = types.RoomStatusWaiting
		return nil
	}
	if len(r.order) == constants.MaxParticipants && r.allReadyLocked() {
		r.startLocked()
	}
	return nil
}

func (r *Room) allReadyLocked() bool {
	for _, p := range r.participants {
		if !p.Ready {
			return false
		}
	}
	return true
}

// ForceStart lets the admin start without everyone being ready.
func (r *Room) ForceStart(requesterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireAdminLocked(requesterID); err != nil {
		return err
	}
	if len(r.order) < constants.MinForceStartParticipants {
		return ErrNotEnoughPlayers
	}
	r.startLocked()
	return nil
}

func (r *Room) startLocked() {
	r.status = types.RoomStatusActive
	if r.currentTurn == "" && len(r.order) > 0 {
		r.turnIndex = 0
		r.currentTurn = r.order[0]
	}
}

// Roll moves the current-turn participant and passes the turn on.
func (r *Room) Roll(participantID string, dice Dice) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantID]
	if !ok {
		return 0, ErrNoPlayer
	}
	if r.status != types.RoomStatusActive {
		return 0, ErrNotStarted
	}
	if r.currentTurn != participantID {
		return 0, ErrNotYourTurn
	}

	d := dice.Roll()
	r.moveLocked(p, d, false)
	r.advanceTurnLocked()
	return d, nil
}

func (r *Room) moveLocked(p *types.Participant, dice int, bot bool) {
	p.Position = r.wrapPosition(p.Position + dice)
	r.lastMove = &types.LastMove{
		ParticipantID: p.ID,
		Dice:          dice,
		Bot:           bot,
	}
}

// wrapPosition maps pos onto [0, board size).
func (r *Room) wrapPosition(pos int) int {
	size := len(r.board)
	if size == 0 {
		size = constants.EmptyBoardWrap
	}
	pos %= size
	if pos < 0 {
		pos += size
	}
	return pos
}

func (r *Room) advanceTurnLocked() {
	if len(r.order) == 0 {
		r.currentTurn = ""
		r.turnIndex = 0
		return
	}
	r.turnIndex = (r.turnIndex + 1) % len(r.order)
	r.currentTurn = r.order[r.turnIndex]
}

// Buy purchases the participant's current tile and returns its id.
func (r *Room) Buy(participantID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantID]
	if !ok {
		return 0, ErrNoPlayer
	}
	if len(r.board) == 0 {
		return 0, ErrNoProperties
	}
	tile := &r.board[p.Position%len(r.board)]
	if tile.OwnerID != "" {
		return 0, ErrAlreadyOwned
	}
	if p.Balance < tile.Cost {
		return 0, ErrInsufficientFunds
	}

	p.Balance -= tile.Cost
	tile.OwnerID = p.ID
	return tile.ID, nil
}

// ChargeRent settles rent owed by the occupant for tileID and returns the
// amount moved. Unowned and self-owned tiles cost nothing.
func (r *Room) ChargeRent(participantID string, tileID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantID]
	if !ok {
		return 0, ErrNoPlayer
	}
	if tileID < 0 || tileID >= len(r.board) {
		return 0, ErrInvalidTile
	}
	return r.chargeRentLocked(p, &r.board[tileID]), nil
}

// ChargeCurrentRent settles rent for the tile the participant stands on.
func (r *Room) ChargeCurrentRent(participantID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantID]
	if !ok {
		return 0, ErrNoPlayer
	}
	if len(r.board) == 0 {
		return 0, ErrNoProperties
	}
	return r.chargeRentLocked(p, &r.board[p.Position%len(r.board)]), nil
}

func (r *Room) chargeRentLocked(occupant *types.Participant, tile *types.Tile) int {
	if tile.OwnerID == "" || tile.OwnerID == occupant.ID {
		return 0
	}
	owner, ok := r.participants[tile.OwnerID]
	if !ok {
		return 0
	}
	rent := tile.Rent(constants.RentPercent)
	occupant.Balance -= rent
	owner.Balance += rent
	return rent
}

// SetStartingBalance resets every participant's balance to amount.
func (r *Room) SetStartingBalance(requesterID string, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireAdminLocked(requesterID); err != nil {
		return err
	}
	if amount < 0 {
		return ErrInvalidAmount
	}
	r.startingBalance = amount
	for _, p := range r.participants {
		p.Balance = amount
	}
	return nil
}

// ReserveAdmin records identity as the pending admin unless one is already reserved.
func (r *Room) ReserveAdmin(identity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pendingAdminIdentity != "" {
		return r.pendingAdminIdentity == identity
	}
	r.pendingAdminIdentity = identity
	return true
}

func (r *Room) requireAdminLocked(requesterID string) error {
	if r.adminID == "" || r.adminID != requesterID {
		return ErrNotAdmin
	}
	return nil
}

func (r *Room) addLocked(p *types.Participant) {
	r.participants[p.ID] = p
	r.order = append(r.order, p.ID)
}

// removeLocked drops a participant and repairs admin and turn pointers.
func (r *Room) removeLocked(id string) {
	idx := -1
	for i, pid := range r.order {
		if pid == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	r.order = append(r.order[:idx:idx], r.order[idx+1:]...)
	delete(r.participants, id)

	if r.adminID == id {
		r.adminID = ""
		if len(r.order) > 0 {
			r.adminID = r.order[0]
		}
	}

	if r.currentTurn == "" {
		return
	}
	switch {
	case len(r.order) == 0:
		r.currentTurn = ""
		r.turnIndex = 0
	case r.currentTurn == id:
		// the participant after the removed one now sits at idx
		r.turnIndex = idx % len(r.order)
		r.currentTurn = r.order[r.turnIndex]
	case idx < r.turnIndex:
		r.turnIndex--
	}
}

// Snapshot returns a deep copy of the room state.
func (r *Room) Snapshot() *types.RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Publish hands fn a snapshot while still holding the room lock, so
// successive calls observe and emit states in mutation order. fn must not
// block or call back into the room.
func (r *Room) Publish(fn func(*types.RoomSnapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.snapshotLocked())
}

func (r *Room) snapshotLocked() *types.RoomSnapshot {
	participants := make([]*types.Participant, 0, len(r.order))
	for _, id := range r.order {
		p := *r.participants[id]
		participants = append(participants, &p)
	}
	board := make([]types.Tile, len(r.board))
	copy(board, r.board)

	var lastMove *types.LastMove
	if r.lastMove != nil {
		m := *r.lastMove
		lastMove = &m
	}

	return &types.RoomSnapshot{
		ID:                   r.id,
		Participants:         participants,
		Board:                board,
		Status:               r.status,
		AdminID:              r.adminID,
		PendingAdminIdentity: r.pendingAdminIdentity,
		StartingBalance:      r.startingBalance,
		CurrentTurn:          r.currentTurn,
		TurnIndex:            r.turnIndex,
		LastMove:             lastMove,
	}
}

// RestoreRoom rebuilds a room from a snapshot, dropping any pointer that
// no longer names a participant.
func RestoreRoom(s *types.RoomSnapshot, fallbackBoard []types.Tile) *Room {
	board := make([]types.Tile, len(s.Board))
	copy(board, s.Board)
	if len(board) == 0 {
		board = fallbackBoard
	}
	room := NewRoom(s.ID, board, s.StartingBalance)

	for _, p := range s.Participants {
		if p == nil || p.ID == "" || len(room.order) >= constants.MaxParticipants {
			continue
		}
		if _, dup := room.participants[p.ID]; dup {
			continue
		}
		restored := *p
		if restored.Kind != types.ParticipantKindBot {
			restored.Kind = types.ParticipantKindHuman
		}
		restored.Position = room.wrapPosition(restored.Position)
		room.addLocked(&restored)
	}

	if s.Status == types.RoomStatusActive {
		room.status = types.RoomStatusActive
	}
	if _, ok := room.participants[s.AdminID]; ok {
		room.adminID = s.AdminID
	}
	room.pendingAdminIdentity = s.PendingAdminIdentity
	for i, id := range room.order {
		if id == s.CurrentTurn {
			room.currentTurn = id
			room.turnIndex = i
			break
		}
	}
	if s.LastMove != nil {
		m := *s.LastMove
		room.lastMove = &m
	}

	return room
}
