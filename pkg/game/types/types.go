package types

// ParticipantKind tags who drives a participant's turns.
type ParticipantKind string

const (
	ParticipantKindHuman ParticipantKind = "human"
	ParticipantKindBot   ParticipantKind = "bot"
)

// RoomStatus is the lifecycle state of a room.
type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "waiting"
	RoomStatusActive  RoomStatus = "active"
)

// Tile is one board space. OwnerID is empty while unowned.
type Tile struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Cost    int    `json:"cost"`
	OwnerID string `json:"ownerId,omitempty"`
}

// Rent is the amount an occupant pays the owner of the tile.
func (t Tile) Rent(percent int) int {
	return t.Cost * percent / 100
}

type Participant struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Kind     ParticipantKind `json:"kind"`
	Position int             `json:"position"`
	Balance  int             `json:"balance"`
	Ready    bool            `json:"ready"`
	// Identity is the verified external identity a human seat is bound to
	Identity string `json:"identity,omitempty"`
	// ResumeToken reclaims an anonymous seat. It never leaves the server
	// except in the assigned message sent to the seat's own connection.
	ResumeToken string `json:"resumeToken,omitempty"`
}

func (p *Participant) IsBot() bool {
	return p.Kind == ParticipantKindBot
}

type LastMove struct {
	ParticipantID string `json:"participantId"`
	Dice          int    `json:"dice"`
	Bot           bool   `json:"bot"`
}

// RoomSnapshot is the persisted form of a room. Participants are in join order.
type RoomSnapshot struct {
	ID                   string         `json:"id"`
	Participants         []*Participant `json:"participants"`
	Board                []Tile         `json:"board"`
	Status               RoomStatus     `json:"status"`
	AdminID              string         `json:"adminId,omitempty"`
	PendingAdminIdentity string         `json:"pendingAdminIdentity,omitempty"`
	StartingBalance      int            `json:"startingBalance"`
	CurrentTurn          string         `json:"currentTurn,omitempty"`
	TurnIndex            int            `json:"turnIndex"`
	LastMove             *LastMove      `json:"lastMove,omitempty"`
}

// RegistrySnapshot is the full persisted registry.
type RegistrySnapshot struct {
	// Timestamp is the time at which the snapshot was taken, in unix millis
	Timestamp int64           `json:"timestamp"`
	Rooms     []*RoomSnapshot `json:"rooms"`
}
