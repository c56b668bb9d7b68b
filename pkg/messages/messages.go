package messages

import "encoding/json"

const (
	// MessageBufferSize represents the maximum size of an inbound message
	MessageBufferSize = 16 * 1024
)

// Client message types
const (
	MessageTypeClientJoin           = "join"
	MessageTypeClientRoll           = "roll"
	MessageTypeClientBuy            = "buy"
	MessageTypeClientReady          = "ready"
	MessageTypeClientKick           = "kick"
	MessageTypeClientSetStartAmount = "setStartAmount"
	MessageTypeClientStart          = "start"
	MessageTypeClientLeave          = "leave"
	MessageTypeClientAddBot         = "addBot"
	MessageTypeClientPayRent        = "payRent"
)

// Server message types
const (
	MessageTypeServerAssigned             = "assigned"
	MessageTypeServerJoinResult           = "joinResult"
	MessageTypeServerRollResult           = "rollResult"
	MessageTypeServerBuyResult            = "buyResult"
	MessageTypeServerKickResult           = "kickResult"
	MessageTypeServerSetStartAmountResult = "setStartAmountResult"
	MessageTypeServerStartResult          = "startResult"
	MessageTypeServerLeaveResult          = "leaveResult"
	MessageTypeServerAddBotResult         = "addBotResult"
	MessageTypeServerRentResult           = "rentResult"
	MessageTypeServerError                = "error"
	MessageTypeServerState                = "state"
)

// Message is the envelope every frame is wrapped in
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ClientJoin struct {
	Name string `json:"name"`
	// ID and Token resume a previously assigned seat when the connection
	// has no verified identity
	ID    string `json:"id,omitempty"`
	Token string `json:"token,omitempty"`
}

type ClientReady struct {
	Ready *bool `json:"ready"`
}

type ClientKick struct {
	PlayerID string `json:"playerId"`
}

type ClientSetStartAmount struct {
	Amount *int `json:"amount"`
}

type ClientAddBot struct {
	Name string `json:"name,omitempty"`
}

type ClientPayRent struct {
	PropertyID *int `json:"propertyId,omitempty"`
}

type ServerAssigned struct {
	ID     string `json:"id"`
	RoomID string `json:"roomId"`
	// Token is only set for anonymous seats
	Token string `json:"token,omitempty"`
}

// ServerResult is shared by the result messages that only report an outcome
type ServerResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ServerRollResult struct {
	Dice    int    `json:"dice"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ServerBuyResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	PropertyID *int   `json:"propertyId,omitempty"`
}

type ServerAddBotResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

type ServerRentResult struct {
	Success bool   `json:"success"`
	Amount  int    `json:"amount"`
	Message string `json:"message,omitempty"`
}

type ServerError struct {
	Message string `json:"message"`
}

type PlayerState struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Pos   int    `json:"pos"`
	Money int    `json:"money"`
	Ready bool   `json:"ready"`
}

type PropertyState struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Cost    int     `json:"cost"`
	OwnerID *string `json:"ownerId"`
}

type LastMove struct {
	PlayerID string `json:"playerId"`
	Dice     int    `json:"dice"`
	Bot      bool   `json:"bot,omitempty"`
}

// ServerState is the full room view broadcast after every mutation
type ServerState struct {
	RoomID      string          `json:"roomId"`
	Players     []PlayerState   `json:"players"`
	Properties  []PropertyState `json:"properties"`
	LastMove    *LastMove       `json:"lastMove"`
	Started     bool            `json:"started"`
	Status      string          `json:"status"`
	AdminID     *string         `json:"adminId"`
	StartAmount int             `json:"startAmount"`
	CurrentTurn *string         `json:"currentTurn"`
}
