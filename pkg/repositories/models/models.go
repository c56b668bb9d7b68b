package models

import "time"

// Lobby is the record the lobby layer keeps for a room code.
type Lobby struct {
	Code            string    `json:"code"`
	AdminIdentity   string    `json:"admin_identity,omitempty"`
	StartingBalance int       `json:"starting_balance"`
	CreatedAt       time.Time `json:"created_at"`
}
