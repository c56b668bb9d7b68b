package game

import (
	"github.com/cbodonnell/tycoon/pkg/game/types"
	"github.com/cbodonnell/tycoon/pkg/messages"
)

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// ServerStateFromSnapshot converts a room snapshot into its wire view.
func ServerStateFromSnapshot(s *types.RoomSnapshot) *messages.ServerState {
	players := make([]messages.PlayerState, 0, len(s.Participants))
	for _, p := range s.Participants {
		players = append(players, messages.PlayerState{
			ID:    p.ID,
			Name:  p.Name,
			Kind:  string(p.Kind),
			Pos:   p.Position,
			Money: p.Balance,
			Ready: p.Ready,
		})
	}

	properties := make([]messages.PropertyState, 0, len(s.Board))
	for _, tile := range s.Board {
		properties = append(properties, messages.PropertyState{
			ID:      tile.ID,
			Name:    tile.Name,
			Cost:    tile.Cost,
			OwnerID: optionalID(tile.OwnerID),
		})
	}

	var lastMove *messages.LastMove
	if s.LastMove != nil {
		lastMove = &messages.LastMove{
			PlayerID: s.LastMove.ParticipantID,
			Dice:     s.LastMove.Dice,
			Bot:      s.LastMove.Bot,
		}
	}

	return &messages.ServerState{
		RoomID:      s.ID,
		Players:     players,
		Properties:  properties,
		LastMove:    lastMove,
		Started:     s.Status == types.RoomStatusActive,
		Status:      string(s.Status),
		AdminID:     optionalID(s.AdminID),
		StartAmount: s.StartingBalance,
		CurrentTurn: optionalID(s.CurrentTurn),
	}
}
