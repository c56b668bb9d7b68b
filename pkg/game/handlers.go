package game

import (
	"context"

	"github.com/cbodonnell/tycoon/pkg/log"
	"github.com/cbodonnell/tycoon/pkg/messages"
	"github.com/cbodonnell/tycoon/pkg/network"
)

// HandleMessage routes one inbound client message to its room operation.
func (gm *GameManager) HandleMessage(ctx context.Context, clientID uint32, message *messages.Message) {
	binding, err := gm.network.GetBinding(clientID)
	if err != nil {
		log.Warn("Received %s from unknown client %d", message.Type, clientID)
		return
	}

	switch message.Type {
	case messages.MessageTypeClientJoin:
		gm.handleJoin(ctx, binding, message)
	case messages.MessageTypeClientRoll:
		gm.handleRoll(binding)
	case messages.MessageTypeClientBuy:
		gm.handleBuy(binding)
	case messages.MessageTypeClientReady:
		gm.handleReady(binding, message)
	case messages.MessageTypeClientKick:
		gm.handleKick(binding, message)
	case messages.MessageTypeClientSetStartAmount:
		gm.handleSetStartAmount(binding, message)
	case messages.MessageTypeClientStart:
		gm.handleStart(binding)
	case messages.MessageTypeClientLeave:
		gm.handleLeave(binding)
	case messages.MessageTypeClientAddBot:
		gm.handleAddBot(binding, message)
	case messages.MessageTypeClientPayRent:
		gm.handlePayRent(binding, message)
	default:
		log.Debug("Unknown message type %q from client %d", message.Type, clientID)
		gm.send(clientID, messages.MessageTypeServerError, &messages.ServerError{Message: "unknown-type"})
	}
}

func (gm *GameManager) send(clientID uint32, messageType string, payload interface{}) {
	msg, err := messages.NewMessage(messageType, payload)
	if err != nil {
		log.Error("Failed to build %s: %v", messageType, err)
		return
	}
	if err := gm.network.SendMessageToClient(clientID, msg); err != nil {
		log.Warn("Failed to send %s: %v", messageType, err)
	}
}

func result(err error) *messages.ServerResult {
	if err != nil {
		return &messages.ServerResult{Success: false, Message: Reason(err)}
	}
	return &messages.ServerResult{Success: true}
}

// boundRoom resolves the room and participant a connection acts as.
func (gm *GameManager) boundRoom(binding network.Binding) (*Room, string, error) {
	if binding.ParticipantID == "" {
		return nil, "", ErrNotJoined
	}
	room, ok := gm.registry.GetRoom(binding.RoomID)
	if !ok {
		return nil, "", ErrNoRoom
	}
	return room, binding.ParticipantID, nil
}

func (gm *GameManager) handleJoin(ctx context.Context, binding network.Binding, message *messages.Message) {
	payload := &messages.ClientJoin{}
	if err := messages.DecodePayload(message, payload); err != nil {
		gm.send(binding.ClientID, messages.MessageTypeServerJoinResult, result(ErrInvalidPayload))
		return
	}

	room := gm.registry.EnsureRoom(ctx, binding.RoomID)
	joined, err := room.Join(JoinRequest{
		Name:        payload.Name,
		Identity:    binding.Identity,
		ResumeID:    payload.ID,
		ResumeToken: payload.Token,
	})
	if err != nil {
		log.Debug("Client %d failed to join room %s: %v", binding.ClientID, room.ID(), err)
		gm.send(binding.ClientID, messages.MessageTypeServerJoinResult, result(err))
		return
	}

	if err := gm.network.BindParticipant(binding.ClientID, joined.ParticipantID); err != nil {
		log.Warn("Failed to bind client %d to %s: %v", binding.ClientID, joined.ParticipantID, err)
		return
	}
	if joined.Reconnected {
		log.Info("Participant %s reconnected to room %s", joined.ParticipantID, room.ID())
	} else {
		log.Info("Participant %s joined room %s", joined.ParticipantID, room.ID())
	}

	gm.send(binding.ClientID, messages.MessageTypeServerAssigned, &messages.ServerAssigned{
		ID:     joined.ParticipantID,
		RoomID: room.ID(),
		Token:  joined.ResumeToken,
	})
	gm.send(binding.ClientID, messages.MessageTypeServerJoinResult, result(nil))
	gm.afterMutation(room)
}

func (gm *GameManager) handleRoll(binding network.Binding) {
	room, participantID, err := gm.boundRoom(binding)
	if err == nil {
		var dice int
		dice, err = room.Roll(participantID, gm.dice)
		if err == nil {
			gm.send(binding.ClientID, messages.MessageTypeServerRollResult, &messages.ServerRollResult{Dice: dice, Success: true})
			gm.afterMutation(room)
			return
		}
	}
	gm.send(binding.ClientID, messages.MessageTypeServerRollResult, &messages.ServerRollResult{Dice: -1, Message: Reason(err)})
}

func (gm *GameManager) handleBuy(binding network.Binding) {
	room, participantID, err := gm.boundRoom(binding)
	if err == nil {
		var tileID int
		tileID, err = room.Buy(participantID)
		if err == nil {
			gm.send(binding.ClientID, messages.MessageTypeServerBuyResult, &messages.ServerBuyResult{
				Success:    true,
				Message:    "bought",
				PropertyID: &tileID,
			})
			gm.afterMutation(room)
			return
		}
	}
	gm.send(binding.ClientID, messages.MessageTypeServerBuyResult, &messages.ServerBuyResult{Message: Reason(err)})
}

func (gm *GameManager) handleReady(binding network.Binding, message *messages.Message) {
	payload := &messages.ClientReady{}
	if err := messages.DecodePayload(message, payload); err != nil || payload.Ready == nil {
		gm.send(binding.ClientID, messages.MessageTypeServerError, &messages.ServerError{Message: ErrInvalidPayload.Reason})
		return
	}
	room, participantID, err := gm.boundRoom(binding)
	if err == nil {
		err = room.SetReady(participantID, *payload.Ready)
	}
	if err != nil {
		gm.send(binding.ClientID, messages.MessageTypeServerError, &messages.ServerError{Message: Reason(err)})
		return
	}
	gm.afterMutation(room)
}

func (gm *GameManager) handleKick(binding network.Binding, message *messages.Message) {
	payload := &messages.ClientKick{}
	if err := messages.DecodePayload(message, payload); err != nil || payload.PlayerID == "" {
		gm.send(binding.ClientID, messages.MessageTypeServerKickResult, result(ErrInvalidPayload))
		return
	}
	room, participantID, err := gm.boundRoom(binding)
	if err == nil {
		err = room.Kick(participantID, payload.PlayerID)
	}
	gm.send(binding.ClientID, messages.MessageTypeServerKickResult, result(err))
	if err != nil {
		return
	}

	closed := gm.network.DisconnectParticipant(room.ID(), payload.PlayerID, "kicked")
	log.Info("Participant %s kicked from room %s (%d connections closed)", payload.PlayerID, room.ID(), closed)
	gm.afterMutation(room)
}

func (gm *GameManager) handleSetStartAmount(binding network.Binding, message *messages.Message) {
	payload := &messages.ClientSetStartAmount{}
	if err := messages.DecodePayload(message, payload); err != nil || payload.Amount == nil {
		gm.send(binding.ClientID, messages.MessageTypeServerSetStartAmountResult, result(ErrInvalidPayload))
		return
	}
	room, participantID, err := gm.boundRoom(binding)
	if err == nil {
		err = room.SetStartingBalance(participantID, *payload.Amount)
	}
	gm.send(binding.ClientID, messages.MessageTypeServerSetStartAmountResult, result(err))
	if err == nil {
		gm.afterMutation(room)
	}
}

func (gm *GameManager) handleStart(binding network.Binding) {
	room, participantID, err := gm.boundRoom(binding)
	if err == nil {
		err = room.ForceStart(participantID)
	}
	gm.send(binding.ClientID, messages.MessageTypeServerStartResult, result(err))
	if err == nil {
		gm.afterMutation(room)
	}
}

func (gm *GameManager) handleLeave(binding network.Binding) {
	room, participantID, err := gm.boundRoom(binding)
	if err == nil {
		err = room.Leave(participantID)
	}
	gm.send(binding.ClientID, messages.MessageTypeServerLeaveResult, result(err))
	if err != nil {
		return
	}

	gm.network.UnbindParticipant(room.ID(), participantID)
	log.Info("Participant %s left room %s", participantID, room.ID())
	gm.afterMutation(room)
}

func (gm *GameManager) handleAddBot(binding network.Binding, message *messages.Message) {
	payload := &messages.ClientAddBot{}
	if err := messages.DecodePayload(message, payload); err != nil {
		gm.send(binding.ClientID, messages.MessageTypeServerAddBotResult, &messages.ServerAddBotResult{Message: ErrInvalidPayload.Reason})
		return
	}
	room, participantID, err := gm.boundRoom(binding)
	if err == nil {
		var botID string
		botID, err = room.AddBot(participantID, payload.Name)
		if err == nil {
			log.Info("Bot %s added to room %s", botID, room.ID())
			gm.send(binding.ClientID, messages.MessageTypeServerAddBotResult, &messages.ServerAddBotResult{Success: true, ID: botID})
			gm.afterMutation(room)
			return
		}
	}
	gm.send(binding.ClientID, messages.MessageTypeServerAddBotResult, &messages.ServerAddBotResult{Message: Reason(err)})
}

func (gm *GameManager) handlePayRent(binding network.Binding, message *messages.Message) {
	payload := &messages.ClientPayRent{}
	if err := messages.DecodePayload(message, payload); err != nil {
		gm.send(binding.ClientID, messages.MessageTypeServerRentResult, &messages.ServerRentResult{Message: ErrInvalidPayload.Reason})
		return
	}
	room, participantID, err := gm.boundRoom(binding)
	if err == nil {
		var amount int
		if payload.PropertyID != nil {
			amount, err = room.ChargeRent(participantID, *payload.PropertyID)
		} else {
			amount, err = room.ChargeCurrentRent(participantID)
		}
		if err == nil {
			gm.send(binding.ClientID, messages.MessageTypeServerRentResult, &messages.ServerRentResult{Success: true, Amount: amount})
			if amount > 0 {
				gm.afterMutation(room)
			}
			return
		}
	}
	gm.send(binding.ClientID, messages.MessageTypeServerRentResult, &messages.ServerRentResult{Message: Reason(err)})
}
