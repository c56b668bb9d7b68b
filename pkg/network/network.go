package network

import (
	"context"
	"fmt"
	"net/http"

	authproviders "github.com/cbodonnell/tycoon/pkg/auth/providers"
	"github.com/cbodonnell/tycoon/pkg/log"
	"github.com/cbodonnell/tycoon/pkg/messages"
	"nhooyr.io/websocket"
)

const (
	// RoomQueryParam names the room a connection plays in
	RoomQueryParam = "room"
	// TokenQueryParam carries the identity token of a connection
	TokenQueryParam = "token"
)

type NetworkManager struct {
	// AuthProvider is optional; without it every connection is anonymous
	AuthProvider  authproviders.AuthProvider
	ClientManager *ClientManager
	WSServer      *WSServer
	DefaultRoomID string
}

type NewNetworkManagerOptions struct {
	AuthProvider   authproviders.AuthProvider
	ClientManager  *ClientManager
	DefaultRoomID  string
	OriginPatterns []string
}

func NewNetworkManager(options NewNetworkManagerOptions) *NetworkManager {
	return &NetworkManager{
		AuthProvider:  options.AuthProvider,
		ClientManager: options.ClientManager,
		WSServer: NewWSServer(NewWSServerOptions{
			OriginPatterns: options.OriginPatterns,
		}),
		DefaultRoomID: options.DefaultRoomID,
	}
}

// WebSocketHandler upgrades requests and feeds their messages to handler.
// Connections are closed when ctx is done.
func (n *NetworkManager) WebSocketHandler(ctx context.Context, handler MessageHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		roomID := query.Get(RoomQueryParam)
		if roomID == "" {
			roomID = n.DefaultRoomID
		}
		identity := n.authenticate(r.Context(), query.Get(TokenQueryParam))

		conn, err := n.WSServer.accept(w, r)
		if err != nil {
			log.Error("Failed to accept WebSocket connection from %s: %v", r.RemoteAddr, err)
			return
		}
		defer conn.CloseNow()

		clientID, err := n.ClientManager.ConnectClient(ctx, &wsConn{conn: conn}, roomID, identity, r.RemoteAddr)
		if err != nil {
			log.Error("Failed to connect client from %s: %v", r.RemoteAddr, err)
			conn.Close(websocket.StatusTryAgainLater, "server busy")
			return
		}
		log.Info("Client %d connected to room %s from %s", clientID, roomID, r.RemoteAddr)
		defer func() {
			n.ClientManager.DisconnectClient(clientID)
			log.Info("Client %d disconnected", clientID)
		}()

		send := func(msg *messages.Message) {
			if err := n.SendMessageToClient(clientID, msg); err != nil {
				log.Warn("Failed to send %s to client %d: %v", msg.Type, clientID, err)
			}
		}
		n.WSServer.readLoop(ctx, conn, clientID, send, handler)
	})
}

// authenticate returns the verified identity for token, or "" when the
// connection is anonymous.
func (n *NetworkManager) authenticate(ctx context.Context, token string) string {
	if token == "" || n.AuthProvider == nil {
		return ""
	}
	claims, err := n.AuthProvider.VerifyToken(ctx, token)
	if err != nil {
		log.Warn("Failed to verify connection token, continuing anonymously: %v", err)
		return ""
	}
	return claims.UID
}

// SendMessageToClient queues a message for one client.
func (n *NetworkManager) SendMessageToClient(clientID uint32, msg *messages.Message) error {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}
	if err := n.ClientManager.Send(clientID, b); err != nil {
		return fmt.Errorf("failed to send message to client %d: %v", clientID, err)
	}
	return nil
}

// BroadcastMessageToRoom serializes msg once and queues it for every client in roomID.
func (n *NetworkManager) BroadcastMessageToRoom(roomID string, msg *messages.Message) {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		log.Error("Failed to serialize %s for room %s: %v", msg.Type, roomID, err)
		return
	}
	delivered := n.ClientManager.BroadcastToRoom(roomID, b)
	log.Trace("Broadcast %s to %d clients in room %s", msg.Type, delivered, roomID)
}

// DisconnectParticipant closes every connection playing as participantID.
func (n *NetworkManager) DisconnectParticipant(roomID string, participantID string, reason string) int {
	return n.ClientManager.CloseParticipant(roomID, participantID, websocket.StatusPolicyViolation, reason)
}

func (n *NetworkManager) GetBinding(clientID uint32) (Binding, error) {
	return n.ClientManager.GetBinding(clientID)
}

func (n *NetworkManager) BindParticipant(clientID uint32, participantID string) error {
	return n.ClientManager.BindParticipant(clientID, participantID)
}

func (n *NetworkManager) UnbindParticipant(roomID string, participantID string) int {
	return n.ClientManager.UnbindParticipant(roomID, participantID)
}
