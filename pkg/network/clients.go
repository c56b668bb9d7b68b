package network

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cbodonnell/tycoon/pkg/log"
	"nhooyr.io/websocket"
)

const (
	// ClientIDMaxRetries represents the maximum number of retries when generating a unique ID
	ClientIDMaxRetries = 1024
	// ClientOutboxSize is the number of pending outbound messages per client
	ClientOutboxSize = 64
	// ClientWriteTimeout bounds a single outbound write
	ClientWriteTimeout = 5 * time.Second
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrOutboxFull     = errors.New("client outbox is full")
)

// Conn is the transport a client is reached through.
type Conn interface {
	Write(ctx context.Context, data []byte) error
	Close(code websocket.StatusCode, reason string) error
}

// Binding ties a live connection to a room and, once joined, a participant.
type Binding struct {
	ClientID      uint32
	RoomID        string
	Identity      string
	ParticipantID string
	RemoteAddr    string
}

// Client represents a connected client
type Client struct {
	Binding
	conn      Conn
	outbox    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (c *Client) stop() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// ClientManager manages connected clients and their bindings
type ClientManager struct {
	clients     map[uint32]*Client
	clientsLock sync.RWMutex
}

// NewClientManager creates a new ClientManager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[uint32]*Client),
	}
}

// ConnectClient registers a connection bound to roomID and starts its writer.
// The writer stops when ctx is done or the client is disconnected.
func (cm *ClientManager) ConnectClient(ctx context.Context, conn Conn, roomID string, identity string, remoteAddr string) (uint32, error) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	clientID, err := cm.generateUniqueID(ClientIDMaxRetries)
	if err != nil {
		return 0, fmt.Errorf("failed to generate a unique ID: %v", err)
	}
	client := &Client{
		Binding: Binding{
			ClientID:   clientID,
			RoomID:     roomID,
			Identity:   identity,
			RemoteAddr: remoteAddr,
		},
		conn:   conn,
		outbox: make(chan []byte, ClientOutboxSize),
		done:   make(chan struct{}),
	}
	cm.clients[clientID] = client

	go cm.writeLoop(ctx, client)

	return clientID, nil
}

func (cm *ClientManager) writeLoop(ctx context.Context, client *Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-client.done:
			return
		case b := <-client.outbox:
			writeCtx, cancel := context.WithTimeout(ctx, ClientWriteTimeout)
			err := client.conn.Write(writeCtx, b)
			cancel()
			if err != nil {
				log.Warn("Failed to write to client %d: %v", client.ClientID, err)
			}
		}
	}
}

// DisconnectClient removes a client and its binding
func (cm *ClientManager) DisconnectClient(clientID uint32) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	client, ok := cm.clients[clientID]
	if !ok {
		return
	}
	client.stop()
	delete(cm.clients, clientID)
}

// GetBinding returns a copy of the client's binding.
func (cm *ClientManager) GetBinding(clientID uint32) (Binding, error) {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()

	client, ok := cm.clients[clientID]
	if !ok {
		return Binding{}, ErrClientNotFound
	}
	return client.Binding, nil
}

// BindParticipant records which participant the connection plays as.
func (cm *ClientManager) BindParticipant(clientID uint32, participantID string) error {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	client, ok := cm.clients[clientID]
	if !ok {
		return ErrClientNotFound
	}
	client.ParticipantID = participantID
	return nil
}

// UnbindParticipant clears every binding to participantID in roomID and
// returns how many connections were affected.
func (cm *ClientManager) UnbindParticipant(roomID string, participantID string) int {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	n := 0
	for _, client := range cm.clients {
		if client.RoomID == roomID && client.ParticipantID == participantID {
			client.ParticipantID = ""
			n++
		}
	}
	return n
}

// CloseParticipant unbinds and closes every connection bound to participantID in roomID.
func (cm *ClientManager) CloseParticipant(roomID string, participantID string, code websocket.StatusCode, reason string) int {
	cm.clientsLock.Lock()
	var closing []*Client
	for _, client := range cm.clients {
		if client.RoomID == roomID && client.ParticipantID == participantID {
			client.ParticipantID = ""
			closing = append(closing, client)
		}
	}
	cm.clientsLock.Unlock()

	for _, client := range closing {
		// the close handshake waits on the peer
		go func(c *Client) {
			if err := c.conn.Close(code, reason); err != nil {
				log.Debug("Failed to close client %d: %v", c.ClientID, err)
			}
		}(client)
	}
	return len(closing)
}

// Send queues data for one client without blocking.
func (cm *ClientManager) Send(clientID uint32, data []byte) error {
	cm.clientsLock.RLock()
	client, ok := cm.clients[clientID]
	cm.clientsLock.RUnlock()
	if !ok {
		return ErrClientNotFound
	}
	return client.enqueue(data)
}

func (c *Client) enqueue(data []byte) error {
	select {
	case <-c.done:
		return ErrClientNotFound
	default:
	}
	select {
	case c.outbox <- data:
		return nil
	default:
		return ErrOutboxFull
	}
}

// BroadcastToRoom queues data for every client in roomID and returns the
// number of clients it was queued for.
func (cm *ClientManager) BroadcastToRoom(roomID string, data []byte) int {
	cm.clientsLock.RLock()
	var recipients []*Client
	for _, client := range cm.clients {
		if client.RoomID == roomID {
			recipients = append(recipients, client)
		}
	}
	cm.clientsLock.RUnlock()

	delivered := 0
	for _, client := range recipients {
		if err := client.enqueue(data); err != nil {
			log.Warn("Dropped broadcast to client %d in room %s: %v", client.ClientID, roomID, err)
			continue
		}
		delivered++
	}
	return delivered
}

// CountInRoom returns the number of live connections in roomID.
func (cm *ClientManager) CountInRoom(roomID string) int {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()

	n := 0
	for _, client := range cm.clients {
		if client.RoomID == roomID {
			n++
		}
	}
	return n
}

func (cm *ClientManager) Exists(clientID uint32) bool {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	_, ok := cm.clients[clientID]
	return ok
}

// generateUniqueID generates a unique client ID with a maximum number of retries
// it reads from the clients, so it needs to be locked before calling
func (cm *ClientManager) generateUniqueID(maxRetries int) (uint32, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		id := rand.Uint32()
		if id == 0 {
			continue
		}
		if _, ok := cm.clients[id]; !ok {
			return id, nil
		}
	}

	return 0, fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}
