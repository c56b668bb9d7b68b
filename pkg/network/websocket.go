package network

import (
	"context"
	"errors"
	"net/http"

	"github.com/cbodonnell/tycoon/pkg/log"
	"github.com/cbodonnell/tycoon/pkg/messages"
	"nhooyr.io/websocket"
)

// MessageHandler handles one inbound message from a connected client.
type MessageHandler func(ctx context.Context, clientID uint32, message *messages.Message)

// WSServer accepts WebSocket connections and pumps their messages into a handler.
type WSServer struct {
	acceptOptions *websocket.AcceptOptions
}

type NewWSServerOptions struct {
	// OriginPatterns lists the allowed cross-origin hosts. Empty allows any origin.
	OriginPatterns []string
}

// NewWSServer creates a new WebSocket server.
func NewWSServer(opts NewWSServerOptions) *WSServer {
	acceptOptions := &websocket.AcceptOptions{
		OriginPatterns: opts.OriginPatterns,
	}
	if len(opts.OriginPatterns) == 0 {
		acceptOptions.InsecureSkipVerify = true
	}
	return &WSServer{
		acceptOptions: acceptOptions,
	}
}

// wsConn adapts a websocket connection to Conn.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) Write(ctx context.Context, data []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, data)
}

func (c *wsConn) Close(code websocket.StatusCode, reason string) error {
	return c.conn.Close(code, reason)
}

// accept upgrades the request. The caller owns the returned connection.
func (s *WSServer) accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	conn, err := websocket.Accept(w, r, s.acceptOptions)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(messages.MessageBufferSize)
	return conn, nil
}

// readLoop reads messages until the connection or ctx closes. Messages from
// one connection are handled in arrival order.
func (s *WSServer) readLoop(ctx context.Context, conn *websocket.Conn, clientID uint32, send func(*messages.Message), handler MessageHandler) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == -1 && ctx.Err() == nil && !errors.Is(err, context.Canceled) {
				log.Debug("Error reading from client %d: %v", clientID, err)
			}
			log.Trace("Connection closed for client %d", clientID)
			return
		}

		message, err := messages.DeserializeMessage(data)
		if err != nil {
			log.Debug("Invalid message from client %d: %v", clientID, err)
			if msg, err := messages.NewMessage(messages.MessageTypeServerError, &messages.ServerError{Message: "invalid-message"}); err == nil {
				send(msg)
			}
			continue
		}

		handler(ctx, clientID, message)
	}
}
