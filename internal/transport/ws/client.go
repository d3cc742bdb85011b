package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/netznav/navigator/internal/transport"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// MessageHandler consumes inbound frames and connection teardown. The
// event dispatcher implements it.
type MessageHandler interface {
	HandleMessage(ctx context.Context, conn transport.ConnID, frame []byte)
	HandleDisconnect(ctx context.Context, conn transport.ConnID)
}

// Client is one live websocket connection
type Client struct {
	id   transport.ConnID
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient creates a client for an upgraded connection. conn may be nil
// in tests that only exercise hub delivery via the send channel.
func NewClient(hub *Hub, id transport.ConnID, conn *websocket.Conn) *Client {
	return &Client{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// ID returns the connection id
func (c *Client) ID() transport.ConnID {
	return c.id
}

// readPump reads frames off the socket and feeds them to the handler.
// It runs until the connection drops, then triggers the disconnect path.
func (c *Client) readPump(ctx context.Context, handler MessageHandler, logger *slog.Logger) {
	defer func() {
		handler.HandleDisconnect(ctx, c.id)
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("unexpected close",
					slog.String("conn", string(c.id)),
					slog.Any("error", err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if !json.Valid(frame) {
			logger.Warn("dropping malformed frame", slog.String("conn", string(c.id)))
			continue
		}
		handler.HandleMessage(ctx, c.id, frame)
	}
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
