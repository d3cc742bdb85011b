package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/netznav/navigator/internal/transport"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin policy is fully open, matching the open CORS stance of the
	// rest of the service. Restrict before exposing publicly.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests to websocket connections and runs their
// pumps
type Handler struct {
	hub     *Hub
	handler MessageHandler
	logger  *slog.Logger
}

// NewHandler creates a websocket endpoint handler
func NewHandler(hub *Hub, handler MessageHandler, logger *slog.Logger) *Handler {
	return &Handler{
		hub:     hub,
		handler: handler,
		logger:  logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP handles GET /ws
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", slog.Any("error", err))
		return
	}

	// Mint the connection id; player ids are derived from it and it is
	// never reused
	id := transport.ConnID(uuid.NewString())
	client := NewClient(h.hub, id, conn)
	h.hub.Register(client)

	go client.writePump()
	// The read pump owns teardown: it fires the dispatcher's disconnect
	// path and unregisters the client when the socket drops. The request
	// context dies with ServeHTTP, so the pump gets a fresh one.
	go client.readPump(context.Background(), h.handler, h.logger)
}
