package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/netznav/navigator/internal/api/apierr"
	"github.com/netznav/navigator/internal/api/response"
	"github.com/netznav/navigator/internal/model"
	"github.com/netznav/navigator/internal/services/room"
)

// ConnectionCounter reports how many live connections the transport holds
type ConnectionCounter interface {
	ConnectionCount() int
}

// RoomHandler serves the read-only room inspection endpoints
type RoomHandler struct {
	registry    *room.Registry
	connections ConnectionCounter
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(registry *room.Registry, connections ConnectionCounter) *RoomHandler {
	return &RoomHandler{
		registry:    registry,
		connections: connections,
	}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.registry.ListIDs(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	summaries := make([]response.RoomSummary, 0, len(ids))
	for _, id := range ids {
		rm, err := h.registry.Get(r.Context(), id)
		if err != nil {
			// Room expired or was deleted between list and fetch
			if errors.Is(err, model.ErrRoomNotFound) {
				continue
			}
			apierr.WriteError(w, err)
			return
		}
		summaries = append(summaries, response.RoomSummaryFromModel(rm))
	}

	response.JSON(w, http.StatusOK, response.RoomList{Rooms: summaries})
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(mux.Vars(r)["code"])

	rm, err := h.registry.Get(r.Context(), model.RoomID(code))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(rm))
}

// Stats handles GET /api/v1/stats
func (h *RoomHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ids, err := h.registry.ListIDs(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Stats{
		Rooms:       len(ids),
		Connections: h.connections.ConnectionCount(),
	})
}
