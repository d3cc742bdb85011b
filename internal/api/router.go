package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/netznav/navigator/internal/api/handler"
	apimiddleware "github.com/netznav/navigator/internal/api/middleware"
	"github.com/netznav/navigator/internal/middleware"
	"github.com/netznav/navigator/internal/services/room"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	Logger      *slog.Logger
	Registry    *room.Registry
	Connections handler.ConnectionCounter
	// Socket is the websocket endpoint. It is mounted outside the API
	// subrouter: the upgrade needs the raw http.ResponseWriter, which the
	// logging wrapper would hide.
	Socket http.Handler
}

// NewRouter creates the full HTTP router: the inspection API plus the
// websocket endpoint the game clients connect to.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.Registry, cfg.Connections)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/stats", roomHandler.Stats).Methods(http.MethodGet)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	r.Handle("/ws", cfg.Socket).Methods(http.MethodGet)

	// Applied around the whole router so preflight OPTIONS requests are
	// answered before mux method matching rejects them. The handler passes
	// the ResponseWriter through untouched, so the websocket upgrade still
	// sees its http.Hijacker.
	return middleware.CORS(r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
