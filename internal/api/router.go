package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/anagrams/internal/api/handler"
	apimiddleware "github.com/mcoot/anagrams/internal/api/middleware"
	"github.com/mcoot/anagrams/internal/middleware"
	"github.com/mcoot/anagrams/internal/realtime"
	"github.com/mcoot/anagrams/internal/services/game"
	"github.com/mcoot/anagrams/internal/services/registry"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Registry       *registry.Registry
	GameController *game.Controller
	HubManager     *realtime.HubManager
	Broadcaster    *realtime.Broadcaster
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(cfg.Registry, cfg.GameController, cfg.HubManager, cfg.Broadcaster, cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(apimiddleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	games := api.PathPrefix("/games").Subrouter()
	games.HandleFunc("", gameHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("/public", gameHandler.Public).Methods(http.MethodGet)
	games.HandleFunc("/{id}", gameHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/{id}/events", gameHandler.Events).Methods(http.MethodGet)
	games.HandleFunc("/{id}/ws", gameHandler.WebSocket).Methods(http.MethodGet)
	games.HandleFunc("/{id}/config", gameHandler.UpdateConfig).Methods(http.MethodPatch)

	// Players
	games.HandleFunc("/{id}/players", gameHandler.AddPlayer).Methods(http.MethodPost)
	games.HandleFunc("/{id}/players/{name}", gameHandler.RenamePlayer).Methods(http.MethodPatch)
	games.HandleFunc("/{id}/players/{name}/status", gameHandler.SetPlayerStatus).Methods(http.MethodPut)

	// Lifecycle
	games.HandleFunc("/{id}/start", gameHandler.Start).Methods(http.MethodPost)
	games.HandleFunc("/{id}/rematch", gameHandler.Rematch).Methods(http.MethodPost)
	games.HandleFunc("/{id}/lobby", gameHandler.BackToLobby).Methods(http.MethodPost)

	// Play
	games.HandleFunc("/{id}/tiles", gameHandler.AddTile).Methods(http.MethodPost)
	games.HandleFunc("/{id}/claims", gameHandler.Claim).Methods(http.MethodPost)

	return r
}
