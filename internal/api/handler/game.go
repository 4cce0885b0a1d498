package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/anagrams/internal/api/apierr"
	"github.com/mcoot/anagrams/internal/api/request"
	"github.com/mcoot/anagrams/internal/api/response"
	"github.com/mcoot/anagrams/internal/model"
	"github.com/mcoot/anagrams/internal/realtime"
	"github.com/mcoot/anagrams/internal/services/game"
	"github.com/mcoot/anagrams/internal/services/registry"
)

// GameHandler handles game-related endpoints
type GameHandler struct {
	registry       *registry.Registry
	gameController *game.Controller
	hubManager     *realtime.HubManager
	broadcaster    *realtime.Broadcaster
	logger         *slog.Logger
}

// NewGameHandler creates a new game handler. The broadcaster may be nil, in
// which case changes are not pushed to subscribers.
func NewGameHandler(
	registry *registry.Registry,
	gameController *game.Controller,
	hubManager *realtime.HubManager,
	broadcaster *realtime.Broadcaster,
	logger *slog.Logger,
) *GameHandler {
	return &GameHandler{
		registry:       registry,
		gameController: gameController,
		hubManager:     hubManager,
		broadcaster:    broadcaster,
		logger:         logger,
	}
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}

// decode reads a JSON body into v. An empty body is only accepted when
// optional is set.
func decode(r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return nil
	}
	return apierr.NewInvalidRequestError("invalid request body")
}

// respond writes the outcome of an action and pushes changes to subscribers
func (h *GameHandler) respond(w http.ResponseWriter, r *http.Request, res *game.Result, err error) {
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	if res.Changed && h.broadcaster != nil {
		h.broadcaster.BroadcastGame(r.Context(), res.Game)
	}
	response.JSON(w, http.StatusOK, response.ActionResponse{
		Changed: res.Changed,
		Game:    res.Game.Snapshot(),
	})
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.ConfigRequest
	if err := decode(r, &req, true); err != nil {
		apierr.WriteError(w, err)
		return
	}

	g, err := h.registry.CreateGame(r.Context(), req.Apply(model.DefaultGameConfig()))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreateGameResponse{
		GameID: string(g.ID),
		Game:   g.Snapshot(),
	})
}

// Public handles GET /api/v1/games/public
func (h *GameHandler) Public(w http.ResponseWriter, r *http.Request) {
	games, err := h.registry.PublicGames(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, games)
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.GetGame(r.Context(), gameID(r))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, g.Snapshot())
}

// initialMessages builds what a new subscriber sees before any broadcast:
// the connected event and the current snapshot
func (h *GameHandler) initialMessages(g *model.Game, player string) ([]realtime.Message, error) {
	connected, err := realtime.NewMessage(model.EventConnected, model.ConnectedPayload{
		GameID: g.ID,
		Player: player,
	})
	if err != nil {
		return nil, err
	}
	snapshot, err := realtime.SnapshotMessage(g)
	if err != nil {
		return nil, err
	}
	return []realtime.Message{connected, snapshot}, nil
}

// subscribe resolves the game and hub for a realtime endpoint. It writes the
// error response itself and returns ok=false on failure.
func (h *GameHandler) subscribe(w http.ResponseWriter, r *http.Request) (*realtime.Hub, []realtime.Message, bool) {
	g, err := h.gameController.GetGame(r.Context(), gameID(r))
	if err != nil {
		apierr.WriteError(w, err)
		return nil, nil, false
	}
	initial, err := h.initialMessages(g, r.URL.Query().Get("player"))
	if err != nil {
		h.logger.Error("failed to build initial events",
			slog.String("game_id", string(g.ID)),
			slog.Any("error", err))
		apierr.WriteError(w, apierr.NewInternalError())
		return nil, nil, false
	}
	return h.hubManager.GetOrCreateHub(g.ID), initial, true
}

// Events handles GET /api/v1/games/{id}/events (server-sent events)
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	hub, initial, ok := h.subscribe(w, r)
	if !ok {
		return
	}
	realtime.ServeSSE(w, r, hub, r.URL.Query().Get("player"), initial...)
}

// WebSocket handles GET /api/v1/games/{id}/ws
func (h *GameHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	hub, initial, ok := h.subscribe(w, r)
	if !ok {
		return
	}
	realtime.ServeWebSocket(w, r, hub, r.URL.Query().Get("player"), h.logger, initial...)
}

// AddPlayer handles POST /api/v1/games/{id}/players
func (h *GameHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	var req request.AddPlayerRequest
	if err := decode(r, &req, false); err != nil {
		apierr.WriteError(w, err)
		return
	}
	res, err := h.gameController.AddPlayer(r.Context(), gameID(r), req.Name)
	h.respond(w, r, res, err)
}

// RenamePlayer handles PATCH /api/v1/games/{id}/players/{name}
func (h *GameHandler) RenamePlayer(w http.ResponseWriter, r *http.Request) {
	var req request.RenamePlayerRequest
	if err := decode(r, &req, false); err != nil {
		apierr.WriteError(w, err)
		return
	}
	res, err := h.gameController.RenamePlayer(r.Context(), gameID(r), mux.Vars(r)["name"], req.NewName)
	h.respond(w, r, res, err)
}

// SetPlayerStatus handles PUT /api/v1/games/{id}/players/{name}/status
func (h *GameHandler) SetPlayerStatus(w http.ResponseWriter, r *http.Request) {
	var req request.SetStatusRequest
	if err := decode(r, &req, false); err != nil {
		apierr.WriteError(w, err)
		return
	}

	id, name := gameID(r), mux.Vars(r)["name"]
	var (
		res *game.Result
		err error
	)
	switch strings.ToLower(req.Status) {
	case request.StatusSpectate:
		res, err = h.gameController.SetPlayerSpectating(r.Context(), id, name)
	case request.StatusPlay:
		res, err = h.gameController.SetPlayerPlaying(r.Context(), id, name)
	case request.StatusReady:
		res, err = h.gameController.SetPlayerReadyToEnd(r.Context(), id, name)
	case request.StatusUnready:
		res, err = h.gameController.SetPlayerNotReadyToEnd(r.Context(), id, name)
	default:
		apierr.WriteError(w, apierr.NewInvalidRequestError("status must be one of spectate, play, ready, unready"))
		return
	}
	h.respond(w, r, res, err)
}

// UpdateConfig handles PATCH /api/v1/games/{id}/config
func (h *GameHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req request.ConfigRequest
	if err := decode(r, &req, false); err != nil {
		apierr.WriteError(w, err)
		return
	}

	g, err := h.gameController.GetGame(r.Context(), gameID(r))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	res, err := h.gameController.UpdateGameConfig(r.Context(), g.ID, req.Apply(g.Config))
	h.respond(w, r, res, err)
}

// Start handles POST /api/v1/games/{id}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	res, err := h.gameController.StartGame(r.Context(), gameID(r))
	h.respond(w, r, res, err)
}

// Rematch handles POST /api/v1/games/{id}/rematch
func (h *GameHandler) Rematch(w http.ResponseWriter, r *http.Request) {
	res, err := h.gameController.Rematch(r.Context(), gameID(r))
	h.respond(w, r, res, err)
}

// BackToLobby handles POST /api/v1/games/{id}/lobby
func (h *GameHandler) BackToLobby(w http.ResponseWriter, r *http.Request) {
	res, err := h.gameController.BackToLobby(r.Context(), gameID(r))
	h.respond(w, r, res, err)
}

// AddTile handles POST /api/v1/games/{id}/tiles
func (h *GameHandler) AddTile(w http.ResponseWriter, r *http.Request) {
	var req request.AddTileRequest
	if err := decode(r, &req, false); err != nil {
		apierr.WriteError(w, err)
		return
	}
	res, err := h.gameController.AddTile(r.Context(), gameID(r), req.Player)
	h.respond(w, r, res, err)
}

// Claim handles POST /api/v1/games/{id}/claims
func (h *GameHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req request.ClaimRequest
	if err := decode(r, &req, false); err != nil {
		apierr.WriteError(w, err)
		return
	}

	res, err := h.gameController.ClaimWord(r.Context(), gameID(r), req.Player, req.Word, req.Explicit())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	if res.Changed && h.broadcaster != nil {
		stolen := []model.WordRef{}
		if res.Claim != nil && res.Claim.Stolen != nil {
			stolen = res.Claim.Stolen
		}
		h.broadcaster.BroadcastClaim(r.Context(), res.Game, model.WordClaimedPayload{
			Player: req.Player,
			Word:   strings.ToUpper(strings.TrimSpace(req.Word)),
			Stolen: stolen,
		})
	}

	response.JSON(w, http.StatusOK, response.ClaimResponse{
		Claimed: res.Changed,
		Game:    res.Game.Snapshot(),
	})
}

// Health handles GET /api/v1/health
func Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}
