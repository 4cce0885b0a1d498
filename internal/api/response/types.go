package response

import (
	"encoding/json"
	"time"

	"github.com/mcoot/anagrams/internal/model"
)

// CreateGameResponse is the response for creating a game
type CreateGameResponse struct {
	GameID string         `json:"game_id"`
	Game   model.Snapshot `json:"game"`
}

// ActionResponse is the response for every game action. Changed is false
// when the action was not valid for the game's current state.
type ActionResponse struct {
	Changed bool           `json:"changed"`
	Game    model.Snapshot `json:"game"`
}

// ClaimResponse is the response for a word claim
type ClaimResponse struct {
	Claimed bool           `json:"claimed"`
	Game    model.Snapshot `json:"game"`
}

// HealthResponse is the response for the health check
type HealthResponse struct {
	Status string `json:"status"`
}

// GameView is the client-side decoding of any snapshot. Fields that do not
// exist in the snapshot's status are left zero.
type GameView struct {
	Status          model.GameStatus   `json:"status"`
	Config          model.GameConfig   `json:"config"`
	Players         []model.PlayerView `json:"players"`
	CurrPlayerIdx   int                `json:"curr_player_idx"`
	Tiles           string             `json:"tiles"`
	TilesLeft       int                `json:"tiles_left"`
	EndgameDeadline *time.Time         `json:"endgame_deadline"`
}

// CurrentPlayer returns the name of the player whose turn it is, if any
func (v GameView) CurrentPlayer() string {
	if v.Status != model.StatusInProgress || v.CurrPlayerIdx < 0 || v.CurrPlayerIdx >= len(v.Players) {
		return ""
	}
	return v.Players[v.CurrPlayerIdx].Name
}

// CreateGameResult decodes a CreateGameResponse
type CreateGameResult struct {
	GameID string   `json:"game_id"`
	Game   GameView `json:"game"`
}

// ActionResult decodes an ActionResponse or ClaimResponse
type ActionResult struct {
	Changed bool     `json:"changed"`
	Claimed bool     `json:"claimed"`
	Game    GameView `json:"game"`
}

// OK reports whether the action took effect
func (r ActionResult) OK() bool {
	return r.Changed || r.Claimed
}

// Event is one realtime event as delivered to clients
type Event struct {
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data"`
}
