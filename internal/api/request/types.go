package request

import (
	"time"

	"github.com/mcoot/anagrams/internal/model"
)

// ConfigRequest is the request body for creating a game or changing its
// config. Omitted fields keep their current (or default) value.
type ConfigRequest struct {
	TileSet               *string `json:"tile_set,omitempty"`
	Public                *bool   `json:"public,omitempty"`
	EndgameTimeoutSeconds *int    `json:"endgame_timeout_seconds,omitempty"`
	MaxPlayers            *int    `json:"max_players,omitempty"`
}

// Apply overlays the request onto base
func (r ConfigRequest) Apply(base model.GameConfig) model.GameConfig {
	if r.TileSet != nil {
		base.TileSet = *r.TileSet
	}
	if r.Public != nil {
		base.Public = *r.Public
	}
	if r.EndgameTimeoutSeconds != nil {
		base.EndgameTimeout = time.Duration(*r.EndgameTimeoutSeconds) * time.Second
	}
	if r.MaxPlayers != nil {
		base.MaxPlayers = *r.MaxPlayers
	}
	return base
}

// AddPlayerRequest is the request body for joining a game
type AddPlayerRequest struct {
	Name string `json:"name"`
}

// RenamePlayerRequest is the request body for renaming a player
type RenamePlayerRequest struct {
	NewName string `json:"new_name"`
}

// Player status changes accepted by SetStatusRequest
const (
	StatusSpectate = "spectate"
	StatusPlay     = "play"
	StatusReady    = "ready"
	StatusUnready  = "unready"
)

// SetStatusRequest is the request body for changing a player's status
type SetStatusRequest struct {
	Status string `json:"status"`
}

// AddTileRequest is the request body for drawing a tile
type AddTileRequest struct {
	Player string `json:"player"`
}

// ClaimRequest is the request body for claiming a word. Claim names the
// words to steal; omitted or null picks the best claim automatically and an
// empty list takes every letter from the pool.
type ClaimRequest struct {
	Player string           `json:"player"`
	Word   string           `json:"word"`
	Claim  *[]model.WordRef `json:"claim,omitempty"`
}

// Explicit returns the requested steal set, or nil for automatic selection
func (r ClaimRequest) Explicit() []model.WordRef {
	if r.Claim == nil {
		return nil
	}
	if *r.Claim == nil {
		return []model.WordRef{}
	}
	return *r.Claim
}
