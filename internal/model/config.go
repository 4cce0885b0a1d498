package model

import (
	"fmt"
	"time"
)

// Tile set names selectable in a game config
const (
	TileSetStandard = "standard"
	TileSetHalf     = "half"
	TileSetQuick    = "quick"
)

// GameConfig holds the per-game settings editable in the lobby
type GameConfig struct {
	TileSet        string        `json:"tile_set"`
	Public         bool          `json:"public"`
	EndgameTimeout time.Duration `json:"endgame_timeout"`
	MaxPlayers     int           `json:"max_players"` // cap on non-spectating players
}

// DefaultGameConfig returns the configuration new games start with
func DefaultGameConfig() GameConfig {
	return GameConfig{
		TileSet:        TileSetStandard,
		Public:         false,
		EndgameTimeout: 30 * time.Second,
		MaxPlayers:     8,
	}
}

// Limits bounds the values a GameConfig may take
type Limits struct {
	MinEndgameTimeout time.Duration
	MaxEndgameTimeout time.Duration
	MaxPlayerCap      int
}

// DefaultLimits returns the server-wide config bounds
func DefaultLimits() Limits {
	return Limits{
		MinEndgameTimeout: 10 * time.Second,
		MaxEndgameTimeout: 120 * time.Second,
		MaxPlayerCap:      16,
	}
}

// Validate checks the config against the limits
func (c GameConfig) Validate(limits Limits) error {
	switch c.TileSet {
	case TileSetStandard, TileSetHalf, TileSetQuick:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTileSet, c.TileSet)
	}
	if c.EndgameTimeout < limits.MinEndgameTimeout || c.EndgameTimeout > limits.MaxEndgameTimeout {
		return fmt.Errorf("%w: endgame timeout %s outside [%s, %s]",
			ErrInvalidConfig, c.EndgameTimeout, limits.MinEndgameTimeout, limits.MaxEndgameTimeout)
	}
	if c.MaxPlayers < 2 || c.MaxPlayers > limits.MaxPlayerCap {
		return fmt.Errorf("%w: max players %d outside [2, %d]", ErrInvalidConfig, c.MaxPlayers, limits.MaxPlayerCap)
	}
	return nil
}
