package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// GameID uniquely identifies a game
type GameID string

// GameStatus is the discriminant of a game's phase
type GameStatus string

const (
	StatusInLobby    GameStatus = "IN_LOBBY"
	StatusInProgress GameStatus = "IN_PROGRESS"
	StatusEnded      GameStatus = "ENDED"
)

// Phase holds the fields that only exist in one game status. It is a closed
// set: *LobbyPhase, *InProgressPhase and *EndedPhase.
type Phase interface {
	Status() GameStatus
	clonePhase() Phase
}

// LobbyPhase is a game waiting for players
type LobbyPhase struct{}

// Status returns IN_LOBBY
func (*LobbyPhase) Status() GameStatus { return StatusInLobby }

func (p *LobbyPhase) clonePhase() Phase { return &LobbyPhase{} }

// InProgressPhase is a game being played
type InProgressPhase struct {
	Tiles           string     `json:"tiles"`      // face-up pool, in draw order
	TilesLeft       string     `json:"tiles_left"` // undrawn bag
	CurrPlayerIdx   int        `json:"curr_player_idx"`
	EndgameDeadline *time.Time `json:"endgame_deadline,omitempty"`
}

// Status returns IN_PROGRESS
func (*InProgressPhase) Status() GameStatus { return StatusInProgress }

func (p *InProgressPhase) clonePhase() Phase {
	c := *p
	if p.EndgameDeadline != nil {
		d := *p.EndgameDeadline
		c.EndgameDeadline = &d
	}
	return &c
}

// EndedPhase is a finished game
type EndedPhase struct {
	Tiles string `json:"tiles"` // unclaimed pool at the end
}

// Status returns ENDED
func (*EndedPhase) Status() GameStatus { return StatusEnded }

func (p *EndedPhase) clonePhase() Phase {
	c := *p
	return &c
}

// Game is the authoritative state of one game session
type Game struct {
	ID           GameID
	Config       GameConfig
	Players      []Player
	Phase        Phase
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Status returns the game's current status
func (g *Game) Status() GameStatus {
	if g.Phase == nil {
		return StatusInLobby
	}
	return g.Phase.Status()
}

// GetPlayer returns the player with the given name and its index, or nil, -1
func (g *Game) GetPlayer(name string) (*Player, int) {
	for i := range g.Players {
		if g.Players[i].Name == name {
			return &g.Players[i], i
		}
	}
	return nil, -1
}

// ActivePlayerCount returns the number of non-spectating players
func (g *Game) ActivePlayerCount() int {
	count := 0
	for _, p := range g.Players {
		if !p.IsSpectating() {
			count++
		}
	}
	return count
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	c := *g
	c.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		c.Players[i] = p
		if p.Words != nil {
			c.Players[i].Words = append([]string{}, p.Words...)
		}
	}
	if g.Phase != nil {
		c.Phase = g.Phase.clonePhase()
	}
	return &c
}

// gameJSON is the storage encoding of Game; Phase is tagged by Status
type gameJSON struct {
	ID           GameID          `json:"id"`
	Status       GameStatus      `json:"status"`
	Config       GameConfig      `json:"config"`
	Players      []Player        `json:"players"`
	Phase        json.RawMessage `json:"phase"`
	CreatedAt    time.Time       `json:"created_at"`
	LastAccessed time.Time       `json:"last_accessed"`
}

// MarshalJSON encodes the game with its phase tagged by status
func (g *Game) MarshalJSON() ([]byte, error) {
	phase := g.Phase
	if phase == nil {
		phase = &LobbyPhase{}
	}
	raw, err := json.Marshal(phase)
	if err != nil {
		return nil, err
	}
	return json.Marshal(gameJSON{
		ID:           g.ID,
		Status:       phase.Status(),
		Config:       g.Config,
		Players:      g.Players,
		Phase:        raw,
		CreatedAt:    g.CreatedAt,
		LastAccessed: g.LastAccessed,
	})
}

// UnmarshalJSON decodes a game encoded by MarshalJSON
func (g *Game) UnmarshalJSON(data []byte) error {
	var gj gameJSON
	if err := json.Unmarshal(data, &gj); err != nil {
		return err
	}

	var phase Phase
	switch gj.Status {
	case StatusInLobby:
		phase = &LobbyPhase{}
	case StatusInProgress:
		phase = &InProgressPhase{}
	case StatusEnded:
		phase = &EndedPhase{}
	default:
		return fmt.Errorf("unknown game status %q", gj.Status)
	}
	if len(gj.Phase) > 0 {
		if err := json.Unmarshal(gj.Phase, phase); err != nil {
			return err
		}
	}

	*g = Game{
		ID:           gj.ID,
		Config:       gj.Config,
		Players:      gj.Players,
		Phase:        phase,
		CreatedAt:    gj.CreatedAt,
		LastAccessed: gj.LastAccessed,
	}
	return nil
}
