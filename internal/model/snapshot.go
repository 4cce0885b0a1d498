package model

import "time"

// Snapshot is the client-visible view of a game. The concrete type depends on
// the game's status and never carries bag contents or timer state.
type Snapshot interface {
	SnapshotStatus() GameStatus
}

// LobbyPlayerView is a player as shown in the lobby
type LobbyPlayerView struct {
	Name   string       `json:"name"`
	Status PlayerStatus `json:"status"`
}

// PlayerView is a player with their claimed words
type PlayerView struct {
	Name   string       `json:"name"`
	Status PlayerStatus `json:"status"`
	Words  []string     `json:"words"`
}

// LobbySnapshot is the view of an IN_LOBBY game
type LobbySnapshot struct {
	Status  GameStatus        `json:"status"`
	Config  GameConfig        `json:"config"`
	Players []LobbyPlayerView `json:"players"`
}

// InProgressSnapshot is the view of an IN_PROGRESS game
type InProgressSnapshot struct {
	Status          GameStatus   `json:"status"`
	Config          GameConfig   `json:"config"`
	Players         []PlayerView `json:"players"`
	CurrPlayerIdx   int          `json:"curr_player_idx"`
	Tiles           string       `json:"tiles"`
	TilesLeft       int          `json:"tiles_left"`
	EndgameDeadline *time.Time   `json:"endgame_deadline"`
}

// EndedSnapshot is the view of an ENDED game
type EndedSnapshot struct {
	Status  GameStatus   `json:"status"`
	Config  GameConfig   `json:"config"`
	Players []PlayerView `json:"players"`
	Tiles   string       `json:"tiles"`
}

// SnapshotStatus returns IN_LOBBY
func (LobbySnapshot) SnapshotStatus() GameStatus { return StatusInLobby }

// SnapshotStatus returns IN_PROGRESS
func (InProgressSnapshot) SnapshotStatus() GameStatus { return StatusInProgress }

// SnapshotStatus returns ENDED
func (EndedSnapshot) SnapshotStatus() GameStatus { return StatusEnded }

// Snapshot builds the client-visible view of the game
func (g *Game) Snapshot() Snapshot {
	switch phase := g.Phase.(type) {
	case *InProgressPhase:
		var deadline *time.Time
		if phase.EndgameDeadline != nil {
			d := *phase.EndgameDeadline
			deadline = &d
		}
		return InProgressSnapshot{
			Status:          StatusInProgress,
			Config:          g.Config,
			Players:         g.playerViews(),
			CurrPlayerIdx:   phase.CurrPlayerIdx,
			Tiles:           phase.Tiles,
			TilesLeft:       len(phase.TilesLeft),
			EndgameDeadline: deadline,
		}
	case *EndedPhase:
		return EndedSnapshot{
			Status:  StatusEnded,
			Config:  g.Config,
			Players: g.playerViews(),
			Tiles:   phase.Tiles,
		}
	default:
		players := make([]LobbyPlayerView, len(g.Players))
		for i, p := range g.Players {
			players[i] = LobbyPlayerView{Name: p.Name, Status: p.Status}
		}
		return LobbySnapshot{
			Status:  StatusInLobby,
			Config:  g.Config,
			Players: players,
		}
	}
}

func (g *Game) playerViews() []PlayerView {
	views := make([]PlayerView, len(g.Players))
	for i, p := range g.Players {
		words := make([]string, len(p.Words))
		copy(words, p.Words)
		views[i] = PlayerView{Name: p.Name, Status: p.Status, Words: words}
	}
	return views
}
