package model

// PlayerStatus is a player's participation state. Which values are legal
// depends on the game's status:
//
//	IN_LOBBY:    PLAYING, SPECTATING
//	IN_PROGRESS: PLAYING, READY_TO_END, SPECTATING
//	ENDED:       ENDED, SPECTATING
type PlayerStatus string

const (
	PlayerPlaying    PlayerStatus = "PLAYING"
	PlayerReadyToEnd PlayerStatus = "READY_TO_END"
	PlayerSpectating PlayerStatus = "SPECTATING"
	PlayerEnded      PlayerStatus = "ENDED"
)

// Player is a participant in a single game, identified by a case-sensitive
// name that is unique within that game
type Player struct {
	Name   string       `json:"name"`
	Status PlayerStatus `json:"status"`
	Words  []string     `json:"words"`
}

// IsSpectating returns true if the player is watching rather than playing
func (p *Player) IsSpectating() bool {
	return p.Status == PlayerSpectating
}

// WordRef points at one claimed word: Players[PlayerIdx].Words[WordIdx].
// It is only a lookup key; the word it names may have moved since it was
// computed, so it must be re-resolved against current state before use.
type WordRef struct {
	PlayerIdx int `json:"player_idx"`
	WordIdx   int `json:"word_idx"`
}
