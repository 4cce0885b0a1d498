package model

// EventType identifies a realtime event pushed to game subscribers
type EventType string

const (
	EventConnected   EventType = "connected"
	EventGameUpdate  EventType = "game-update"
	EventWordClaimed EventType = "word-claimed"
	EventGameEnded   EventType = "game-ended"
)

// WordClaimedPayload describes a successful claim, sent alongside the new snapshot
type WordClaimedPayload struct {
	Player string    `json:"player"`
	Word   string    `json:"word"`
	Stolen []WordRef `json:"stolen"`
}

// ConnectedPayload is the first event a new subscriber receives
type ConnectedPayload struct {
	GameID GameID `json:"game_id"`
	Player string `json:"player,omitempty"`
}
