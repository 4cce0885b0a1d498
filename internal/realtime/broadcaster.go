package realtime

import (
	"context"
	"log/slog"

	"github.com/mcoot/anagrams/internal/model"
)

// Broadcaster turns game changes into events on the game's hub
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "broadcaster")),
	}
}

// SnapshotMessage builds the game-update event for a game
func SnapshotMessage(game *model.Game) (Message, error) {
	return NewMessage(model.EventGameUpdate, game.Snapshot())
}

// BroadcastGame sends the game's snapshot to its subscribers, plus a
// game-ended event when the game has just finished
func (b *Broadcaster) BroadcastGame(ctx context.Context, game *model.Game) {
	hub := b.hubManager.GetHub(game.ID)
	if hub == nil {
		return
	}

	msg, err := SnapshotMessage(game)
	if err != nil {
		b.logger.Error("failed to encode snapshot",
			slog.String("game_id", string(game.ID)),
			slog.Any("error", err))
		return
	}
	hub.Broadcast(msg)

	if game.Status() == model.StatusEnded {
		ended, err := NewMessage(model.EventGameEnded, game.Snapshot())
		if err != nil {
			return
		}
		hub.Broadcast(ended)
	}
}

// BroadcastClaim announces a successful claim ahead of the new snapshot
func (b *Broadcaster) BroadcastClaim(ctx context.Context, game *model.Game, payload model.WordClaimedPayload) {
	hub := b.hubManager.GetHub(game.ID)
	if hub == nil {
		return
	}

	msg, err := NewMessage(model.EventWordClaimed, payload)
	if err != nil {
		b.logger.Error("failed to encode claim",
			slog.String("game_id", string(game.ID)),
			slog.Any("error", err))
		return
	}
	hub.Broadcast(msg)
	b.BroadcastGame(ctx, game)
}

// GameUpdated broadcasts a change nobody requested, such as a timed end
func (b *Broadcaster) GameUpdated(ctx context.Context, game *model.Game) {
	b.logger.Info("broadcasting unrequested update",
		slog.String("game_id", string(game.ID)),
		slog.String("status", string(game.Status())))
	b.BroadcastGame(ctx, game)
}

// GameEvicted disconnects everyone watching a game that no longer exists
func (b *Broadcaster) GameEvicted(gameID model.GameID) {
	b.hubManager.RemoveHub(gameID)
}
