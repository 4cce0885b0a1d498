package storage

import (
	"context"

	"github.com/mcoot/anagrams/internal/model"
)

// Storage defines the interface for data persistence. Implementations hand
// out and keep their own copies, so callers may mutate what they get back.
type Storage interface {
	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	GameExists(ctx context.Context, id model.GameID) (bool, error)
	ListGameIDs(ctx context.Context) ([]model.GameID, error)

	// Dictionary operations
	GetDictionaryWords(ctx context.Context) ([]string, error)
	SaveDictionaryWords(ctx context.Context, words []string) error
}
