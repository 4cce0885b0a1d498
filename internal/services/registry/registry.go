// Package registry creates games, hands them out by id and evicts the ones
// nobody has touched in a while. It is also the only place that serializes
// access to a single game.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/anagrams/internal/dependencies/clock"
	"github.com/mcoot/anagrams/internal/dependencies/idgen"
	"github.com/mcoot/anagrams/internal/model"
	"github.com/mcoot/anagrams/internal/storage"
)

const (
	// MaxIDAttempts is how many ids are tried before creation gives up
	MaxIDAttempts = 5
	// DefaultRetention is how long an untouched game survives
	DefaultRetention = 24 * time.Hour
)

// UpdateFunc mutates a game in place and reports whether it changed
// anything a client can see
type UpdateFunc func(g *model.Game) bool

// Registry owns the set of live games
type Registry struct {
	storage   storage.Storage
	ids       idgen.Generator
	clock     clock.Clock
	logger    *slog.Logger
	limits    model.Limits
	retention time.Duration

	locksMu sync.Mutex
	locks   map[model.GameID]*gameLock

	evictMu sync.RWMutex
	onEvict []func(model.GameID)
}

// New creates a new Registry
func New(
	storage storage.Storage,
	ids idgen.Generator,
	clock clock.Clock,
	logger *slog.Logger,
	limits model.Limits,
	retention time.Duration,
) *Registry {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Registry{
		storage:   storage,
		ids:       ids,
		clock:     clock,
		logger:    logger,
		limits:    limits,
		retention: retention,
		locks:     make(map[model.GameID]*gameLock),
	}
}

// Limits returns the bounds configs are validated against
func (r *Registry) Limits() model.Limits {
	return r.limits
}

// OnEvict registers fn to be called for each game removed by cleanup
func (r *Registry) OnEvict(fn func(model.GameID)) {
	r.evictMu.Lock()
	defer r.evictMu.Unlock()
	r.onEvict = append(r.onEvict, fn)
}

// gameLock serializes access to one game id. refs counts holders and
// waiters; the entry is dropped when it reaches zero.
type gameLock struct {
	mu   sync.Mutex
	refs int
}

// acquire locks id, waiting behind any other holder
func (r *Registry) acquire(id model.GameID) *gameLock {
	r.locksMu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &gameLock{}
		r.locks[id] = l
	}
	l.refs++
	r.locksMu.Unlock()

	l.mu.Lock()
	return l
}

// release unlocks id and forgets the lock once nobody holds or waits on it
func (r *Registry) release(id model.GameID, l *gameLock) {
	l.mu.Unlock()

	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(r.locks, id)
	}
}

// CreateGame creates an empty game in the lobby. Abandoned games are
// cleaned up first.
func (r *Registry) CreateGame(ctx context.Context, config model.GameConfig) (*model.Game, error) {
	if err := config.Validate(r.limits); err != nil {
		return nil, err
	}

	if _, err := r.CleanupAbandoned(ctx); err != nil {
		r.logger.Warn("cleanup before create failed", slog.String("error", err.Error()))
	}

	now := r.clock.Now()
	for attempt := 0; attempt < MaxIDAttempts; attempt++ {
		game := &model.Game{
			ID:           model.GameID(r.ids.Next()),
			Config:       config,
			Players:      []model.Player{},
			Phase:        &model.LobbyPhase{},
			CreatedAt:    now,
			LastAccessed: now,
		}
		created, err := r.saveIfAbsent(ctx, game)
		if err != nil {
			return nil, err
		}
		if created {
			r.logger.Info("game created",
				slog.String("game_id", string(game.ID)),
				slog.String("tile_set", config.TileSet),
				slog.Bool("public", config.Public))
			return game, nil
		}
		r.logger.Debug("game id collision", slog.String("game_id", string(game.ID)), slog.Int("attempt", attempt+1))
	}
	return nil, fmt.Errorf("%w after %d attempts", model.ErrIDExhausted, MaxIDAttempts)
}

// saveIfAbsent stores game unless its id is taken. The check and the save
// happen under the id's lock.
func (r *Registry) saveIfAbsent(ctx context.Context, game *model.Game) (bool, error) {
	l := r.acquire(game.ID)
	defer r.release(game.ID, l)

	exists, err := r.storage.GameExists(ctx, game.ID)
	if err != nil || exists {
		return false, err
	}
	if err := r.storage.SaveGame(ctx, game); err != nil {
		return false, err
	}
	return true, nil
}

// GetGame returns a copy of the game and refreshes its last-accessed time
func (r *Registry) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	game, _, err := r.Update(ctx, id, func(*model.Game) bool { return false })
	return game, err
}

// Update runs fn against the game while holding the game's lock, then saves
// the result. Operations on the same game never interleave. The returned
// game is the state after fn.
func (r *Registry) Update(ctx context.Context, id model.GameID, fn UpdateFunc) (*model.Game, bool, error) {
	l := r.acquire(id)
	defer r.release(id, l)

	game, err := r.storage.GetGame(ctx, id)
	if err != nil {
		return nil, false, err
	}

	changed := fn(game)
	game.LastAccessed = r.clock.Now()

	if err := r.storage.SaveGame(ctx, game); err != nil {
		return nil, false, err
	}
	return game, changed, nil
}

// CleanupAbandoned evicts every game last accessed longer ago than the
// retention window. It returns how many were evicted.
func (r *Registry) CleanupAbandoned(ctx context.Context) (int, error) {
	ids, err := r.storage.ListGameIDs(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := r.clock.Now().Add(-r.retention)
	evicted := 0
	for _, id := range ids {
		removed, err := r.evictIfStale(ctx, id, cutoff)
		if err != nil {
			return evicted, err
		}
		if removed {
			evicted++
		}
	}

	if evicted > 0 {
		r.logger.Info("abandoned games evicted", slog.Int("count", evicted))
	}
	return evicted, nil
}

func (r *Registry) evictIfStale(ctx context.Context, id model.GameID, cutoff time.Time) (bool, error) {
	removed, game, err := r.deleteIfStale(ctx, id, cutoff)
	if err != nil || !removed {
		return false, err
	}

	r.logger.Debug("game evicted",
		slog.String("game_id", string(id)),
		slog.Time("last_accessed", game.LastAccessed))

	r.evictMu.RLock()
	hooks := append([]func(model.GameID){}, r.onEvict...)
	r.evictMu.RUnlock()
	for _, fn := range hooks {
		fn(id)
	}
	return true, nil
}

func (r *Registry) deleteIfStale(ctx context.Context, id model.GameID, cutoff time.Time) (bool, *model.Game, error) {
	l := r.acquire(id)
	defer r.release(id, l)

	game, err := r.storage.GetGame(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrGameNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}
	if !game.LastAccessed.Before(cutoff) {
		return false, nil, nil
	}
	if err := r.storage.DeleteGame(ctx, id); err != nil {
		return false, nil, err
	}
	return true, game, nil
}

// PublicGames returns snapshots of every game marked public. Listing does
// not count as accessing a game.
func (r *Registry) PublicGames(ctx context.Context) (map[model.GameID]model.Snapshot, error) {
	ids, err := r.storage.ListGameIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[model.GameID]model.Snapshot)
	for _, id := range ids {
		game, err := r.storage.GetGame(ctx, id)
		if err != nil {
			if errors.Is(err, model.ErrGameNotFound) {
				continue
			}
			return nil, err
		}
		if game.Config.Public {
			result[id] = game.Snapshot()
		}
	}
	return result, nil
}
