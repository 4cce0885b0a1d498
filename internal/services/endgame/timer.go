// Package endgame schedules the forced end of games whose bag is empty and
// whose players have started signalling they are done.
package endgame

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/anagrams/internal/dependencies/clock"
	"github.com/mcoot/anagrams/internal/model"
)

// ExpireFunc is called when an armed timer fires. The deadline is the one the
// timer was armed with, so the callback can tell whether it is stale.
type ExpireFunc func(gameID model.GameID, deadline time.Time)

type entry struct {
	timer    clock.Timer
	deadline time.Time
}

// Timers holds at most one pending countdown per game
type Timers struct {
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.Mutex
	pending map[model.GameID]entry
}

// New creates an empty set of timers
func New(clk clock.Clock, logger *slog.Logger) *Timers {
	return &Timers{
		clock:   clk,
		logger:  logger,
		pending: make(map[model.GameID]entry),
	}
}

// Arm schedules onExpire to run after d, replacing any existing countdown for
// the game. It returns the deadline.
func (t *Timers) Arm(gameID model.GameID, d time.Duration, onExpire ExpireFunc) time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.pending[gameID]; ok {
		existing.timer.Stop()
	}

	deadline := t.clock.Now().Add(d)
	var timer clock.Timer
	timer = t.clock.AfterFunc(d, func() {
		t.mu.Lock()
		current, ok := t.pending[gameID]
		if ok && current.timer == timer {
			delete(t.pending, gameID)
		}
		t.mu.Unlock()

		t.logger.Info("endgame timer fired",
			slog.String("game_id", string(gameID)),
			slog.Time("deadline", deadline))
		onExpire(gameID, deadline)
	})
	t.pending[gameID] = entry{timer: timer, deadline: deadline}

	t.logger.Debug("endgame timer armed",
		slog.String("game_id", string(gameID)),
		slog.Duration("duration", d))
	return deadline
}

// Cancel stops the game's countdown if there is one
func (t *Timers) Cancel(gameID model.GameID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing, ok := t.pending[gameID]
	if !ok {
		return false
	}
	delete(t.pending, gameID)
	existing.timer.Stop()

	t.logger.Debug("endgame timer cancelled", slog.String("game_id", string(gameID)))
	return true
}

// Deadline returns the pending deadline for the game, if any
func (t *Timers) Deadline(gameID model.GameID) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.pending[gameID]
	return e.deadline, ok
}

// Armed returns true if the game has a pending countdown
func (t *Timers) Armed(gameID model.GameID) bool {
	_, ok := t.Deadline(gameID)
	return ok
}
