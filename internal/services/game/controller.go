package game

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mcoot/anagrams/internal/model"
	"github.com/mcoot/anagrams/internal/services/claim"
	"github.com/mcoot/anagrams/internal/services/endgame"
	"github.com/mcoot/anagrams/internal/services/registry"
	"github.com/mcoot/anagrams/internal/services/tiles"
)

// MaxNameLength bounds player names
const MaxNameLength = 24

// WordValidator decides whether a word may be claimed at all
type WordValidator interface {
	IsValidWord(word string) bool
}

// Notifier is told about changes that no request triggered, such as the
// endgame timer ending a game
type Notifier interface {
	GameUpdated(ctx context.Context, game *model.Game)
}

// Options tweak rule enforcement
type Options struct {
	// SkipTurnCheck lets any player draw a tile regardless of whose turn it is
	SkipTurnCheck bool
}

// Result is the outcome of a game operation. Changed is false when the
// operation was not valid in the game's current state; that is not an error.
type Result struct {
	Game    *model.Game
	Changed bool

	// Claim is set by a successful ClaimWord
	Claim *claim.Claim
}

// Controller manages the game state machine and turn flow
type Controller struct {
	registry *registry.Registry
	words    WordValidator
	drawer   tiles.Drawer
	timers   *endgame.Timers
	notifier Notifier
	logger   *slog.Logger
	opts     Options
}

// NewController creates a new GameController
func NewController(
	registry *registry.Registry,
	words WordValidator,
	drawer tiles.Drawer,
	timers *endgame.Timers,
	notifier Notifier,
	logger *slog.Logger,
	opts Options,
) *Controller {
	return &Controller{
		registry: registry,
		words:    words,
		drawer:   drawer,
		timers:   timers,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
	}
}

// SetNotifier replaces the notifier. It exists so the transport can be built
// after the controller.
func (c *Controller) SetNotifier(n Notifier) {
	c.notifier = n
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.registry.GetGame(ctx, gameID)
}

func (c *Controller) update(ctx context.Context, gameID model.GameID, fn registry.UpdateFunc) (*Result, error) {
	game, changed, err := c.registry.Update(ctx, gameID, fn)
	if err != nil {
		return nil, err
	}
	return &Result{Game: game, Changed: changed}, nil
}

// AddPlayer adds a player. In the lobby they play unless the game is full;
// once the game has started they spectate.
func (c *Controller) AddPlayer(ctx context.Context, gameID model.GameID, name string) (*Result, error) {
	name = strings.TrimSpace(name)
	return c.update(ctx, gameID, func(g *model.Game) bool {
		if !validName(name) {
			return false
		}
		if p, _ := g.GetPlayer(name); p != nil {
			return false
		}

		status := model.PlayerSpectating
		if g.Status() == model.StatusInLobby && g.ActivePlayerCount() < g.Config.MaxPlayers {
			status = model.PlayerPlaying
		}
		g.Players = append(g.Players, model.Player{Name: name, Status: status, Words: []string{}})

		c.logger.Info("player joined",
			slog.String("game_id", string(g.ID)),
			slog.String("player", name),
			slog.String("status", string(status)))
		return true
	})
}

// RenamePlayer changes a player's name while in the lobby
func (c *Controller) RenamePlayer(ctx context.Context, gameID model.GameID, oldName, newName string) (*Result, error) {
	newName = strings.TrimSpace(newName)
	return c.update(ctx, gameID, func(g *model.Game) bool {
		if g.Status() != model.StatusInLobby || !validName(newName) {
			return false
		}
		p, _ := g.GetPlayer(oldName)
		if p == nil {
			return false
		}
		if existing, _ := g.GetPlayer(newName); existing != nil {
			return false
		}
		p.Name = newName
		return true
	})
}

// SetPlayerSpectating moves a lobby player to the audience
func (c *Controller) SetPlayerSpectating(ctx context.Context, gameID model.GameID, name string) (*Result, error) {
	return c.update(ctx, gameID, func(g *model.Game) bool {
		if g.Status() != model.StatusInLobby {
			return false
		}
		p, _ := g.GetPlayer(name)
		if p == nil || p.IsSpectating() {
			return false
		}
		p.Status = model.PlayerSpectating
		return true
	})
}

// SetPlayerPlaying moves a lobby spectator into the game if there is room
func (c *Controller) SetPlayerPlaying(ctx context.Context, gameID model.GameID, name string) (*Result, error) {
	return c.update(ctx, gameID, func(g *model.Game) bool {
		if g.Status() != model.StatusInLobby {
			return false
		}
		p, _ := g.GetPlayer(name)
		if p == nil || !p.IsSpectating() {
			return false
		}
		if g.ActivePlayerCount() >= g.Config.MaxPlayers {
			return false
		}
		p.Status = model.PlayerPlaying
		return true
	})
}

// UpdateGameConfig replaces the config while in the lobby. Configs outside
// the registry's limits, or with a cap below the players already playing,
// are ignored.
func (c *Controller) UpdateGameConfig(ctx context.Context, gameID model.GameID, config model.GameConfig) (*Result, error) {
	return c.update(ctx, gameID, func(g *model.Game) bool {
		if g.Status() != model.StatusInLobby {
			return false
		}
		if err := config.Validate(c.registry.Limits()); err != nil {
			c.logger.Debug("config rejected",
				slog.String("game_id", string(g.ID)),
				slog.String("reason", err.Error()))
			return false
		}
		if config.MaxPlayers < g.ActivePlayerCount() {
			c.logger.Debug("config rejected",
				slog.String("game_id", string(g.ID)),
				slog.String("reason", "max players below current player count"))
			return false
		}
		if config == g.Config {
			return false
		}
		g.Config = config
		return true
	})
}

// StartGame deals a fresh bag once at least two players are playing
func (c *Controller) StartGame(ctx context.Context, gameID model.GameID) (*Result, error) {
	return c.update(ctx, gameID, func(g *model.Game) bool {
		if g.Status() != model.StatusInLobby {
			return false
		}
		return c.begin(g)
	})
}

// Rematch starts a new round with the same players and config
func (c *Controller) Rematch(ctx context.Context, gameID model.GameID) (*Result, error) {
	return c.update(ctx, gameID, func(g *model.Game) bool {
		if g.Status() != model.StatusEnded {
			return false
		}
		for i := range g.Players {
			if !g.Players[i].IsSpectating() {
				g.Players[i].Status = model.PlayerPlaying
			}
		}
		return c.begin(g)
	})
}

// begin moves g into play. Every non-spectator must already be PLAYING.
func (c *Controller) begin(g *model.Game) bool {
	if g.ActivePlayerCount() < 2 {
		return false
	}
	bag, err := tiles.StartingTiles(g.Config.TileSet)
	if err != nil {
		return false
	}

	first := 0
	for i := range g.Players {
		g.Players[i].Words = []string{}
	}
	for i := range g.Players {
		if !g.Players[i].IsSpectating() {
			first = i
			break
		}
	}

	g.Phase = &model.InProgressPhase{
		Tiles:         "",
		TilesLeft:     bag,
		CurrPlayerIdx: first,
	}

	c.logger.Info("game started",
		slog.String("game_id", string(g.ID)),
		slog.Int("player_count", g.ActivePlayerCount()),
		slog.Int("tiles", len(bag)))
	return true
}

// BackToLobby returns a finished game to the lobby, keeping its players
func (c *Controller) BackToLobby(ctx context.Context, gameID model.GameID) (*Result, error) {
	return c.update(ctx, gameID, func(g *model.Game) bool {
		if g.Status() != model.StatusEnded {
			return false
		}
		for i := range g.Players {
			g.Players[i].Words = []string{}
			if !g.Players[i].IsSpectating() {
				g.Players[i].Status = model.PlayerPlaying
			}
		}
		g.Phase = &model.LobbyPhase{}
		return true
	})
}

// AddTile draws one tile into the pool on the named player's turn
func (c *Controller) AddTile(ctx context.Context, gameID model.GameID, name string) (*Result, error) {
	return c.update(ctx, gameID, func(g *model.Game) bool {
		phase, ok := g.Phase.(*model.InProgressPhase)
		if !ok || len(phase.TilesLeft) == 0 {
			return false
		}
		p, idx := g.GetPlayer(name)
		if p == nil || p.IsSpectating() {
			return false
		}
		if !c.opts.SkipTurnCheck && idx != phase.CurrPlayerIdx {
			return false
		}

		bag, pool, drawn := tiles.Draw(c.drawer, phase.TilesLeft, phase.Tiles)
		if !drawn {
			return false
		}
		phase.TilesLeft, phase.Tiles = bag, pool
		phase.CurrPlayerIdx = nextActive(g.Players, phase.CurrPlayerIdx)

		c.logger.Debug("tile drawn",
			slog.String("game_id", string(g.ID)),
			slog.String("player", name),
			slog.Int("tiles_left", len(bag)))

		c.checkEnd(g, phase)
		return true
	})
}

// nextActive returns the first non-spectating player after from, wrapping
func nextActive(players []model.Player, from int) int {
	n := len(players)
	for step := 1; step <= n; step++ {
		i := (from + step) % n
		if !players[i].IsSpectating() {
			return i
		}
	}
	return from
}

// ClaimWord forms word from stolen words and pool tiles. With a nil explicit
// claim the best legal claim is chosen automatically; otherwise the listed
// words are re-resolved against current state and the claim fails as a whole
// if any of them no longer exist.
func (c *Controller) ClaimWord(ctx context.Context, gameID model.GameID, name, word string, explicit []model.WordRef) (*Result, error) {
	word = strings.ToUpper(strings.TrimSpace(word))

	var chosen claim.Claim
	result, err := c.update(ctx, gameID, func(g *model.Game) bool {
		phase, ok := g.Phase.(*model.InProgressPhase)
		if !ok {
			return false
		}
		p, claimerIdx := g.GetPlayer(name)
		if p == nil {
			return false
		}
		if p.IsSpectating() && g.ActivePlayerCount() >= g.Config.MaxPlayers {
			return false
		}
		if !c.words.IsValidWord(word) {
			return false
		}

		var found bool
		if explicit != nil {
			stolen, resolved := resolveRefs(g.Players, explicit)
			if !resolved {
				return false
			}
			chosen, found = claim.Verify(phase.Tiles, stolen, word)
		} else {
			chosen, found = claim.Best(claim.Enumerate(phase.Tiles, claimedWords(g.Players), word), claimerIdx)
		}
		if !found {
			return false
		}

		pool, ok := tiles.Remove(phase.Tiles, chosen.FromPool)
		if !ok {
			return false
		}
		phase.Tiles = pool
		removeWords(g.Players, chosen.Stolen)

		p.Words = append(p.Words, word)
		wasReady := p.Status == model.PlayerReadyToEnd
		p.Status = model.PlayerPlaying
		if wasReady {
			c.disarmIfNoneReady(g, phase)
		}

		c.logger.Info("word claimed",
			slog.String("game_id", string(g.ID)),
			slog.String("player", name),
			slog.String("word", word),
			slog.Int("stolen", len(chosen.Stolen)))

		c.checkEnd(g, phase)
		return true
	})
	if err != nil {
		return nil, err
	}
	if result.Changed {
		result.Claim = &chosen
	}
	return result, nil
}

// claimedWords lists every claimed word, ordered by player then by word
func claimedWords(players []model.Player) []claim.Word {
	var words []claim.Word
	for pi, p := range players {
		for wi, w := range p.Words {
			words = append(words, claim.Word{Ref: model.WordRef{PlayerIdx: pi, WordIdx: wi}, Word: w})
		}
	}
	return words
}

// resolveRefs looks each reference up in current state. It fails if any is
// out of range or listed twice.
func resolveRefs(players []model.Player, refs []model.WordRef) ([]claim.Word, bool) {
	seen := make(map[model.WordRef]bool, len(refs))
	words := make([]claim.Word, 0, len(refs))
	for _, ref := range refs {
		if seen[ref] {
			return nil, false
		}
		seen[ref] = true
		if ref.PlayerIdx < 0 || ref.PlayerIdx >= len(players) {
			return nil, false
		}
		owned := players[ref.PlayerIdx].Words
		if ref.WordIdx < 0 || ref.WordIdx >= len(owned) {
			return nil, false
		}
		words = append(words, claim.Word{Ref: ref, Word: owned[ref.WordIdx]})
	}
	return words, true
}

// removeWords deletes the referenced words, highest index first so earlier
// indices stay valid
func removeWords(players []model.Player, refs []model.WordRef) {
	sorted := append([]model.WordRef{}, refs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].PlayerIdx != sorted[j].PlayerIdx {
			return sorted[i].PlayerIdx < sorted[j].PlayerIdx
		}
		return sorted[i].WordIdx > sorted[j].WordIdx
	})
	for _, ref := range sorted {
		words := players[ref.PlayerIdx].Words
		players[ref.PlayerIdx].Words = append(words[:ref.WordIdx:ref.WordIdx], words[ref.WordIdx+1:]...)
	}
}

// SetPlayerReadyToEnd marks a player as done once the bag is empty. The
// first ready player starts the endgame countdown.
func (c *Controller) SetPlayerReadyToEnd(ctx context.Context, gameID model.GameID, name string) (*Result, error) {
	return c.update(ctx, gameID, func(g *model.Game) bool {
		phase, ok := g.Phase.(*model.InProgressPhase)
		if !ok || len(phase.TilesLeft) > 0 {
			return false
		}
		p, _ := g.GetPlayer(name)
		if p == nil || p.Status != model.PlayerPlaying {
			return false
		}
		p.Status = model.PlayerReadyToEnd

		if phase.EndgameDeadline == nil {
			deadline := c.timers.Arm(g.ID, g.Config.EndgameTimeout, c.forceEnd)
			phase.EndgameDeadline = &deadline
			c.logger.Info("endgame timer started",
				slog.String("game_id", string(g.ID)),
				slog.String("player", name),
				slog.Time("deadline", deadline))
		}

		c.checkEnd(g, phase)
		return true
	})
}

// SetPlayerNotReadyToEnd takes back a player's readiness. The countdown stops
// once nobody is ready.
func (c *Controller) SetPlayerNotReadyToEnd(ctx context.Context, gameID model.GameID, name string) (*Result, error) {
	return c.update(ctx, gameID, func(g *model.Game) bool {
		phase, ok := g.Phase.(*model.InProgressPhase)
		if !ok || len(phase.TilesLeft) > 0 {
			return false
		}
		p, _ := g.GetPlayer(name)
		if p == nil || p.Status != model.PlayerReadyToEnd {
			return false
		}
		p.Status = model.PlayerPlaying
		c.disarmIfNoneReady(g, phase)
		return true
	})
}

func (c *Controller) disarmIfNoneReady(g *model.Game, phase *model.InProgressPhase) {
	for _, p := range g.Players {
		if p.Status == model.PlayerReadyToEnd {
			return
		}
	}
	if phase.EndgameDeadline != nil {
		c.timers.Cancel(g.ID)
		phase.EndgameDeadline = nil
		c.logger.Info("endgame timer cancelled", slog.String("game_id", string(g.ID)))
	}
}

// shouldEnd is true once every tile is claimed or every active player is ready
func shouldEnd(g *model.Game, phase *model.InProgressPhase) bool {
	if phase.TilesLeft == "" && phase.Tiles == "" {
		return true
	}
	active := 0
	for _, p := range g.Players {
		if p.IsSpectating() {
			continue
		}
		active++
		if p.Status != model.PlayerReadyToEnd {
			return false
		}
	}
	return active > 0
}

func (c *Controller) checkEnd(g *model.Game, phase *model.InProgressPhase) {
	if shouldEnd(g, phase) {
		c.end(g, phase)
	}
}

func (c *Controller) end(g *model.Game, phase *model.InProgressPhase) {
	for i := range g.Players {
		if !g.Players[i].IsSpectating() {
			g.Players[i].Status = model.PlayerEnded
		}
	}
	g.Phase = &model.EndedPhase{Tiles: phase.Tiles}
	c.timers.Cancel(g.ID)

	c.logger.Info("game ended",
		slog.String("game_id", string(g.ID)),
		slog.Int("tiles_unclaimed", len(phase.Tiles)))
}

// forceEnd runs when an endgame countdown expires. The game may have ended,
// been rematched or had its countdown replaced since; only the countdown
// that is still current can end it.
func (c *Controller) forceEnd(gameID model.GameID, deadline time.Time) {
	ctx := context.Background()
	game, changed, err := c.registry.Update(ctx, gameID, func(g *model.Game) bool {
		phase, ok := g.Phase.(*model.InProgressPhase)
		if !ok || phase.EndgameDeadline == nil || !phase.EndgameDeadline.Equal(deadline) {
			return false
		}
		c.end(g, phase)
		return true
	})
	if err != nil {
		c.logger.Warn("endgame timer could not load game",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()))
		return
	}
	if !changed {
		c.logger.Debug("stale endgame timer ignored", slog.String("game_id", string(gameID)))
		return
	}
	if c.notifier != nil {
		c.notifier.GameUpdated(ctx, game)
	}
}

func validName(name string) bool {
	return name != "" && len(name) <= MaxNameLength
}
