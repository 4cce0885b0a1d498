package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/anagrams/internal/dependencies/mocks"
	"github.com/mcoot/anagrams/internal/model"
	"github.com/mcoot/anagrams/internal/services/dictionary"
	"github.com/mcoot/anagrams/internal/services/endgame"
	"github.com/mcoot/anagrams/internal/services/registry"
	"github.com/mcoot/anagrams/internal/services/tiles"
	"github.com/mcoot/anagrams/internal/storage/memory"
	"github.com/mcoot/anagrams/internal/testutil"
)

type recordingNotifier struct {
	mu    sync.Mutex
	games []*model.Game
}

func (n *recordingNotifier) GameUpdated(ctx context.Context, game *model.Game) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.games = append(n.games, game)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.games)
}

type ControllerSuite struct {
	suite.Suite
	storage     *memory.Storage
	ids         *mocks.MockIDGenerator
	clock       *mocks.MockClock
	registry    *registry.Registry
	dictService *dictionary.Service
	notifier    *recordingNotifier
	controller  *Controller
	ctx         context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.storage = memory.New()
	s.ids = mocks.NewMockIDGenerator()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.registry = registry.New(s.storage, s.ids, s.clock, logger, model.DefaultLimits(), registry.DefaultRetention)
	s.dictService = dictionary.New(s.storage, logger)
	s.notifier = &recordingNotifier{}
	s.controller = NewController(
		s.registry,
		s.dictService,
		tiles.NewCyclingDrawer(),
		endgame.New(s.clock, logger),
		s.notifier,
		logger,
		Options{},
	)
	s.ctx = context.Background()

	_ = s.dictService.LoadWords([]string{
		"cat", "cats", "act", "dog", "cab", "fed", "cap", "place", "lee", "placee", "tea", "eat", "seat",
	})
}

// newGame creates a lobby game with the named players joined in order
func (s *ControllerSuite) newGame(names ...string) model.GameID {
	return s.newGameWithConfig(model.DefaultGameConfig(), names...)
}

func (s *ControllerSuite) newGameWithConfig(config model.GameConfig, names ...string) model.GameID {
	s.ids.Queue("g0000001")
	game, err := s.registry.CreateGame(s.ctx, config)
	s.Require().NoError(err)
	for _, name := range names {
		res, err := s.controller.AddPlayer(s.ctx, game.ID, name)
		s.Require().NoError(err)
		s.Require().True(res.Changed)
	}
	return game.ID
}

// inProgress forces a game into play with the given pool, bag and words
func (s *ControllerSuite) inProgress(id model.GameID, pool, bag string, words map[string][]string) {
	_, _, err := s.registry.Update(s.ctx, id, func(g *model.Game) bool {
		for i := range g.Players {
			if w, ok := words[g.Players[i].Name]; ok {
				g.Players[i].Words = w
			}
		}
		g.Phase = &model.InProgressPhase{Tiles: pool, TilesLeft: bag}
		return true
	})
	s.Require().NoError(err)
}

func (s *ControllerSuite) game(id model.GameID) *model.Game {
	g, err := s.storage.GetGame(s.ctx, id)
	s.Require().NoError(err)
	return g
}

func (s *ControllerSuite) phase(id model.GameID) *model.InProgressPhase {
	phase, ok := s.game(id).Phase.(*model.InProgressPhase)
	s.Require().True(ok, "game should be in progress")
	return phase
}

func (s *ControllerSuite) player(id model.GameID, name string) model.Player {
	p, _ := s.game(id).GetPlayer(name)
	s.Require().NotNil(p)
	return *p
}

func (s *ControllerSuite) assertConserved(id model.GameID) {
	g := s.game(id)
	start, err := tiles.StartingTiles(g.Config.TileSet)
	s.Require().NoError(err)

	phase := g.Phase.(*model.InProgressPhase)
	all := tiles.Count(phase.Tiles).Add(tiles.Count(phase.TilesLeft))
	for _, p := range g.Players {
		for _, w := range p.Words {
			all = all.Add(tiles.Count(w))
		}
	}
	s.True(tiles.Count(start).Equal(all), "tiles not conserved: %s", all.String())
}

// AddPlayer tests

func (s *ControllerSuite) TestAddPlayerInLobbyPlays() {
	id := s.newGame()

	res, err := s.controller.AddPlayer(s.ctx, id, "alice")
	s.Require().NoError(err)
	s.True(res.Changed)
	s.Equal(model.PlayerPlaying, res.Game.Players[0].Status)
	s.Empty(res.Game.Players[0].Words)
}

func (s *ControllerSuite) TestAddPlayerDuplicateNameRejected() {
	id := s.newGame("alice")

	res, err := s.controller.AddPlayer(s.ctx, id, "alice")
	s.Require().NoError(err)
	s.False(res.Changed)
	s.Len(res.Game.Players, 1)
}

func (s *ControllerSuite) TestAddPlayerNamesAreCaseSensitive() {
	id := s.newGame("alice")

	res, err := s.controller.AddPlayer(s.ctx, id, "Alice")
	s.Require().NoError(err)
	s.True(res.Changed)
}

func (s *ControllerSuite) TestAddPlayerEmptyNameRejected() {
	id := s.newGame()

	res, err := s.controller.AddPlayer(s.ctx, id, "   ")
	s.Require().NoError(err)
	s.False(res.Changed)
}

func (s *ControllerSuite) TestAddPlayerOverCapSpectates() {
	config := model.DefaultGameConfig()
	config.MaxPlayers = 2
	id := s.newGameWithConfig(config, "alice", "bob")

	res, err := s.controller.AddPlayer(s.ctx, id, "carol")
	s.Require().NoError(err)
	s.True(res.Changed)
	s.Equal(model.PlayerSpectating, s.player(id, "carol").Status)
}

func (s *ControllerSuite) TestAddPlayerDuringGameSpectates() {
	id := s.newGame("alice", "bob")
	_, _ = s.controller.StartGame(s.ctx, id)

	res, err := s.controller.AddPlayer(s.ctx, id, "carol")
	s.Require().NoError(err)
	s.True(res.Changed)
	s.Equal(model.PlayerSpectating, s.player(id, "carol").Status)
}

func (s *ControllerSuite) TestAddPlayerUnknownGame() {
	_, err := s.controller.AddPlayer(s.ctx, "missing0", "alice")
	s.ErrorIs(err, model.ErrGameNotFound)
}

// RenamePlayer tests

func (s *ControllerSuite) TestRenamePlayer() {
	id := s.newGame("alice", "bob")

	res, err := s.controller.RenamePlayer(s.ctx, id, "alice", "alicia")
	s.Require().NoError(err)
	s.True(res.Changed)
	s.Equal("alicia", res.Game.Players[0].Name)
}

func (s *ControllerSuite) TestRenamePlayerToTakenName() {
	id := s.newGame("alice", "bob")

	res, err := s.controller.RenamePlayer(s.ctx, id, "alice", "bob")
	s.Require().NoError(err)
	s.False(res.Changed)
}

func (s *ControllerSuite) TestRenamePlayerUnknown() {
	id := s.newGame("alice")

	res, err := s.controller.RenamePlayer(s.ctx, id, "zed", "zack")
	s.Require().NoError(err)
	s.False(res.Changed)
}

func (s *ControllerSuite) TestRenamePlayerOutsideLobby() {
	id := s.newGame("alice", "bob")
	_, _ = s.controller.StartGame(s.ctx, id)

	res, err := s.controller.RenamePlayer(s.ctx, id, "alice", "alicia")
	s.Require().NoError(err)
	s.False(res.Changed)
}

// Spectating tests

func (s *ControllerSuite) TestSetPlayerSpectatingAndBack() {
	id := s.newGame("alice", "bob")

	res, err := s.controller.SetPlayerSpectating(s.ctx, id, "alice")
	s.Require().NoError(err)
	s.True(res.Changed)
	s.Equal(model.PlayerSpectating, s.player(id, "alice").Status)

	res, err = s.controller.SetPlayerSpectating(s.ctx, id, "alice")
	s.Require().NoError(err)
	s.False(res.Changed)

	res, err = s.controller.SetPlayerPlaying(s.ctx, id, "alice")
	s.Require().NoError(err)
	s.True(res.Changed)
	s.Equal(model.PlayerPlaying, s.player(id, "alice").Status)
}

func (s *ControllerSuite) TestSetPlayerPlayingRespectsCap() {
	config := model.DefaultGameConfig()
	config.MaxPlayers = 2
	id := s.newGameWithConfig(config, "alice", "bob", "carol")

	res, err := s.controller.SetPlayerPlaying(s.ctx, id, "carol")
	s.Require().NoError(err)
	s.False(res.Changed)

	_, _ = s.controller.SetPlayerSpectating(s.ctx, id, "bob")
	res, err = s.controller.SetPlayerPlaying(s.ctx, id, "carol")
	s.Require().NoError(err)
	s.True(res.Changed)
}

func (s *ControllerSuite) TestSpectatingOutsideLobbyIgnored() {
	id := s.newGame("alice", "bob")
	_, _ = s.controller.StartGame(s.ctx, id)

	res, err := s.controller.SetPlayerSpectating(s.ctx, id, "alice")
	s.Require().NoError(err)
	s.False(res.Changed)
}

// UpdateGameConfig tests

func (s *ControllerSuite) TestUpdateGameConfig() {
	id := s.newGame("alice")
	config := model.GameConfig{
		TileSet:        model.TileSetQuick,
		Public:         true,
		EndgameTimeout: 60 * time.Second,
		MaxPlayers:     4,
	}

	res, err := s.controller.UpdateGameConfig(s.ctx, id, config)
	s.Require().NoError(err)
	s.True(res.Changed)
	s.Equal(config, s.game(id).Config)
}

func (s *ControllerSuite) TestUpdateGameConfigOutOfBounds() {
	id := s.newGame("alice")

	for _, timeout := range []time.Duration{5 * time.Second, 121 * time.Second} {
		config := model.DefaultGameConfig()
		config.EndgameTimeout = timeout

		res, err := s.controller.UpdateGameConfig(s.ctx, id, config)
		s.Require().NoError(err)
		s.False(res.Changed, "timeout %s", timeout)
	}
	s.Equal(model.DefaultGameConfig(), s.game(id).Config)
}

func (s *ControllerSuite) TestUpdateGameConfigCapBelowPlayers() {
	id := s.newGame("alice", "bob", "carol")

	config := model.DefaultGameConfig()
	config.MaxPlayers = 2
	res, err := s.controller.UpdateGameConfig(s.ctx, id, config)
	s.Require().NoError(err)
	s.False(res.Changed)
	s.Equal(model.DefaultGameConfig().MaxPlayers, s.game(id).Config.MaxPlayers)

	// Spectators do not count against the cap
	_, _ = s.controller.SetPlayerSpectating(s.ctx, id, "carol")
	res, err = s.controller.UpdateGameConfig(s.ctx, id, config)
	s.Require().NoError(err)
	s.True(res.Changed)
	s.Equal(2, s.game(id).Config.MaxPlayers)
}

func (s *ControllerSuite) TestUpdateGameConfigOutsideLobby() {
	id := s.newGame("alice", "bob")
	_, _ = s.controller.StartGame(s.ctx, id)

	config := model.DefaultGameConfig()
	config.Public = true
	res, err := s.controller.UpdateGameConfig(s.ctx, id, config)
	s.Require().NoError(err)
	s.False(res.Changed)
}

// StartGame tests

func (s *ControllerSuite) TestStartGameNeedsTwoPlayers() {
	id := s.newGame("alice")

	res, err := s.controller.StartGame(s.ctx, id)
	s.Require().NoError(err)
	s.False(res.Changed)
	s.Equal(model.StatusInLobby, res.Game.Status())
}

func (s *ControllerSuite) TestStartGameIgnoresSpectatorsInCount() {
	id := s.newGame("alice", "bob")
	_, _ = s.controller.SetPlayerSpectating(s.ctx, id, "bob")

	res, err := s.controller.StartGame(s.ctx, id)
	s.Require().NoError(err)
	s.False(res.Changed)
}

func (s *ControllerSuite) TestStartGameDealsBag() {
	id := s.newGame("alice", "bob", "carol")
	_, _ = s.controller.SetPlayerSpectating(s.ctx, id, "alice")

	res, err := s.controller.StartGame(s.ctx, id)
	s.Require().NoError(err)
	s.True(res.Changed)

	phase := s.phase(id)
	s.Equal("", phase.Tiles)
	s.Len(phase.TilesLeft, 144)
	s.Equal(1, phase.CurrPlayerIdx, "first non-spectator starts")
	s.Nil(phase.EndgameDeadline)
	s.assertConserved(id)
}

func (s *ControllerSuite) TestStartGameTwiceIgnored() {
	id := s.newGame("alice", "bob")
	_, _ = s.controller.StartGame(s.ctx, id)

	res, err := s.controller.StartGame(s.ctx, id)
	s.Require().NoError(err)
	s.False(res.Changed)
}

// AddTile tests

func (s *ControllerSuite) TestAddTileEnforcesTurn() {
	id := s.newGame("alice", "bob")
	_, _ = s.controller.StartGame(s.ctx, id)

	res, err := s.controller.AddTile(s.ctx, id, "bob")
	s.Require().NoError(err)
	s.False(res.Changed)

	res, err = s.controller.AddTile(s.ctx, id, "alice")
	s.Require().NoError(err)
	s.True(res.Changed)

	phase := s.phase(id)
	s.Equal("A", phase.Tiles)
	s.Len(phase.TilesLeft, 143)
	s.Equal(1, phase.CurrPlayerIdx)
}

func (s *ControllerSuite) TestAddTileSkipsSpectators() {
	id := s.newGame("alice", "bob", "carol")
	_, _ = s.controller.SetPlayerSpectating(s.ctx, id, "bob")
	_, _ = s.controller.StartGame(s.ctx, id)
	s.Equal(0, s.phase(id).CurrPlayerIdx)

	_, _ = s.controller.AddTile(s.ctx, id, "alice")
	s.Equal(2, s.phase(id).CurrPlayerIdx)

	_, _ = s.controller.AddTile(s.ctx, id, "carol")
	s.Equal(0, s.phase(id).CurrPlayerIdx)
}

func (s *ControllerSuite) TestAddTileSpectatorRejected() {
	id := s.newGame("alice", "bob")
	_, _ = s.controller.StartGame(s.ctx, id)
	_, _ = s.controller.AddPlayer(s.ctx, id, "carol")

	res, err := s.controller.AddTile(s.ctx, id, "carol")
	s.Require().NoError(err)
	s.False(res.Changed)
}

func (s *ControllerSuite) TestAddTileSkipTurnCheck() {
	s.controller.opts.SkipTurnCheck = true
	id := s.newGame("alice", "bob")
	_, _ = s.controller.StartGame(s.ctx, id)

	res, err := s.controller.AddTile(s.ctx, id, "bob")
	s.Require().NoError(err)
	s.True(res.Changed)
}

func (s *ControllerSuite) TestAddTileEmptyBag() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "XY", "", nil)

	res, err := s.controller.AddTile(s.ctx, id, "alice")
	s.Require().NoError(err)
	s.False(res.Changed)
}

func (s *ControllerSuite) TestAddTileInLobbyIgnored() {
	id := s.newGame("alice", "bob")

	res, err := s.controller.AddTile(s.ctx, id, "alice")
	s.Require().NoError(err)
	s.False(res.Changed)
}

// ClaimWord tests

func (s *ControllerSuite) TestClaimFromPool() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "XTACY", "QQ", nil)

	res, err := s.controller.ClaimWord(s.ctx, id, "alice", "cat", nil)
	s.Require().NoError(err)
	s.True(res.Changed)
	s.Require().NotNil(res.Claim)
	s.Empty(res.Claim.Stolen)

	s.Equal([]string{"CAT"}, s.player(id, "alice").Words)
	s.Equal("XY", s.phase(id).Tiles)
}

func (s *ControllerSuite) TestClaimRejectsUnknownWord() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "ZZZ", "QQ", nil)

	res, err := s.controller.ClaimWord(s.ctx, id, "alice", "zzz", nil)
	s.Require().NoError(err)
	s.False(res.Changed)
	s.Nil(res.Claim)
	s.Equal("ZZZ", s.phase(id).Tiles)
}

func (s *ControllerSuite) TestClaimRejectsShortWord() {
	_ = s.dictService.LoadWords([]string{"at"})
	id := s.newGame("alice", "bob")
	s.inProgress(id, "AT", "QQ", nil)

	res, err := s.controller.ClaimWord(s.ctx, id, "alice", "at", nil)
	s.Require().NoError(err)
	s.False(res.Changed)
}

func (s *ControllerSuite) TestClaimRejectsMissingLetters() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "CA", "QQ", nil)

	res, err := s.controller.ClaimWord(s.ctx, id, "alice", "cat", nil)
	s.Require().NoError(err)
	s.False(res.Changed)
}

func (s *ControllerSuite) TestClaimPrefersStealOverPool() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "SCAT", "QQ", map[string][]string{"bob": {"CAT"}})

	res, err := s.controller.ClaimWord(s.ctx, id, "alice", "cats", nil)
	s.Require().NoError(err)
	s.True(res.Changed)
	s.Equal([]model.WordRef{{PlayerIdx: 1, WordIdx: 0}}, res.Claim.Stolen)

	s.Equal([]string{"CATS"}, s.player(id, "alice").Words)
	s.Empty(s.player(id, "bob").Words)
	s.Equal("CAT", s.phase(id).Tiles)
}

func (s *ControllerSuite) TestClaimRejectsUnchangedSteal() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "", "QQ", map[string][]string{"bob": {"CAT"}})

	res, err := s.controller.ClaimWord(s.ctx, id, "alice", "act", nil)
	s.Require().NoError(err)
	s.False(res.Changed)
	s.Equal([]string{"CAT"}, s.player(id, "bob").Words)
}

func (s *ControllerSuite) TestClaimMergesTwoWordsWithoutPool() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "", "QQ", map[string][]string{
		"alice": {"CAP"},
		"bob":   {"DOG", "LEE"},
	})

	res, err := s.controller.ClaimWord(s.ctx, id, "alice", "placee", nil)
	s.Require().NoError(err)
	s.True(res.Changed)

	s.Equal([]string{"PLACEE"}, s.player(id, "alice").Words)
	s.Equal([]string{"DOG"}, s.player(id, "bob").Words)
}

func (s *ControllerSuite) TestClaimExplicitPoolOnly() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "SCAT", "QQ", map[string][]string{"bob": {"CAT"}})

	res, err := s.controller.ClaimWord(s.ctx, id, "alice", "cats", []model.WordRef{})
	s.Require().NoError(err)
	s.True(res.Changed)
	s.Empty(res.Claim.Stolen)

	s.Equal([]string{"CAT"}, s.player(id, "bob").Words)
	s.Equal("", s.phase(id).Tiles)
}

func (s *ControllerSuite) TestClaimExplicitSteal() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "LEX", "QQ", map[string][]string{"bob": {"DOG", "CAP"}})

	res, err := s.controller.ClaimWord(s.ctx, id, "alice", "place", []model.WordRef{{PlayerIdx: 1, WordIdx: 1}})
	s.Require().NoError(err)
	s.True(res.Changed)

	s.Equal([]string{"DOG"}, s.player(id, "bob").Words)
	s.Equal("X", s.phase(id).Tiles)
	s.Equal([]string{"PLACE"}, s.player(id, "alice").Words)
}

func (s *ControllerSuite) TestClaimStaleReferenceRejected() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "SCAT", "QQ", map[string][]string{"bob": {"CAT", "DOG"}})
	before := s.game(id)

	res, err := s.controller.ClaimWord(s.ctx, id, "alice", "cats", []model.WordRef{{PlayerIdx: 1, WordIdx: 3}})
	s.Require().NoError(err)
	s.False(res.Changed)

	after := s.game(id)
	s.Equal(before.Players, after.Players)
	s.Equal(before.Phase, after.Phase)
}

func (s *ControllerSuite) TestClaimDuplicateReferenceRejected() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "", "QQ", map[string][]string{"bob": {"CAP", "LEE"}})

	ref := model.WordRef{PlayerIdx: 1, WordIdx: 0}
	res, err := s.controller.ClaimWord(s.ctx, id, "alice", "placee", []model.WordRef{ref, ref})
	s.Require().NoError(err)
	s.False(res.Changed)
}

func (s *ControllerSuite) TestClaimExplicitThatDoesNotFormWord() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "SCAT", "QQ", map[string][]string{"bob": {"DOG"}})

	res, err := s.controller.ClaimWord(s.ctx, id, "alice", "cats", []model.WordRef{{PlayerIdx: 1, WordIdx: 0}})
	s.Require().NoError(err)
	s.False(res.Changed)
	s.Equal([]string{"DOG"}, s.player(id, "bob").Words)
}

func (s *ControllerSuite) TestClaimRaceSecondLoses() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "SCATS", "QQ", nil)
	ref := []model.WordRef{}

	res, err := s.controller.ClaimWord(s.ctx, id, "alice", "cats", ref)
	s.Require().NoError(err)
	s.True(res.Changed)

	res, err = s.controller.ClaimWord(s.ctx, id, "bob", "cats", ref)
	s.Require().NoError(err)
	s.False(res.Changed)
	s.Equal("S", s.phase(id).Tiles)
}

func (s *ControllerSuite) TestClaimBySpectatorJoins() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "TAC", "QQ", nil)
	_, _ = s.controller.AddPlayer(s.ctx, id, "carol")

	res, err := s.controller.ClaimWord(s.ctx, id, "carol", "cat", nil)
	s.Require().NoError(err)
	s.True(res.Changed)
	s.Equal(model.PlayerPlaying, s.player(id, "carol").Status)
}

func (s *ControllerSuite) TestClaimBySpectatorAtCapRejected() {
	config := model.DefaultGameConfig()
	config.MaxPlayers = 2
	id := s.newGameWithConfig(config, "alice", "bob")
	s.inProgress(id, "TAC", "QQ", nil)
	_, _ = s.controller.AddPlayer(s.ctx, id, "carol")

	res, err := s.controller.ClaimWord(s.ctx, id, "carol", "cat", nil)
	s.Require().NoError(err)
	s.False(res.Changed)
	s.Equal(model.PlayerSpectating, s.player(id, "carol").Status)
	s.Equal("TAC", s.phase(id).Tiles)
}

func (s *ControllerSuite) TestClaimUnknownPlayer() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "TAC", "QQ", nil)

	res, err := s.controller.ClaimWord(s.ctx, id, "zed", "cat", nil)
	s.Require().NoError(err)
	s.False(res.Changed)
}

func (s *ControllerSuite) TestClaimEmptyingBagAndPoolEndsGame() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "S", "", map[string][]string{"bob": {"CAT"}})

	res, err := s.controller.ClaimWord(s.ctx, id, "alice", "cats", nil)
	s.Require().NoError(err)
	s.True(res.Changed)

	g := s.game(id)
	s.Equal(model.StatusEnded, g.Status())
	s.Equal(&model.EndedPhase{Tiles: ""}, g.Phase)
	for _, p := range g.Players {
		s.Equal(model.PlayerEnded, p.Status)
	}
}

// Endgame tests

func (s *ControllerSuite) TestReadyRequiresEmptyBag() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "X", "Q", nil)

	res, err := s.controller.SetPlayerReadyToEnd(s.ctx, id, "alice")
	s.Require().NoError(err)
	s.False(res.Changed)
	s.Equal(model.PlayerPlaying, s.player(id, "alice").Status)
}

func (s *ControllerSuite) TestFirstReadyArmsTimer() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "X", "", nil)

	res, err := s.controller.SetPlayerReadyToEnd(s.ctx, id, "alice")
	s.Require().NoError(err)
	s.True(res.Changed)

	phase := s.phase(id)
	s.Require().NotNil(phase.EndgameDeadline)
	s.Equal(s.clock.Now().Add(30*time.Second), *phase.EndgameDeadline)
	s.Equal(1, s.clock.PendingTimers())

	snapshot := res.Game.Snapshot().(model.InProgressSnapshot)
	s.Require().NotNil(snapshot.EndgameDeadline)
}

func (s *ControllerSuite) TestAllReadyEndsImmediately() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "X", "", nil)

	_, _ = s.controller.SetPlayerReadyToEnd(s.ctx, id, "alice")
	res, err := s.controller.SetPlayerReadyToEnd(s.ctx, id, "bob")
	s.Require().NoError(err)
	s.True(res.Changed)

	g := s.game(id)
	s.Equal(model.StatusEnded, g.Status())
	s.Equal(&model.EndedPhase{Tiles: "X"}, g.Phase)
	s.Equal(0, s.clock.PendingTimers())
	s.Equal(0, s.notifier.count(), "request-driven ends are broadcast by the caller")
}

func (s *ControllerSuite) TestReadyIgnoresSpectators() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "X", "", nil)
	_, _ = s.controller.AddPlayer(s.ctx, id, "carol")

	_, _ = s.controller.SetPlayerReadyToEnd(s.ctx, id, "alice")
	_, _ = s.controller.SetPlayerReadyToEnd(s.ctx, id, "bob")

	g := s.game(id)
	s.Equal(model.StatusEnded, g.Status())
	s.Equal(model.PlayerSpectating, s.player(id, "carol").Status)
}

func (s *ControllerSuite) TestTimerExpiryEndsGame() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "X", "", nil)
	_, _ = s.controller.SetPlayerReadyToEnd(s.ctx, id, "alice")

	s.clock.Advance(29 * time.Second)
	s.Equal(model.StatusInProgress, s.game(id).Status())

	s.clock.Advance(time.Second)
	g := s.game(id)
	s.Equal(model.StatusEnded, g.Status())
	s.Equal(model.PlayerEnded, s.player(id, "bob").Status)

	s.Require().Equal(1, s.notifier.count())
	s.Equal(model.StatusEnded, s.notifier.games[0].Status())
}

func (s *ControllerSuite) TestNotReadyCancelsTimer() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "X", "", nil)
	_, _ = s.controller.SetPlayerReadyToEnd(s.ctx, id, "alice")

	res, err := s.controller.SetPlayerNotReadyToEnd(s.ctx, id, "alice")
	s.Require().NoError(err)
	s.True(res.Changed)
	s.Nil(s.phase(id).EndgameDeadline)

	s.clock.Advance(time.Minute)
	s.Equal(model.StatusInProgress, s.game(id).Status())
	s.Equal(0, s.notifier.count())
}

func (s *ControllerSuite) TestNotReadyKeepsTimerWhileOthersReady() {
	id := s.newGame("alice", "bob", "carol")
	s.inProgress(id, "X", "", nil)
	_, _ = s.controller.SetPlayerReadyToEnd(s.ctx, id, "alice")
	_, _ = s.controller.SetPlayerReadyToEnd(s.ctx, id, "bob")

	_, _ = s.controller.SetPlayerNotReadyToEnd(s.ctx, id, "alice")
	s.NotNil(s.phase(id).EndgameDeadline)

	s.clock.Advance(30 * time.Second)
	s.Equal(model.StatusEnded, s.game(id).Status())
}

func (s *ControllerSuite) TestNotReadyWhenNotReadyIgnored() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "X", "", nil)

	res, err := s.controller.SetPlayerNotReadyToEnd(s.ctx, id, "alice")
	s.Require().NoError(err)
	s.False(res.Changed)
}

func (s *ControllerSuite) TestClaimByReadyPlayerCancelsTimer() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "XTAC", "", nil)
	_, _ = s.controller.SetPlayerReadyToEnd(s.ctx, id, "alice")

	res, err := s.controller.ClaimWord(s.ctx, id, "alice", "cat", nil)
	s.Require().NoError(err)
	s.True(res.Changed)
	s.Equal(model.PlayerPlaying, s.player(id, "alice").Status)
	s.Nil(s.phase(id).EndgameDeadline)
	s.Equal(0, s.clock.PendingTimers())
}

func (s *ControllerSuite) TestStaleTimerIsNoOp() {
	id := s.newGame("alice", "bob")
	s.inProgress(id, "X", "", nil)
	_, _ = s.controller.SetPlayerReadyToEnd(s.ctx, id, "alice")

	s.controller.forceEnd(id, s.clock.Now().Add(time.Hour))
	s.Equal(model.StatusInProgress, s.game(id).Status())
	s.Equal(0, s.notifier.count())
}

func (s *ControllerSuite) TestTimerForEvictedGameIsNoOp() {
	s.controller.forceEnd("missing0", s.clock.Now())
	s.Equal(0, s.notifier.count())
}

// Rematch and lobby tests

func (s *ControllerSuite) endGame(id model.GameID) {
	s.inProgress(id, "X", "", map[string][]string{"alice": {"CAT"}})
	_, _ = s.controller.SetPlayerReadyToEnd(s.ctx, id, "alice")
	_, _ = s.controller.SetPlayerReadyToEnd(s.ctx, id, "bob")
	s.Require().Equal(model.StatusEnded, s.game(id).Status())
}

func (s *ControllerSuite) TestRematch() {
	id := s.newGame("alice", "bob", "carol")
	_, _ = s.controller.SetPlayerSpectating(s.ctx, id, "carol")
	s.endGame(id)

	res, err := s.controller.Rematch(s.ctx, id)
	s.Require().NoError(err)
	s.True(res.Changed)

	phase := s.phase(id)
	s.Len(phase.TilesLeft, 144)
	s.Equal("", phase.Tiles)
	s.Empty(s.player(id, "alice").Words)
	s.Equal(model.PlayerPlaying, s.player(id, "alice").Status)
	s.Equal(model.PlayerSpectating, s.player(id, "carol").Status)
	s.assertConserved(id)
}

func (s *ControllerSuite) TestRematchOnlyWhenEnded() {
	id := s.newGame("alice", "bob")

	res, err := s.controller.Rematch(s.ctx, id)
	s.Require().NoError(err)
	s.False(res.Changed)
}

func (s *ControllerSuite) TestBackToLobby() {
	id := s.newGame("alice", "bob", "carol")
	_, _ = s.controller.SetPlayerSpectating(s.ctx, id, "carol")
	s.endGame(id)

	res, err := s.controller.BackToLobby(s.ctx, id)
	s.Require().NoError(err)
	s.True(res.Changed)

	g := s.game(id)
	s.Equal(model.StatusInLobby, g.Status())
	s.Len(g.Players, 3)
	s.Equal(model.PlayerPlaying, s.player(id, "alice").Status)
	s.Equal(model.PlayerPlaying, s.player(id, "bob").Status)
	s.Equal(model.PlayerSpectating, s.player(id, "carol").Status)
}

func (s *ControllerSuite) TestBackToLobbyOnlyWhenEnded() {
	id := s.newGame("alice", "bob")
	_, _ = s.controller.StartGame(s.ctx, id)

	res, err := s.controller.BackToLobby(s.ctx, id)
	s.Require().NoError(err)
	s.False(res.Changed)
}

// Conservation across a played-out game

func (s *ControllerSuite) TestTilesConservedThroughPlay() {
	_ = s.dictService.LoadWords([]string{"cab", "fed", "cabs", "deaf"})
	config := model.DefaultGameConfig()
	config.TileSet = model.TileSetQuick
	id := s.newGameWithConfig(config, "alice", "bob")
	_, _ = s.controller.StartGame(s.ctx, id)

	names := []string{"alice", "bob"}
	for turn := 0; len(s.phase(id).TilesLeft) > 0; turn++ {
		res, err := s.controller.AddTile(s.ctx, id, names[turn%2])
		s.Require().NoError(err)
		s.Require().True(res.Changed)
		s.assertConserved(id)

		_, _ = s.controller.ClaimWord(s.ctx, id, "alice", "cab", nil)
		_, _ = s.controller.ClaimWord(s.ctx, id, "bob", "fed", nil)
		_, _ = s.controller.ClaimWord(s.ctx, id, "bob", "cabs", nil)
		_, _ = s.controller.ClaimWord(s.ctx, id, "alice", "deaf", nil)
		if s.game(id).Status() != model.StatusInProgress {
			break
		}
		s.assertConserved(id)
	}

	s.NotEmpty(s.player(id, "alice").Words)
	s.NotEmpty(s.player(id, "bob").Words)
}
