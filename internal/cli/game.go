package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/anagrams/internal/api/request"
	"github.com/mcoot/anagrams/internal/api/response"
	"github.com/mcoot/anagrams/internal/model"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGamePublicCmd())
	cmd.AddCommand(newGameConfigCmd())
	cmd.AddCommand(newGameActionCmd("start", "Start the game from the lobby"))
	cmd.AddCommand(newGameActionCmd("rematch", "Start a new game with the same players"))
	cmd.AddCommand(newGameActionCmd("lobby", "Return an ended game to the lobby"))
	cmd.AddCommand(newGameDrawCmd())
	cmd.AddCommand(newGameClaimCmd())

	return cmd
}

func gamePath(game string, parts ...string) string {
	path := "/api/v1/games/" + url.PathEscape(game)
	for _, p := range parts {
		path += "/" + p
	}
	return path
}

// configFlags binds the game config flags and builds a request holding only
// the flags that were set
type configFlags struct {
	tileSet    string
	public     bool
	timeout    int
	maxPlayers int
}

func (f *configFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.tileSet, "tile-set", model.TileSetStandard, "Tile set: standard, half, quick")
	cmd.Flags().BoolVar(&f.public, "public", false, "List the game publicly")
	cmd.Flags().IntVar(&f.timeout, "timeout", 30, "Endgame timeout in seconds")
	cmd.Flags().IntVar(&f.maxPlayers, "max-players", 8, "Maximum number of players")
}

func (f *configFlags) request(cmd *cobra.Command) request.ConfigRequest {
	var req request.ConfigRequest
	if cmd.Flags().Changed("tile-set") {
		req.TileSet = &f.tileSet
	}
	if cmd.Flags().Changed("public") {
		req.Public = &f.public
	}
	if cmd.Flags().Changed("timeout") {
		req.EndgameTimeoutSeconds = &f.timeout
	}
	if cmd.Flags().Changed("max-players") {
		req.MaxPlayers = &f.maxPlayers
	}
	return req
}

func newGameCreateCmd() *cobra.Command {
	var flags configFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.CreateGameResult

			if err := client.Post("/api/v1/games", flags.request(cmd), &result); err != nil {
				return err
			}

			// The creator has not joined yet, so no player is remembered
			if err := cfg.SaveSession(result.GameID, ""); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			newOutput(cmd).PrintResult("Game created: "+result.GameID, result, result.Game)
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Get the current game state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := requireGame()
			if err != nil {
				return err
			}

			var result response.GameView

			if err := client.Get(gamePath(game), &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}

func newGamePublicCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "public",
		Short: "List public games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]response.GameView

			if err := client.Get("/api/v1/games/public", &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}

func newGameConfigCmd() *cobra.Command {
	var flags configFlags

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Change the game config (lobby only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := requireGame()
			if err != nil {
				return err
			}

			var result response.ActionResult

			if err := client.Patch(gamePath(game, "config"), flags.request(cmd), &result); err != nil {
				return err
			}

			newOutput(cmd).PrintResult(changedMessage(result, "Config updated"), result, result.Game)
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}

// newGameActionCmd builds a command that posts to a bodiless game endpoint
func newGameActionCmd(endpoint, short string) *cobra.Command {
	return &cobra.Command{
		Use:   endpoint,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := requireGame()
			if err != nil {
				return err
			}

			var result response.ActionResult

			if err := client.Post(gamePath(game, endpoint), nil, &result); err != nil {
				return err
			}

			newOutput(cmd).PrintResult(changedMessage(result, "Done"), result, result.Game)
			return nil
		},
	}
}

func newGameDrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draw",
		Short: "Draw a tile from the bag (on your turn)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			game, player, err := requirePlayer()
			if err != nil {
				return err
			}

			req := request.AddTileRequest{Player: player}
			var result response.ActionResult

			if err := client.Post(gamePath(game, "tiles"), req, &result); err != nil {
				return err
			}

			newOutput(cmd).PrintResult(changedMessage(result, "Tile drawn"), result, result.Game)
			return nil
		},
	}
}

func newGameClaimCmd() *cobra.Command {
	var steals []string
	var poolOnly bool

	cmd := &cobra.Command{
		Use:   "claim <word>",
		Short: "Claim a word from the pool, stealing words if needed",
		Long: `Claim a word using letters from the pool and, optionally, other words.

By default the server picks which words to steal. Use --steal to name them
as player:word indices from the game state, or --pool-only to use only
pool letters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game, player, err := requirePlayer()
			if err != nil {
				return err
			}

			if poolOnly && len(steals) > 0 {
				return fmt.Errorf("--pool-only and --steal cannot be combined")
			}

			req := request.ClaimRequest{Player: player, Word: args[0]}
			switch {
			case poolOnly:
				refs := []model.WordRef{}
				req.Claim = &refs
			case len(steals) > 0:
				refs, err := parseWordRefs(steals)
				if err != nil {
					return err
				}
				req.Claim = &refs
			}

			var result response.ActionResult

			if err := client.Post(gamePath(game, "claims"), req, &result); err != nil {
				return err
			}

			word := strings.ToUpper(args[0])
			msg := "Claim rejected: " + word
			if result.Claimed {
				msg = "Claimed " + word
			}
			newOutput(cmd).PrintResult(msg, result, result.Game)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&steals, "steal", nil, "Words to steal as player:word indices (repeatable)")
	cmd.Flags().BoolVar(&poolOnly, "pool-only", false, "Use only letters from the pool")

	return cmd
}

// parseWordRefs parses "player:word" index pairs
func parseWordRefs(values []string) ([]model.WordRef, error) {
	refs := make([]model.WordRef, 0, len(values))
	for _, v := range values {
		playerStr, wordStr, ok := strings.Cut(v, ":")
		if !ok {
			return nil, fmt.Errorf("invalid steal %q: expected player:word", v)
		}
		playerIdx, err := strconv.Atoi(playerStr)
		if err != nil {
			return nil, fmt.Errorf("invalid player index in %q: %w", v, err)
		}
		wordIdx, err := strconv.Atoi(wordStr)
		if err != nil {
			return nil, fmt.Errorf("invalid word index in %q: %w", v, err)
		}
		refs = append(refs, model.WordRef{PlayerIdx: playerIdx, WordIdx: wordIdx})
	}
	return refs, nil
}

func changedMessage(result response.ActionResult, ok string) string {
	if result.OK() {
		return ok
	}
	return "No change"
}
