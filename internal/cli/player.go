package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/anagrams/internal/api/request"
	"github.com/mcoot/anagrams/internal/api/response"
)

func newJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <name>",
		Short: "Join the selected game",
		Long: `Join the game given by --game (or the last created game) under a name.

The game and name are remembered for later commands.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := requireGame()
			if err != nil {
				return err
			}

			req := request.AddPlayerRequest{Name: args[0]}
			var result response.ActionResult

			if err := client.Post(gamePath(game, "players"), req, &result); err != nil {
				return err
			}

			if !result.OK() {
				newOutput(cmd).PrintResult("Could not join: name taken or game full", result, result.Game)
				return nil
			}

			if err := cfg.SaveSession(game, args[0]); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			newOutput(cmd).PrintResult(fmt.Sprintf("Joined game %s as %s", game, args[0]), result, result.Game)
			return nil
		},
	}
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <new-name>",
		Short: "Change your name (lobby only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game, player, err := requirePlayer()
			if err != nil {
				return err
			}

			req := request.RenamePlayerRequest{NewName: args[0]}
			var result response.ActionResult

			if err := client.Patch(gamePath(game, "players", url.PathEscape(player)), req, &result); err != nil {
				return err
			}

			if result.OK() {
				if err := cfg.SaveSession(game, args[0]); err != nil {
					return fmt.Errorf("failed to save session: %w", err)
				}
			}

			newOutput(cmd).PrintResult(changedMessage(result, "Renamed to "+args[0]), result, result.Game)
			return nil
		},
	}
}

// newStatusCmd builds a command that sets the player's status
func newStatusCmd(status, short string) *cobra.Command {
	return &cobra.Command{
		Use:   status,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			game, player, err := requirePlayer()
			if err != nil {
				return err
			}

			req := request.SetStatusRequest{Status: status}
			var result response.ActionResult

			if err := client.Put(gamePath(game, "players", url.PathEscape(player), "status"), req, &result); err != nil {
				return err
			}

			newOutput(cmd).PrintResult(changedMessage(result, "Status set: "+status), result, result.Game)
			return nil
		},
	}
}
