package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "anagrams",
		Short: "CLI tool for the anagrams game API",
		Long: `anagrams is a CLI tool for playing the anagrams word-steal game against
the JSON API.

It supports creating and joining games, drawing tiles, claiming and stealing
words, and streaming live game events.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Fall back to the last joined game if not provided via flag/env
			if err := cfg.LoadSession(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: ANAGRAMS_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Game, "game", "g", cfg.Game, "Game ID (env: ANAGRAMS_GAME)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Player, "player", "p", cfg.Player, "Player name (env: ANAGRAMS_PLAYER)")
	rootCmd.PersistentFlags().StringVar(&cfg.SessionFile, "session-file", cfg.SessionFile, "Session file path (env: ANAGRAMS_SESSION_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newJoinCmd())
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newStatusCmd("ready", "Vote to end the game early"))
	rootCmd.AddCommand(newStatusCmd("unready", "Withdraw a vote to end the game"))
	rootCmd.AddCommand(newStatusCmd("spectate", "Stop playing and watch"))
	rootCmd.AddCommand(newStatusCmd("play", "Join the players from spectating"))
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	errNoGame   = errors.New("no game selected: pass --game or run 'anagrams join' first")
	errNoPlayer = errors.New("no player selected: pass --player or run 'anagrams join' first")
)

func requireGame() (string, error) {
	if cfg.Game == "" {
		return "", errNoGame
	}
	return cfg.Game, nil
}

func requirePlayer() (string, string, error) {
	game, err := requireGame()
	if err != nil {
		return "", "", err
	}
	if cfg.Player == "" {
		return "", "", errNoPlayer
	}
	return game, cfg.Player, nil
}

func newOutput(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
}
