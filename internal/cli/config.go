package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	Game        string
	Player      string
	SessionFile string
	Output      string
	Verbose     bool
}

// session is what the CLI remembers between runs: the last game joined or
// created and the name used in it
type session struct {
	Game   string `json:"game"`
	Player string `json:"player,omitempty"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("ANAGRAMS_SERVER", "http://localhost:8080"),
		Game:        os.Getenv("ANAGRAMS_GAME"),
		Player:      os.Getenv("ANAGRAMS_PLAYER"),
		SessionFile: getEnvOrDefault("ANAGRAMS_SESSION_FILE", defaultSessionFile()),
		Output:      "text",
		Verbose:     false,
	}
}

// LoadSession fills in the game and player from the session file when they
// were not given as flags
func (c *Config) LoadSession() error {
	if c.Game != "" && c.Player != "" {
		return nil
	}

	data, err := os.ReadFile(c.SessionFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No session file is fine
		}
		return err
	}

	var s session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil // A corrupt session is treated as none
	}
	if c.Game == "" {
		c.Game = s.Game
		// A remembered player only makes sense in the remembered game
		if c.Player == "" {
			c.Player = s.Player
		}
	}
	return nil
}

// SaveSession remembers the game and player for later commands
func (c *Config) SaveSession(game, player string) error {
	c.Game = game
	c.Player = player

	dir := filepath.Dir(c.SessionFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.Marshal(session{Game: game, Player: player})
	if err != nil {
		return err
	}
	return os.WriteFile(c.SessionFile, data, 0600)
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".anagrams/session"
	}
	return filepath.Join(home, ".anagrams", "session")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
