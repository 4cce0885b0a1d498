package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mcoot/anagrams/internal/api/response"
	"github.com/mcoot/anagrams/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintResult outputs an action result. In text mode msg is printed above
// the game.
func (o *Output) PrintResult(msg string, result any, game response.GameView) {
	if o.format == "json" {
		o.printJSON(result)
		return
	}
	fmt.Fprintln(o.out, msg)
	o.printGame(game)
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(o.errOut, string(data))
	} else {
		fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.out, string(data))
	} else {
		fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.GameView:
		o.printGame(v)
	case map[string]response.GameView:
		o.printGameList(v)
	case response.HealthResponse:
		fmt.Fprintf(o.out, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printGame(g response.GameView) {
	fmt.Fprintf(o.out, "Status: %s\n", g.Status)
	fmt.Fprintf(o.out, "Config: tiles=%s public=%s timeout=%s max-players=%d\n",
		g.Config.TileSet, yesNo(g.Config.Public), g.Config.EndgameTimeout, g.Config.MaxPlayers)

	current := g.CurrentPlayer()
	fmt.Fprintf(o.out, "Players (%d):\n", len(g.Players))
	for _, p := range g.Players {
		marker := " "
		if p.Name == current {
			marker = "*"
		}
		line := fmt.Sprintf("  %s %s [%s]", marker, p.Name, p.Status)
		if len(p.Words) > 0 {
			line += " " + strings.Join(p.Words, ", ")
		}
		fmt.Fprintln(o.out, line)
	}

	switch g.Status {
	case model.StatusInProgress:
		fmt.Fprintf(o.out, "Pool: %s (%d left in bag)\n", displayTiles(g.Tiles), g.TilesLeft)
		if current != "" {
			fmt.Fprintf(o.out, "Turn: %s\n", current)
		}
		if g.EndgameDeadline != nil {
			fmt.Fprintf(o.out, "Ends at: %s\n", g.EndgameDeadline.Local().Format("15:04:05"))
		}
	case model.StatusEnded:
		fmt.Fprintf(o.out, "Unclaimed: %s\n", displayTiles(g.Tiles))
	}
}

func (o *Output) printGameList(games map[string]response.GameView) {
	if len(games) == 0 {
		fmt.Fprintln(o.out, "No public games")
		return
	}
	ids := make([]string, 0, len(games))
	for id := range games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for i, id := range ids {
		if i > 0 {
			fmt.Fprintln(o.out)
		}
		fmt.Fprintf(o.out, "Game: %s\n", id)
		o.printGame(games[id])
	}
}

func displayTiles(tiles string) string {
	if tiles == "" {
		return "(empty)"
	}
	return tiles
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
