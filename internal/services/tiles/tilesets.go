package tiles

import (
	"strings"

	"github.com/mcoot/anagrams/internal/model"
)

// standardCounts is the 144-tile distribution used for a full game
var standardCounts = map[rune]int{
	'A': 13, 'B': 3, 'C': 3, 'D': 6, 'E': 18, 'F': 3, 'G': 4, 'H': 3, 'I': 12,
	'J': 2, 'K': 2, 'L': 5, 'M': 3, 'N': 8, 'O': 11, 'P': 3, 'Q': 2, 'R': 9,
	'S': 6, 'T': 9, 'U': 6, 'V': 3, 'W': 3, 'X': 2, 'Y': 3, 'Z': 2,
}

// StartingTiles returns the full starting bag for a tile set, letters in
// alphabetical order
func StartingTiles(tileSet string) (string, error) {
	var divisor int
	switch tileSet {
	case model.TileSetStandard:
		divisor = 1
	case model.TileSetHalf:
		divisor = 2
	case model.TileSetQuick:
		divisor = 4
	default:
		return "", model.ErrUnknownTileSet
	}

	var sb strings.Builder
	for r := 'A'; r <= 'Z'; r++ {
		n := (standardCounts[r] + divisor - 1) / divisor
		sb.WriteString(strings.Repeat(string(r), n))
	}
	return sb.String(), nil
}
