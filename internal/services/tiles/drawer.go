package tiles

import (
	"sync"

	"github.com/mcoot/anagrams/internal/dependencies/random"
)

// Drawer chooses which tile in the bag is drawn next
type Drawer interface {
	// Pick returns an index into bag. It is only called with a non-empty bag.
	Pick(bag string) int
}

// RandomDrawer picks uniformly at random
type RandomDrawer struct {
	random random.Random
}

// NewRandomDrawer creates a RandomDrawer
func NewRandomDrawer(rnd random.Random) *RandomDrawer {
	return &RandomDrawer{random: rnd}
}

// Pick returns a uniformly random index
func (d *RandomDrawer) Pick(bag string) int {
	return d.random.Intn(len(bag))
}

// CyclingDrawer walks the alphabet, drawing the next letter after the one it
// drew last that is still in the bag. It makes headless and dev-mode games
// reproducible.
type CyclingDrawer struct {
	mu   sync.Mutex
	next rune
}

// NewCyclingDrawer creates a CyclingDrawer starting at 'A'
func NewCyclingDrawer() *CyclingDrawer {
	return &CyclingDrawer{next: 'A'}
}

// Pick returns the index of the next letter in the cycle present in the bag
func (d *CyclingDrawer) Pick(bag string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := 0; i < 26; i++ {
		letter := 'A' + (d.next-'A'+rune(i))%26
		for idx, r := range bag {
			if r == letter {
				d.next = 'A' + (letter-'A'+1)%26
				return idx
			}
		}
	}
	return 0
}

// Draw moves one tile from bag to the end of pool. It returns false when the
// bag is empty.
func Draw(d Drawer, bag, pool string) (newBag, newPool string, ok bool) {
	if len(bag) == 0 {
		return bag, pool, false
	}
	idx := d.Pick(bag)
	if idx < 0 || idx >= len(bag) {
		idx = 0
	}
	tile := bag[idx]
	return bag[:idx] + bag[idx+1:], pool + string(tile), true
}
