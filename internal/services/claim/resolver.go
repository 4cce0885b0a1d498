// Package claim decides which combinations of claimed words and pool tiles
// can form a submitted word. Everything here is a pure function of its inputs.
package claim

import (
	"github.com/mcoot/anagrams/internal/model"
	"github.com/mcoot/anagrams/internal/services/tiles"
)

// Word is a claimed word tagged with where it currently lives
type Word struct {
	Ref  model.WordRef
	Word string
}

// Claim is one legal way to form a word: the stolen words plus the pool
// tiles that make up the rest
type Claim struct {
	Stolen   []model.WordRef
	FromPool string
}

// StealsFrom counts the stolen words owned by someone other than claimerIdx
func (c Claim) StealsFrom(claimerIdx int) int {
	count := 0
	for _, ref := range c.Stolen {
		if ref.PlayerIdx != claimerIdx {
			count++
		}
	}
	return count
}

// Diff subtracts the letters of b from a as multisets, one occurrence per
// letter. It returns the letters of a that are left over, or false if a does
// not contain every letter of b.
func Diff(a, b string) (string, bool) {
	return tiles.Remove(a, b)
}

// FitsPool returns true if every letter of remainder is available in the pool
func FitsPool(remainder, pool string) bool {
	return tiles.Count(pool).Contains(tiles.Count(remainder))
}

// Enumerate returns every distinct legal claim for newWord. Words are combined
// in the order given and each combination is visited once, so no two results
// steal the same set of words.
func Enumerate(pool string, words []Word, newWord string) []Claim {
	poolCounts := tiles.Count(pool)
	fits := func(s string) bool {
		return poolCounts.Contains(tiles.Count(s))
	}

	var claims []Claim
	if fits(newWord) {
		claims = append(claims, Claim{FromPool: newWord})
	}

	var search func(start int, target string, stolen []model.WordRef)
	search = func(start int, target string, stolen []model.WordRef) {
		for i := start; i < len(words); i++ {
			remainder, ok := Diff(target, words[i].Word)
			if !ok {
				continue
			}
			refs := make([]model.WordRef, len(stolen), len(stolen)+1)
			copy(refs, stolen)
			refs = append(refs, words[i].Ref)

			if remainder == "" {
				// A word can't be taken unchanged; merging two or more can.
				if len(refs) > 1 {
					claims = append(claims, Claim{Stolen: refs})
				}
				continue
			}
			if fits(remainder) {
				claims = append(claims, Claim{Stolen: refs, FromPool: remainder})
			}
			search(i+1, remainder, refs)
		}
	}
	search(0, newWord, nil)

	return claims
}

// Best picks the claim with the most steals from players other than
// claimerIdx, then the most words taken. Remaining ties go to the claim found
// first by Enumerate.
func Best(claims []Claim, claimerIdx int) (Claim, bool) {
	if len(claims) == 0 {
		return Claim{}, false
	}
	best := claims[0]
	for _, c := range claims[1:] {
		cs, bs := c.StealsFrom(claimerIdx), best.StealsFrom(claimerIdx)
		if cs > bs || (cs == bs && len(c.Stolen) > len(best.Stolen)) {
			best = c
		}
	}
	return best, true
}

// Verify checks a caller-chosen set of words. The words must already be
// resolved against current state and be distinct.
func Verify(pool string, stolen []Word, newWord string) (Claim, bool) {
	target := newWord
	refs := make([]model.WordRef, 0, len(stolen))
	for _, w := range stolen {
		remainder, ok := Diff(target, w.Word)
		if !ok {
			return Claim{}, false
		}
		target = remainder
		refs = append(refs, w.Ref)
	}
	if target == "" && len(refs) < 2 {
		return Claim{}, false
	}
	if !FitsPool(target, pool) {
		return Claim{}, false
	}
	if len(refs) == 0 {
		refs = nil
	}
	return Claim{Stolen: refs, FromPool: target}, true
}
