// Package tiles implements letter multisets, the starting tile bags and the
// draw strategies used to move tiles from the bag into the pool.
package tiles

import (
	"sort"
	"strings"
)

// Multiset counts letter occurrences
type Multiset map[rune]int

// Count builds the multiset of letters in s
func Count(s string) Multiset {
	m := make(Multiset, len(s))
	for _, r := range s {
		m[r]++
	}
	return m
}

// Contains returns true if every letter of sub appears in m at least as often
func (m Multiset) Contains(sub Multiset) bool {
	for r, n := range sub {
		if m[r] < n {
			return false
		}
	}
	return true
}

// Add returns the multiset union (sum) of m and other
func (m Multiset) Add(other Multiset) Multiset {
	out := make(Multiset, len(m)+len(other))
	for r, n := range m {
		out[r] += n
	}
	for r, n := range other {
		out[r] += n
	}
	return out
}

// Equal returns true if both multisets hold the same letters with the same counts
func (m Multiset) Equal(other Multiset) bool {
	for r, n := range m {
		if other[r] != n {
			return false
		}
	}
	for r, n := range other {
		if m[r] != n {
			return false
		}
	}
	return true
}

// Size returns the total number of letters
func (m Multiset) Size() int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// String returns the letters in sorted order
func (m Multiset) String() string {
	var sb strings.Builder
	letters := make([]rune, 0, len(m))
	for r := range m {
		letters = append(letters, r)
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	for _, r := range letters {
		for i := 0; i < m[r]; i++ {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Remove deletes one occurrence of each letter of sub from s, keeping the
// order of what is left. It returns false and leaves s untouched if s does
// not contain sub.
func Remove(s, sub string) (string, bool) {
	need := Count(sub)
	if !Count(s).Contains(need) {
		return s, false
	}
	var sb strings.Builder
	for _, r := range s {
		if need[r] > 0 {
			need[r]--
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String(), true
}
