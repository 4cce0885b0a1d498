package claim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/anagrams/internal/model"
	"github.com/mcoot/anagrams/internal/services/tiles"
)

func ref(player, word int) model.WordRef {
	return model.WordRef{PlayerIdx: player, WordIdx: word}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name      string
		a, b      string
		remainder string
		ok        bool
	}{
		{"subset in order", "PLACE", "CAP", "LE", true},
		{"order independent", "ECALP", "PAC", "EL", true},
		{"insufficient letters", "CAP", "PLACE", "", false},
		{"repeated letters counted", "BANANA", "NAN", "BAA", true},
		{"too many repeats", "BAN", "NN", "", false},
		{"exact match", "TEA", "EAT", "", true},
		{"empty b", "TEA", "", "TEA", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remainder, ok := Diff(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tiles.Count(tt.remainder).Equal(tiles.Count(remainder)),
					"remainder %q, want letters of %q", remainder, tt.remainder)
			}
		})
	}
}

func TestFitsPool(t *testing.T) {
	assert.True(t, FitsPool("LE", "XLYE"))
	assert.True(t, FitsPool("", ""))
	assert.False(t, FitsPool("LL", "XLYE"))
}

func TestEnumeratePoolOnly(t *testing.T) {
	claims := Enumerate("TACX", nil, "CAT")
	require.Len(t, claims, 1)
	assert.Empty(t, claims[0].Stolen)
	assert.Equal(t, "CAT", claims[0].FromPool)
}

func TestEnumerateNothingFits(t *testing.T) {
	claims := Enumerate("TA", []Word{{Ref: ref(0, 0), Word: "DOG"}}, "CAT")
	assert.Empty(t, claims)
}

func TestEnumerateSingleStealWithPool(t *testing.T) {
	words := []Word{{Ref: ref(0, 0), Word: "CAP"}}

	claims := Enumerate("LEQ", words, "PLACE")
	require.Len(t, claims, 1)
	assert.Equal(t, []model.WordRef{ref(0, 0)}, claims[0].Stolen)
	assert.True(t, tiles.Count("LE").Equal(tiles.Count(claims[0].FromPool)))
}

func TestEnumerateRejectsUnchangedSteal(t *testing.T) {
	words := []Word{{Ref: ref(1, 0), Word: "CAT"}}

	claims := Enumerate("", words, "CAT")
	assert.Empty(t, claims)

	claims = Enumerate("", words, "ACT")
	assert.Empty(t, claims, "an anagram with no added letters is not a steal")
}

func TestEnumerateMultiWordMergeWithoutPool(t *testing.T) {
	words := []Word{
		{Ref: ref(0, 0), Word: "CAP"},
		{Ref: ref(1, 0), Word: "LEE"},
	}

	claims := Enumerate("", words, "PLACEE")
	require.Len(t, claims, 1)
	assert.Equal(t, []model.WordRef{ref(0, 0), ref(1, 0)}, claims[0].Stolen)
	assert.Equal(t, "", claims[0].FromPool)
}

func TestEnumerateMultiWordMergeWithPool(t *testing.T) {
	words := []Word{
		{Ref: ref(0, 0), Word: "TEA"},
		{Ref: ref(1, 0), Word: "RAN"},
	}

	claims := Enumerate("S", words, "ANTEARS")
	require.Len(t, claims, 1)
	assert.Equal(t, []model.WordRef{ref(0, 0), ref(1, 0)}, claims[0].Stolen)
	assert.Equal(t, "S", claims[0].FromPool)
}

func TestEnumerateFindsEveryCombinationOnce(t *testing.T) {
	words := []Word{
		{Ref: ref(0, 0), Word: "CAT"},
		{Ref: ref(1, 0), Word: "ACT"},
	}

	// "CATS" can steal either word, and the pool alone can't make it
	claims := Enumerate("S", words, "CATS")
	require.Len(t, claims, 2)
	assert.Equal(t, []model.WordRef{ref(0, 0)}, claims[0].Stolen)
	assert.Equal(t, []model.WordRef{ref(1, 0)}, claims[1].Stolen)
}

func TestEnumerateDoesNotRevisitPermutations(t *testing.T) {
	words := []Word{
		{Ref: ref(0, 0), Word: "AB"},
		{Ref: ref(0, 1), Word: "CD"},
		{Ref: ref(1, 0), Word: "EF"},
	}

	claims := Enumerate("", words, "ABCDEF")
	require.Len(t, claims, 1)
	assert.Equal(t, []model.WordRef{ref(0, 0), ref(0, 1), ref(1, 0)}, claims[0].Stolen)
}

func TestBestPrefersStealOverPool(t *testing.T) {
	words := []Word{{Ref: ref(1, 0), Word: "CAT"}}

	claims := Enumerate("CATS", words, "CATS")
	require.Len(t, claims, 2)

	best, ok := Best(claims, 0)
	require.True(t, ok)
	assert.Equal(t, []model.WordRef{ref(1, 0)}, best.Stolen)
	assert.Equal(t, "S", best.FromPool)
}

func TestBestPrefersOpponentsOverOwnWords(t *testing.T) {
	words := []Word{
		{Ref: ref(0, 0), Word: "CAT"},
		{Ref: ref(1, 0), Word: "TAC"},
	}
	claims := Enumerate("S", words, "CATS")

	best, ok := Best(claims, 0)
	require.True(t, ok)
	assert.Equal(t, []model.WordRef{ref(1, 0)}, best.Stolen)

	best, ok = Best(claims, 1)
	require.True(t, ok)
	assert.Equal(t, []model.WordRef{ref(0, 0)}, best.Stolen)
}

func TestBestPrefersMoreWordsOnTie(t *testing.T) {
	claims := []Claim{
		{Stolen: []model.WordRef{ref(1, 0)}, FromPool: "XY"},
		{Stolen: []model.WordRef{ref(1, 0), ref(0, 0)}, FromPool: ""},
	}

	best, ok := Best(claims, 0)
	require.True(t, ok)
	assert.Len(t, best.Stolen, 2)
}

func TestBestEmpty(t *testing.T) {
	_, ok := Best(nil, 0)
	assert.False(t, ok)
}

func TestVerify(t *testing.T) {
	capWord := Word{Ref: ref(0, 0), Word: "CAP"}
	lee := Word{Ref: ref(1, 0), Word: "LEE"}
	cat := Word{Ref: ref(1, 1), Word: "CAT"}

	c, ok := Verify("LE", []Word{capWord}, "PLACE")
	require.True(t, ok)
	assert.Equal(t, []model.WordRef{ref(0, 0)}, c.Stolen)

	c, ok = Verify("", []Word{lee, capWord}, "PLACEE")
	require.True(t, ok)
	assert.Equal(t, "", c.FromPool)

	_, ok = Verify("", []Word{cat}, "CAT")
	assert.False(t, ok, "unchanged steal")

	_, ok = Verify("L", []Word{capWord}, "PLACE")
	assert.False(t, ok, "pool short")

	_, ok = Verify("LEXX", []Word{cat}, "PLACE")
	assert.False(t, ok, "word not contained")

	c, ok = Verify("TAC", nil, "CAT")
	require.True(t, ok)
	assert.Nil(t, c.Stolen)
}
