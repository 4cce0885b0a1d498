package factory

import (
	"time"

	"github.com/mcoot/anagrams/internal/dependencies/mocks"
	"github.com/mcoot/anagrams/internal/model"
	"github.com/mcoot/anagrams/internal/storage"
	"github.com/mcoot/anagrams/internal/storage/memory"
	"github.com/mcoot/anagrams/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIDs    *mocks.MockIDGenerator
}

// TestOptions tweak NewTestApp
type TestOptions struct {
	// DevMode draws alphabetically and skips the turn check
	DevMode bool
	// Storage replaces the default in-memory backend
	Storage storage.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The mock random source always yields 0, so tiles come out of the bag in
// alphabetical order.
func NewTestApp(opts ...TestOptions) *TestApp {
	var o TestOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	store := o.Storage
	if store == nil {
		store = memory.New()
	}
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewMockIDGenerator()

	app := newWithDependencies(store, mockClock, mockRandom, mockIDs, options{
		devMode: o.DevMode,
		limits:  model.DefaultLimits(),
	}, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIDs:    mockIDs,
	}
}

// LoadTestDictionary loads a small dictionary for testing
func (t *TestApp) LoadTestDictionary() error {
	return t.DictionaryService.LoadWords(TestWords)
}

// TestWords is a small dictionary covering the words the tests claim
var TestWords = []string{
	"aah", "aba", "abba", "abbe", "abed", "babe", "bad", "bade", "bead", "cab",
	"cabs", "cad", "cap", "cape", "capes", "cat", "cats", "act", "acts", "dab",
	"dace", "dog", "eat", "eats", "ace", "aced", "bee", "beaded", "dead", "deed",
	"fed", "feed", "lee", "place", "placee", "sea", "seat", "tea", "teas",
}
