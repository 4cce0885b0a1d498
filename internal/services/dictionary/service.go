package dictionary

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mcoot/anagrams/internal/model"
	"github.com/mcoot/anagrams/internal/storage"
)

// MinWordLength is the shortest word that can ever be claimed
const MinWordLength = 3

// Service provides dictionary/word validation functionality
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	mu     sync.RWMutex
	words  map[string]struct{}
	loaded bool
}

// New creates a new DictionaryService
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		words:   make(map[string]struct{}),
	}
}

// Load prefers words already in storage and falls back to reading path
func (s *Service) Load(ctx context.Context, path string) error {
	err := s.LoadFromStorage(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrDictionaryNotLoaded) {
		return err
	}
	return s.LoadFromFile(ctx, path)
}

// LoadFromStorage loads dictionary words from storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	words, err := s.storage.GetDictionaryWords(ctx)
	if err != nil {
		return err
	}
	s.loadWords(words)
	s.logger.Info("dictionary loaded from storage", slog.Int("words", s.WordCount()))
	return nil
}

// LoadFromFile loads dictionary words from a file (one word per line)
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if len(word) >= MinWordLength && isLetters(word) {
			words = append(words, strings.ToLower(word))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	// Save to storage for future use
	if err := s.storage.SaveDictionaryWords(ctx, words); err != nil {
		return err
	}

	s.loadWords(words)
	s.logger.Info("dictionary loaded from file",
		slog.String("path", path),
		slog.Int("words", s.WordCount()))
	return nil
}

// LoadWords directly loads a slice of words (useful for testing)
func (s *Service) LoadWords(words []string) error {
	s.loadWords(words)
	return nil
}

func (s *Service) loadWords(words []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.words = make(map[string]struct{}, len(words))
	for _, word := range words {
		// Store lowercase for case-insensitive matching
		s.words[strings.ToLower(word)] = struct{}{}
	}
	s.loaded = true
}

// IsValidWord checks if a word exists in the dictionary.
// Words shorter than MinWordLength are never valid.
func (s *Service) IsValidWord(word string) bool {
	if len(word) < MinWordLength || !isLetters(word) {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return false
	}

	_, ok := s.words[strings.ToLower(word)]
	return ok
}

// IsLoaded returns whether the dictionary has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// WordCount returns the number of words in the dictionary
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

func isLetters(word string) bool {
	for _, r := range word {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// Interface check
type ServiceInterface interface {
	IsValidWord(word string) bool
	IsLoaded() bool
	WordCount() int
	Load(ctx context.Context, path string) error
	LoadFromStorage(ctx context.Context) error
	LoadFromFile(ctx context.Context, path string) error
	LoadWords(words []string) error
}

var _ ServiceInterface = (*Service)(nil)
