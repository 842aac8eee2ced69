package snapshot

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"PatternRank/internal/model"
)

// Store holds the latest ranking in memory and mirrors it to a JSON file.
// An empty path keeps it in memory only.
type Store struct {
	mu       sync.Mutex
	state    *State
	filePath string
}

// NewStore creates a Store, loading any previous state from disk.
func NewStore(filePath string) (*Store, error) {
	s := &Store{filePath: filePath}
	if filePath == "" {
		return s, nil
	}
	state, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	s.state = state
	if state != nil {
		log.Info().Str("path", filePath).Str("run", state.RunID).Int("results", len(state.Results)).
			Msg("previous ranking restored")
	}
	return s, nil
}

// Get returns a copy of the current state, or nil when nothing was stored yet.
func (s *Store) Get() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil
	}
	cp := *s.state
	cp.Results = append([]model.PatternResult(nil), s.state.Results...)
	cp.Skipped = append([]SkippedPattern(nil), s.state.Skipped...)
	return &cp
}

// Put replaces the stored state and persists it.
func (s *Store) Put(state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	if s.filePath == "" {
		return nil
	}
	if err := SaveState(s.filePath, state); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Top returns up to n stored results; a non-positive n returns all of them.
func (s *Store) Top(n int) []model.PatternResult {
	st := s.Get()
	if st == nil {
		return nil
	}
	if n <= 0 || n > len(st.Results) {
		n = len(st.Results)
	}
	return st.Results[:n]
}
