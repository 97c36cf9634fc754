// Package session persists the reader's scroll position between runs.
package session

import (
	"fmt"
	"log"
	"time"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const (
	sessionObject   = "session"
	sessionProperty = "scroll"
)

// State is the persisted reading position. Fraction is the offset divided by the scroll height
// at save time, so a position survives a change of window size.
type State struct {
	Page     string    `yaml:"page"`
	Offset   float32   `yaml:"offset"`
	Fraction float32   `yaml:"fraction"`
	SavedAt  time.Time `yaml:"saved_at"`
}

// Store reads and writes State through gdata. A Store with no manager keeps state in memory only.
type Store struct {
	manager *gdata.Manager
	memory  *State
}

// Open opens the platform data directory for appName.
//
// Parameters:
//   - appName: the gdata application name
//
// Returns:
//   - *Store: the store
//   - error: error if the data directory cannot be opened
func Open(appName string) (*Store, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}
	return NewStore(m), nil
}

// NewStore wraps an existing manager. A nil manager gives a memory-only store.
func NewStore(m *gdata.Manager) *Store {
	return &Store{manager: m}
}

// Load returns the saved state for page.
//
// Parameters:
//   - page: the page identifier the state must belong to
//
// Returns:
//   - State: the saved state
//   - bool: false if nothing was saved for this page
//   - error: error if saved data exists but cannot be read
func (s *Store) Load(page string) (State, bool, error) {
	if s.manager == nil {
		if s.memory == nil || s.memory.Page != page {
			return State{}, false, nil
		}
		return *s.memory, true, nil
	}

	if !s.manager.ObjectPropExists(sessionObject, sessionProperty) {
		return State{}, false, nil
	}
	data, err := s.manager.LoadObjectProp(sessionObject, sessionProperty)
	if err != nil {
		return State{}, false, fmt.Errorf("failed to load session: %w", err)
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, false, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if st.Page != page {
		return State{}, false, nil
	}
	return st, true, nil
}

// Save writes st, stamping SavedAt if it is zero.
//
// Parameters:
//   - st: the state to persist
//
// Returns:
//   - error: error if the state cannot be encoded or written
func (s *Store) Save(st State) error {
	if st.SavedAt.IsZero() {
		st.SavedAt = time.Now().UTC()
	}
	if s.manager == nil {
		s.memory = &st
		return nil
	}

	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.manager.SaveObjectProp(sessionObject, sessionProperty, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	log.Printf("[Session] Saved scroll position %.0fpx (%.1f%%)", st.Offset, st.Fraction*100)
	return nil
}
