// Package policy holds the operator policy that constrains strategy ranking.
package policy

import (
	"fmt"
	"sync"

	"github.com/kilianp07/gridpilot/core/model"
)

// Store keeps the active policy record. Readers take one Snapshot per
// evaluation so an update never becomes visible halfway through it.
type Store struct {
	mu     sync.RWMutex
	active *model.PolicyConstraints
}

// NewStore returns a store. A nil initial policy leaves the store unset.
func NewStore(initial *model.PolicyConstraints) *Store {
	s := &Store{}
	if initial != nil {
		p := *initial
		s.active = &p
	}
	return s
}

// Snapshot returns the active policy or DefaultPolicy when none is set.
func (s *Store) Snapshot() model.PolicyConstraints {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return model.DefaultPolicy()
	}
	return *s.active
}

// Set validates and activates p.
func (s *Store) Set(p model.PolicyConstraints) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	s.mu.Lock()
	s.active = &p
	s.mu.Unlock()
	return nil
}

// Reset clears the active policy.
func (s *Store) Reset() {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
}
