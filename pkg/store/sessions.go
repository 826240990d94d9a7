package store

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
)

// ErrSessionNotFound is returned when a session id is unknown or closed.
var ErrSessionNotFound = errors.New("store: session not found")

// Sessions maps session ids to their stores.
type Sessions struct {
	mu     sync.RWMutex
	stores map[string]*Store
	newID  func() (string, error)
}

// NewSessions creates an empty session registry.
func NewSessions() *Sessions {
	return &Sessions{
		stores: make(map[string]*Store),
		newID:  randomID,
	}
}

// Open creates a new store under a fresh id.
func (s *Sessions) Open() (string, *Store, error) {
	id, err := s.newID()
	if err != nil {
		return "", nil, fmt.Errorf("store: generate session id: %w", err)
	}
	st := New()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.stores[id]; exists {
		return "", nil, fmt.Errorf("store: session %q already exists", id)
	}
	s.stores[id] = st
	return id, st, nil
}

// Get returns the store for id.
func (s *Sessions) Get(id string) (*Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stores[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return st, nil
}

// Close tears down the store for id and forgets it.
func (s *Sessions) Close(id string) error {
	s.mu.Lock()
	st, ok := s.stores[id]
	delete(s.stores, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	st.Close()
	return nil
}

// Len reports the number of open sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stores)
}

// CloseAll tears down every open session.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	stores := s.stores
	s.stores = make(map[string]*Store)
	s.mu.Unlock()

	for _, st := range stores {
		st.Close()
	}
}

func randomID() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}
