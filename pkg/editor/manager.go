package editor

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/store"
)

// Manager owns the sessions of a server, one store per session.
type Manager struct {
	stores *store.Sessions
	opts   []Option

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager applies opts to every session it opens.
func NewManager(opts ...Option) *Manager {
	return &Manager{
		stores:   store.NewSessions(),
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Open starts a session for tpl.
func (m *Manager) Open(tpl model.Template, opts ...Option) (*Session, error) {
	id, st, err := m.stores.Open()
	if err != nil {
		return nil, fmt.Errorf("editor: open session: %w", err)
	}
	all := append(append([]Option(nil), m.opts...), opts...)
	session, err := NewSession(id, tpl, st, all...)
	if err != nil {
		_ = m.stores.Close(id)
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()
	return session, nil
}

// Get returns the open session for id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return session, nil
}

// Close tears down the session for id.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return store.ErrSessionNotFound
	}
	session.Preview.Stop()
	return m.stores.Close(id)
}

// Len reports the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll tears down every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Preview.Stop()
	}
	m.stores.CloseAll()
}
