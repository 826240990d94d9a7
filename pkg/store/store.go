package store

import (
	"maps"
	"sync"
)

// Listener observes store writes. It receives a snapshot of the values after
// the write; the map is owned by the listener. Listeners run on the writer's
// goroutine and must not write back into the same store.
type Listener func(values map[string]any)

type subscription struct {
	id int
	fn Listener
}

// Store is a session-scoped key/value map. Writes replace whole values; there
// is no history or partial mutation.
type Store struct {
	mu        sync.RWMutex
	values    map[string]any
	listeners []subscription
	nextID    int
	closed    bool

	// notify serialises listener delivery so subscribers observe writes in
	// the order they were applied.
	notify sync.Mutex
}

// New creates an empty store.
func New() *Store {
	return &Store{values: make(map[string]any)}
}

// NewWithValues creates a store seeded with a copy of values.
func NewWithValues(values map[string]any) *Store {
	s := New()
	maps.Copy(s.values, values)
	return s
}

// SetValues replaces the whole value map.
func (s *Store) SetValues(values map[string]any) {
	if s == nil {
		return
	}
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	next := make(map[string]any, len(values))
	maps.Copy(next, values)
	s.values = next
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	deliver(listeners, snapshot)
}

// UpdateValue replaces the value stored under name.
func (s *Store) UpdateValue(name string, value any) {
	if s == nil || name == "" {
		return
	}
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.values[name] = value
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	deliver(listeners, snapshot)
}

// Delete removes name from the store.
func (s *Store) Delete(name string) {
	if s == nil {
		return
	}
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if _, ok := s.values[name]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.values, name)
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	deliver(listeners, snapshot)
}

// Get returns the value stored under name.
func (s *Store) Get(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[name]
	return value, ok
}

// Values returns a copy of the current values.
func (s *Store) Values() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Len reports how many keys are stored.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Subscribe registers fn for every subsequent write and returns a function
// that removes the subscription. Subscribing to a closed store is a no-op.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	if s == nil || fn == nil {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

// Close ends the session: listeners are dropped and later writes ignored.
func (s *Store) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.listeners = nil
	s.values = make(map[string]any)
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	if s == nil {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Store) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for idx, sub := range s.listeners {
		if sub.id == id {
			s.listeners = append(s.listeners[:idx:idx], s.listeners[idx+1:]...)
			return
		}
	}
}

func (s *Store) snapshotLocked() (map[string]any, []Listener) {
	if len(s.listeners) == 0 {
		return nil, nil
	}
	listeners := make([]Listener, len(s.listeners))
	for idx, sub := range s.listeners {
		listeners[idx] = sub.fn
	}
	return maps.Clone(s.values), listeners
}

func deliver(listeners []Listener, snapshot map[string]any) {
	last := len(listeners) - 1
	for idx, fn := range listeners {
		if idx == last {
			fn(snapshot)
			continue
		}
		fn(maps.Clone(snapshot))
	}
}
