// server/internal/listview/snapshot.go
package listview

import "sync"

// Snapshot retains the last successfully rendered value per view key so a
// transient fetch failure serves the previous data instead of blanking a
// populated screen.
type Snapshot[T any] struct {
	mu     sync.RWMutex
	values map[string]T
}

func NewSnapshot[T any]() *Snapshot[T] {
	return &Snapshot[T]{values: make(map[string]T)}
}

// Store records a successful render.
func (s *Snapshot[T]) Store(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Last returns the most recent successful render for the key, if any.
func (s *Snapshot[T]) Last(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}
