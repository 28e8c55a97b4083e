package inspector

import "sync"

// Store keeps recorded exchanges.
type Store interface {
	Add(exchange Exchange) int64
	Get(id int64) (*Exchange, bool)
	List() []Exchange
	Clear()
}

// InMemoryStore is a bounded store that evicts the oldest exchange once
// capacity is reached.
type InMemoryStore struct {
	mu        sync.RWMutex
	exchanges []Exchange
	capacity  int
	nextID    int64
}

// NewInMemoryStore creates a store holding at most capacity exchanges.
func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &InMemoryStore{capacity: capacity}
}

// Add stores exchange under a new id and returns it.
func (s *InMemoryStore) Add(exchange Exchange) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	exchange.ID = s.nextID
	if len(s.exchanges) >= s.capacity {
		s.exchanges = append(s.exchanges[:0], s.exchanges[1:]...)
	}
	s.exchanges = append(s.exchanges, exchange)
	return exchange.ID
}

func (s *InMemoryStore) Get(id int64) (*Exchange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.exchanges {
		if s.exchanges[i].ID == id {
			ex := s.exchanges[i]
			return &ex, true
		}
	}
	return nil, false
}

// List returns stored exchanges, newest first.
func (s *InMemoryStore) List() []Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Exchange, 0, len(s.exchanges))
	for i := len(s.exchanges) - 1; i >= 0; i-- {
		out = append(out, s.exchanges[i])
	}
	return out
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = nil
}
