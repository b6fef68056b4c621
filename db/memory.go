package db

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ferminhg/poker-planning/models"
)

type memoryEntry struct {
	state *models.RoomState
	timer clockwork.Timer
}

// MemoryStore is an in-process Store. Expiry is a deferred deletion
// scheduled at write time, refreshed on every Set. Process-local only.
type MemoryStore struct {
	mutex sync.RWMutex
	rooms map[string]*memoryEntry
	clock clockwork.Clock
	ttl   time.Duration
}

// NewMemoryStore creates an in-memory store whose entries expire ttl
// after their last write.
func NewMemoryStore(clock clockwork.Clock, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*memoryEntry),
		clock: clock,
		ttl:   ttl,
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.RoomState, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entry, exists := s.rooms[id]
	if !exists {
		return nil, nil
	}
	return entry.state.Clone(), nil
}

func (s *MemoryStore) Set(ctx context.Context, id string, state *models.RoomState) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if entry, exists := s.rooms[id]; exists {
		entry.timer.Stop()
	}

	entry := &memoryEntry{state: state.Clone()}
	entry.timer = s.clock.AfterFunc(s.ttl, func() { s.expire(id, entry) })
	s.rooms[id] = entry
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if entry, exists := s.rooms[id]; exists {
		entry.timer.Stop()
		delete(s.rooms, id)
	}
	return nil
}

// expire only removes the entry it was scheduled for; a Set that raced
// the firing timer keeps its fresh entry.
func (s *MemoryStore) expire(id string, scheduled *memoryEntry) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if current, exists := s.rooms[id]; exists && current == scheduled {
		delete(s.rooms, id)
	}
}
