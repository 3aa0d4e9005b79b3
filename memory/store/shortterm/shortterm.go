// Package shortterm provides the bounded FIFO buffer of raw conversation
// turns that feeds the promotion pipeline.
package shortterm

import (
	"log"
	"sync"

	"github.com/becomeliminal/memtier/core"
)

// DefaultCapacity matches a handful of exchanges before promotion kicks in.
const DefaultCapacity = 10

// Store is an in-memory short-term buffer. Turns are appended as the
// conversation progresses; once the buffer exceeds its capacity the promoter
// drains it oldest-first.
type Store struct {
	turns    []*core.ConversationTurn
	capacity int
	mu       sync.Mutex
}

// New creates a short-term buffer holding up to capacity turns.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		turns:    make([]*core.ConversationTurn, 0, capacity),
		capacity: capacity,
	}
}

// Add appends a turn to the buffer. The buffer accepts turns beyond its
// capacity; IsFull turning true is the signal for the caller to promote.
func (s *Store) Add(turn *core.ConversationTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
	if len(s.turns) >= s.capacity {
		log.Printf("[SHORTTERM] Buffer at capacity (%d/%d), promotion due", len(s.turns), s.capacity)
	}
}

// IsFull reports whether the buffer has reached its capacity. The promoter
// pops while this holds, draining the buffer below capacity again.
func (s *Store) IsFull() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns) >= s.capacity
}

// PopOldest removes and returns the oldest turn, false when empty.
func (s *Store) PopOldest() (*core.ConversationTurn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.turns) == 0 {
		return nil, false
	}
	turn := s.turns[0]
	s.turns = s.turns[1:]
	return turn, true
}

// Len returns the number of buffered turns.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}
