// Package longterm implements the long-term store: one profile per user plus
// bounded rings of user-owned and assistant-owned knowledge items.
package longterm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultKnowledgeCapacity bounds each knowledge ring.
const DefaultKnowledgeCapacity = 100

// KnowledgeItem is one promoted fact.
type KnowledgeItem struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Config configures the store.
type Config struct {
	// KnowledgeCapacity caps each of the two knowledge rings; the oldest item
	// is evicted when a ring is full. Zero means DefaultKnowledgeCapacity.
	KnowledgeCapacity int

	// SnapshotPath, when set, is where Save writes a JSON snapshot.
	SnapshotPath string
}

// Store is an in-memory memory.LongTermStore.
type Store struct {
	profiles           map[string]string
	userKnowledge      []*KnowledgeItem
	assistantKnowledge []*KnowledgeItem
	capacity           int
	snapshotPath       string
	mu                 sync.Mutex
}

// New creates a long-term store.
func New(cfg Config) *Store {
	capacity := cfg.KnowledgeCapacity
	if capacity <= 0 {
		capacity = DefaultKnowledgeCapacity
	}
	return &Store{
		profiles:     make(map[string]string),
		capacity:     capacity,
		snapshotPath: cfg.SnapshotPath,
	}
}

// UpdateUserProfile stores profile text for a user. With merge false the text
// replaces the stored profile; with merge true it is appended to it.
func (s *Store) UpdateUserProfile(ctx context.Context, userID, profile string, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if merge && s.profiles[userID] != "" {
		s.profiles[userID] = s.profiles[userID] + "\n" + profile
	} else {
		s.profiles[userID] = profile
	}
	log.Printf("[LONGTERM] Updated profile for user %s (merge=%t)", userID, merge)
	return nil
}

// AddUserKnowledge appends one user-owned knowledge item.
func (s *Store) AddUserKnowledge(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userKnowledge = appendBounded(s.userKnowledge, newItem(text), s.capacity)
	return nil
}

// AddAssistantKnowledge appends one assistant-owned knowledge item.
func (s *Store) AddAssistantKnowledge(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assistantKnowledge = appendBounded(s.assistantKnowledge, newItem(text), s.capacity)
	return nil
}

// Profile returns the stored profile for a user, empty when unset.
func (s *Store) Profile(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[userID]
}

// UserKnowledge returns the user-owned knowledge items, oldest first.
func (s *Store) UserKnowledge() []*KnowledgeItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*KnowledgeItem(nil), s.userKnowledge...)
}

// AssistantKnowledge returns the assistant-owned knowledge items, oldest first.
func (s *Store) AssistantKnowledge() []*KnowledgeItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*KnowledgeItem(nil), s.assistantKnowledge...)
}

// Save writes a JSON snapshot to the configured path, no-op when unset.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshotPath == "" {
		return nil
	}

	snapshot := struct {
		Profiles           map[string]string `json:"profiles"`
		UserKnowledge      []*KnowledgeItem  `json:"user_knowledge"`
		AssistantKnowledge []*KnowledgeItem  `json:"assistant_knowledge"`
	}{s.profiles, s.userKnowledge, s.assistantKnowledge}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(s.snapshotPath, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func newItem(text string) *KnowledgeItem {
	return &KnowledgeItem{
		ID:        "knowledge_" + uuid.New().String(),
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// appendBounded appends an item, evicting the oldest when the ring is full.
func appendBounded(items []*KnowledgeItem, item *KnowledgeItem, capacity int) []*KnowledgeItem {
	items = append(items, item)
	if len(items) > capacity {
		items = items[1:]
	}
	return items
}
