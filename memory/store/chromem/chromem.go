// Package chromem implements the mid-term session store on top of
// chromem-go, a pure Go embedded vector database.
//
// Sessions group pages that share a thematic summary. The session summaries
// live in a chromem collection so that inserting a new batch can decide, by
// vector similarity, whether to merge into an existing session or open a new
// one. Pages themselves live in an id-keyed arena; chain traversal and link
// repair go through explicit lookups, never through owning pointers.
package chromem

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	"github.com/becomeliminal/memtier/memory"
)

// Config configures the store.
type Config struct {
	// SnapshotPath, when set, is where Save writes a JSON snapshot of the
	// sessions and the page arena. Empty disables snapshots (pure in-memory).
	SnapshotPath string
}

// Session is a mid-term grouping of pages sharing a thematic summary and
// keyword signature.
type Session struct {
	ID        string    `json:"id"`
	Summary   string    `json:"summary"`
	Keywords  []string  `json:"keywords"`
	PageIDs   []string  `json:"page_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a chromem-backed memory.MidTermStore. All writes are serialized
// on the store's mutex.
type Store struct {
	db       *chromem.DB
	sessions *chromem.Collection
	embedder memory.Embedder

	meta  map[string]*Session      // session id -> session
	pages map[string]*memory.Page  // page arena, id-keyed
	dirty bool

	snapshotPath string
	mu           sync.Mutex
}

// New creates a chromem-based mid-term store. embedder is used only to embed
// session summaries for merge-vs-create placement; with a nil embedder every
// insertion opens a new session.
func New(embedder memory.Embedder, cfg Config) (*Store, error) {
	db := chromem.NewDB()

	col, err := db.CreateCollection("sessions", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create sessions collection: %w", err)
	}

	return &Store{
		db:           db,
		sessions:     col,
		embedder:     embedder,
		meta:         make(map[string]*Session),
		pages:        make(map[string]*memory.Page),
		snapshotPath: cfg.SnapshotPath,
	}, nil
}

// GetPageByID returns the live page record, or nil when not persisted.
func (s *Store) GetPageByID(ctx context.Context, id string) (*memory.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages[id], nil
}

// InsertPagesIntoSession places the batch under a theme summary. The summary
// is embedded and matched against existing session summaries; a similarity at
// or above similarityThreshold merges the batch into the best match,
// otherwise a new session is created. Pages are registered in the arena by
// reference, so a batch inserted under several themes is shared, not copied.
func (s *Store) InsertPagesIntoSession(ctx context.Context, summary string, keywords []string, pages []*memory.Page, similarityThreshold float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var embedding []float32
	if s.embedder != nil {
		var err error
		embedding, err = s.embedder.Embed(ctx, summary)
		if err != nil {
			return fmt.Errorf("embed session summary: %w", err)
		}
	}

	target := s.matchSession(ctx, embedding, similarityThreshold)
	if target == nil {
		target = &Session{
			ID:        "session_" + uuid.New().String(),
			Summary:   summary,
			Keywords:  append([]string(nil), keywords...),
			CreatedAt: time.Now(),
		}
		s.meta[target.ID] = target

		if embedding != nil {
			doc := chromem.Document{
				ID:        target.ID,
				Content:   summary,
				Embedding: embedding,
				Metadata: map[string]string{
					"created_at": target.CreatedAt.Format(time.RFC3339),
				},
			}
			if err := s.sessions.AddDocument(ctx, doc); err != nil {
				return fmt.Errorf("add session document: %w", err)
			}
		}
		log.Printf("[CHROMEM] Created session %s for %d pages", target.ID, len(pages))
	} else {
		target.Keywords = unionKeywords(target.Keywords, keywords)
		log.Printf("[CHROMEM] Merging %d pages into existing session %s", len(pages), target.ID)
	}

	for _, page := range pages {
		s.pages[page.ID] = page
		if !containsID(target.PageIDs, page.ID) {
			target.PageIDs = append(target.PageIDs, page.ID)
		}
	}
	target.UpdatedAt = time.Now()
	s.dirty = true
	return nil
}

// matchSession returns the existing session whose summary is most similar to
// the query embedding, provided the similarity meets the threshold.
// Caller holds the mutex.
func (s *Store) matchSession(ctx context.Context, embedding []float32, threshold float64) *Session {
	if embedding == nil || len(s.meta) == 0 {
		return nil
	}

	results, err := s.sessions.QueryEmbedding(ctx, embedding, 1, nil, nil)
	if err != nil {
		log.Printf("[CHROMEM] Session query failed, creating new session: %v", err)
		return nil
	}
	if len(results) == 0 || float64(results[0].Similarity) < threshold {
		return nil
	}
	return s.meta[results[0].ID]
}

// UpdatePageConnections registers the directed edge from -> to and repairs
// both sides of the link. Re-registering an existing edge is a no-op; edges
// naming pages the store does not hold are skipped.
func (s *Store) UpdatePageConnections(ctx context.Context, fromID, toID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, to := s.pages[fromID], s.pages[toID]
	if from == nil || to == nil {
		log.Printf("[CHROMEM] Cannot connect %s -> %s: page not persisted", fromID, toID)
		return nil
	}
	if from.NextPage == toID && to.PrePage == fromID {
		return nil
	}

	from.NextPage = toID
	to.PrePage = fromID
	s.dirty = true
	return nil
}

// Save writes a JSON snapshot of the sessions and page arena to the
// configured path. Without a snapshot path, or with no changes since the
// last save, Save is a no-op.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	if s.snapshotPath == "" {
		s.dirty = false
		return nil
	}

	snapshot := struct {
		Sessions map[string]*Session     `json:"sessions"`
		Pages    map[string]*memory.Page `json:"pages"`
	}{
		Sessions: s.meta,
		Pages:    s.pages,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(s.snapshotPath, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	s.dirty = false
	log.Printf("[CHROMEM] Saved %d sessions, %d pages to %s", len(s.meta), len(s.pages), s.snapshotPath)
	return nil
}

// Session returns a session by id, nil when absent.
func (s *Store) Session(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta[id]
}

// Sessions returns all sessions in unspecified order.
func (s *Store) Sessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Session, 0, len(s.meta))
	for _, session := range s.meta {
		out = append(out, session)
	}
	return out
}

// Close releases resources. chromem-go keeps everything in memory, so this
// only exists for interface symmetry with persistent implementations.
func (s *Store) Close() error {
	return nil
}

func unionKeywords(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, kw := range existing {
		seen[kw] = true
	}
	for _, kw := range added {
		if kw != "" && !seen[kw] {
			seen[kw] = true
			existing = append(existing, kw)
		}
	}
	return existing
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
