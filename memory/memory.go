package memory

import (
	"context"

	"github.com/becomeliminal/memtier/core"
)

// ShortTermStore is the bounded buffer the Promoter drains.
// Implementations: shortterm.Store (local SDK), redis-backed (production).
type ShortTermStore interface {
	// IsFull reports whether the buffer holds more turns than its capacity
	// allows. The Promoter pops until this returns false.
	IsFull() bool

	// PopOldest removes and returns the oldest buffered turn.
	// The second return is false when the buffer is empty.
	PopOldest() (*core.ConversationTurn, bool)
}

// MidTermStore holds theme-organized sessions of pages.
// Implementations: chromem.Store (local SDK), PgVectorStore (production).
type MidTermStore interface {
	// GetPageByID returns the store's live record for a page, or nil (with a
	// nil error) when the page is not persisted. Callers may update derived
	// fields (meta info, links) through the returned record and then Save;
	// writes to one store instance must be serialized by the caller.
	GetPageByID(ctx context.Context, id string) (*Page, error)

	// InsertPagesIntoSession places pages under a theme summary. The store
	// decides whether to merge into an existing session or create a new one,
	// merging when the summary's similarity to an existing session meets
	// similarityThreshold. Pages are held by reference: inserting the same
	// batch under several themes shares the records, never copies them.
	InsertPagesIntoSession(ctx context.Context, summary string, keywords []string, pages []*Page, similarityThreshold float64) error

	// UpdatePageConnections registers a directed adjacency between two
	// persisted pages and repairs both sides of the link. Re-registering an
	// existing edge is a no-op.
	UpdatePageConnections(ctx context.Context, fromID, toID string) error

	// Save durably persists the store's current state.
	Save(ctx context.Context) error
}

// LongTermStore holds the user profile and accumulated knowledge.
// Implementations: longterm.Store (local SDK), SQL-backed (production).
type LongTermStore interface {
	// UpdateUserProfile stores profile text for a user. With merge false the
	// text replaces the stored profile; with merge true it is appended.
	UpdateUserProfile(ctx context.Context, userID, profile string, merge bool) error

	// AddUserKnowledge appends one user-owned knowledge item.
	AddUserKnowledge(ctx context.Context, text string) error

	// AddAssistantKnowledge appends one assistant-owned knowledge item.
	AddAssistantKnowledge(ctx context.Context, text string) error
}

// Backend is the LLM collaborator behind the pipeline's semantic judgments.
// Implementations: anthropic.Backend (local SDK), any hosted model gateway.
type Backend interface {
	// CheckContinuity judges whether curr continues the exchange prev belongs
	// to. prev is nil when no earlier page exists.
	CheckContinuity(ctx context.Context, prev, curr *Page) (bool, error)

	// GeneratePageMetaInfo produces chain-level descriptive text for a page,
	// evolving prevMeta when the page continues a chain. prevMeta is empty
	// when the page starts a new chain.
	GeneratePageMetaInfo(ctx context.Context, prevMeta string, page *Page) (string, error)

	// GenerateMultiSummary splits batch text into zero or more theme-labeled
	// summaries. Zero themes is a valid outcome, not an error.
	GenerateMultiSummary(ctx context.Context, text string) ([]ThemeSummary, error)

	// ExtractKeywords pulls salient keywords out of free text.
	ExtractKeywords(ctx context.Context, text string) ([]string, error)
}

// Embedder converts text to vector embeddings.
// Implementations: mock.Embedder (testing), onnx.Embedder (local SDK),
// cached.Embedder (wrapper), VoyageEmbedder (production).
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// ThemeSummary is one theme-labeled summary of a promoted batch. It is
// produced per batch and consumed immediately by session insertion.
type ThemeSummary struct {
	Theme    string   `json:"theme"`
	Content  string   `json:"content"`
	Keywords []string `json:"keywords"`
}
