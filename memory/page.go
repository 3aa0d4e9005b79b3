package memory

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/becomeliminal/memtier/core"
)

// Page is one conversational turn plus derived metadata; the atomic unit
// moved between memory tiers. A page is owned by its batch until session
// insertion, then by the mid-term store.
//
// PrePage/NextPage form an implicit chain of pages that continue one
// exchange. The chain is never materialized; it is traversed on demand
// through MidTermStore lookups.
type Page struct {
	ID            string    `json:"page_id"`
	UserInput     string    `json:"user_input"`
	AgentResponse string    `json:"agent_response"`
	Timestamp     time.Time `json:"timestamp"`

	// Preloaded marks pages seeded from an external corpus rather than
	// evicted from the short-term buffer.
	Preloaded bool `json:"preloaded"`

	// Analyzed marks pages already consumed by a profile analysis pass.
	Analyzed bool `json:"analyzed"`

	// PrePage and NextPage are page IDs; empty means no link.
	PrePage  string `json:"pre_page,omitempty"`
	NextPage string `json:"next_page,omitempty"`

	// MetaInfo is chain-level descriptive text, kept identical across every
	// page in a chain. Empty means not yet generated.
	MetaInfo string `json:"meta_info,omitempty"`

	// Embedding is unit-norm when set. Nil means not yet computed.
	Embedding []float32 `json:"page_embedding,omitempty"`

	// Keywords are deduplicated when set. Nil means not yet computed.
	Keywords []string `json:"page_keywords,omitempty"`
}

// NewPage builds a fresh, unlinked page from an evicted turn.
func NewPage(turn *core.ConversationTurn) *Page {
	ts := turn.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return &Page{
		ID:            "page_" + uuid.New().String(),
		UserInput:     turn.UserInput,
		AgentResponse: turn.AgentResponse,
		Timestamp:     ts,
	}
}

// FullText returns the union text both derived-attribute computations run on.
func (p *Page) FullText() string {
	return fmt.Sprintf("User: %s Assistant: %s", p.UserInput, p.AgentResponse)
}

// Enriched reports whether both derived attributes are already set.
func (p *Page) Enriched() bool {
	return len(p.Embedding) > 0 && len(p.Keywords) > 0
}
