package memory

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/becomeliminal/memtier/core"
)

// Fallback wording used when the summarizer returns no themes.
const (
	fallbackSessionSummary = "General conversation segment from short-term memory."
	fallbackThemeContent   = "General summary of recent interactions."
)

// Config holds Promoter configuration.
type Config struct {
	// SimilarityThreshold is handed to the mid-term store on every session
	// insertion; the store merges into an existing session when the theme
	// summary is at least this similar to it.
	SimilarityThreshold float64

	// EnrichTimeout bounds the two derived-attribute computations for one
	// page. These are the latency-dominant collaborator calls. Zero disables
	// the bound.
	EnrichTimeout time.Duration
}

// DefaultConfig returns sensible defaults for local SDK use.
var DefaultConfig = &Config{
	SimilarityThreshold: 0.5,
	EnrichTimeout:       30 * time.Second,
}

// Promoter coordinates promotion between memory tiers: short-term turns into
// mid-term session pages, and analysis results into long-term knowledge.
//
// A Promoter holds no mutable state of its own. The continuity cursor (the
// most recently built page) is passed into and returned from Promote, owned
// by the caller; concurrent Promote calls against the same logical memory
// require external mutual exclusion.
type Promoter struct {
	short    ShortTermStore
	mid      MidTermStore
	long     LongTermStore
	backend  Backend
	embedder Embedder
	config   *Config
}

// NewPromoter creates a Promoter over the three tier stores and the LLM
// collaborators. embedder may be nil, in which case pages are promoted
// without embeddings and the mid-term store falls back to keyword placement.
func NewPromoter(short ShortTermStore, mid MidTermStore, long LongTermStore, backend Backend, embedder Embedder, config *Config) *Promoter {
	if config == nil {
		config = DefaultConfig
	}
	return &Promoter{
		short:    short,
		mid:      mid,
		long:     long,
		backend:  backend,
		embedder: embedder,
		config:   config,
	}
}

// Promote drains all excess turns from the short-term buffer and moves them
// into the mid-term store as linked, enriched, theme-grouped pages.
//
// cursor is the last page built by the previous Promote call (nil on the
// first call); the first page of this batch is tested for continuity against
// it. Promote returns the new cursor: the last page built here, or the input
// cursor unchanged when the batch was empty or a batch-level step failed.
//
// Collaborator failures outside attribute enrichment abort the remaining
// steps and surface to the caller; already-evicted turns are not restored.
// Callers that cannot tolerate that loss must retry or buffer upstream.
func (p *Promoter) Promote(ctx context.Context, cursor *Page) (*Page, error) {
	evicted := p.drainShortTerm()
	if len(evicted) == 0 {
		log.Printf("[PROMOTER] No turns evicted from short-term memory")
		return cursor, nil
	}

	log.Printf("[PROMOTER] Promoting %d turns from short-term to mid-term", len(evicted))

	pages, err := p.buildPages(ctx, cursor, evicted)
	if err != nil {
		return cursor, err
	}

	// Fill in missing embeddings/keywords. One page at a time; the two
	// computations for a page run in parallel inside Enrich.
	for _, page := range pages {
		p.Enrich(ctx, page)
	}

	if err := p.insertByTheme(ctx, pages); err != nil {
		return cursor, err
	}

	if err := p.finalizeConnections(ctx, pages); err != nil {
		return cursor, err
	}

	return pages[len(pages)-1], nil
}

// drainShortTerm pops turns oldest-first while the buffer is over capacity.
// Turns missing either side of the exchange are dropped, not promoted.
func (p *Promoter) drainShortTerm() []*core.ConversationTurn {
	var evicted []*core.ConversationTurn
	for p.short.IsFull() {
		turn, ok := p.short.PopOldest()
		if !ok {
			break
		}
		if !turn.Complete() {
			log.Printf("[PROMOTER] Dropping incomplete turn evicted at %s", turn.Timestamp.Format(time.RFC3339))
			continue
		}
		evicted = append(evicted, turn)
	}
	return evicted
}

// buildPages turns the evicted batch into pages and threads continuity links.
// The first page is judged against the carried-over cursor, later pages
// against the page built immediately before them.
func (p *Promoter) buildPages(ctx context.Context, cursor *Page, evicted []*core.ConversationTurn) ([]*Page, error) {
	pages := make([]*Page, 0, len(evicted))
	prev := cursor

	// Pages not yet handed to the mid-term store, keyed by id so that meta
	// propagation can walk chains spanning the batch and the store alike.
	batch := make(map[string]*Page)
	if cursor != nil {
		batch[cursor.ID] = cursor
	}

	for _, turn := range evicted {
		page := NewPage(turn)

		continuous, err := p.backend.CheckContinuity(ctx, prev, page)
		if err != nil {
			return nil, fmt.Errorf("check continuity for page %s: %w", page.ID, err)
		}

		if continuous && prev != nil {
			page.PrePage = prev.ID

			meta, err := p.backend.GeneratePageMetaInfo(ctx, prev.MetaInfo, page)
			if err != nil {
				return nil, fmt.Errorf("generate meta info for page %s: %w", page.ID, err)
			}
			page.MetaInfo = meta

			// The whole chain the previous page belongs to takes on the new
			// meta info. Chains reaching persisted pages trigger a save.
			persisted, err := p.mid.GetPageByID(ctx, prev.ID)
			if err != nil {
				return nil, fmt.Errorf("look up previous page %s: %w", prev.ID, err)
			}
			if err := p.propagateMetaInfo(ctx, prev.ID, meta, batch, persisted != nil); err != nil {
				return nil, err
			}
		} else {
			meta, err := p.backend.GeneratePageMetaInfo(ctx, "", page)
			if err != nil {
				return nil, fmt.Errorf("generate meta info for page %s: %w", page.ID, err)
			}
			page.MetaInfo = meta
		}

		batch[page.ID] = page
		pages = append(pages, page)
		prev = page
	}

	return pages, nil
}

// propagateMetaInfo rewrites meta info on every page reachable from startID
// over PrePage/NextPage edges. Breadth-first with a visited set; the link
// graph is acyclic by forward-time construction, so the walk terminates even
// without it, but the guard keeps re-linked pages from being visited twice.
// Pages are resolved from the in-flight batch first, then from the store;
// save is issued only for walks that reached persisted pages.
func (p *Promoter) propagateMetaInfo(ctx context.Context, startID, metaInfo string, batch map[string]*Page, save bool) error {
	queue := []string{startID}
	visited := map[string]bool{startID: true}
	touched := 0

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		page := batch[id]
		if page == nil {
			var err error
			page, err = p.mid.GetPageByID(ctx, id)
			if err != nil {
				return fmt.Errorf("look up page %s: %w", id, err)
			}
		}
		if page == nil {
			continue
		}

		page.MetaInfo = metaInfo
		touched++

		for _, neighbor := range []string{page.PrePage, page.NextPage} {
			if neighbor != "" && !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}

	if touched == 0 || !save {
		return nil
	}
	log.Printf("[PROMOTER] Propagated meta info across %d linked pages", touched)
	if err := p.mid.Save(ctx); err != nil {
		return fmt.Errorf("save after meta propagation: %w", err)
	}
	return nil
}

// insertByTheme asks the summarizer for theme-labeled summaries of the batch
// and inserts the entire batch once per theme. Pages are shared by reference
// across themes. With no themes, the batch becomes one generic session keyed
// by keywords extracted from the whole batch text.
func (p *Promoter) insertByTheme(ctx context.Context, pages []*Page) error {
	text := batchText(pages)

	log.Printf("[PROMOTER] Generating multi-topic summary for the evicted batch")
	summaries, err := p.backend.GenerateMultiSummary(ctx, text)
	if err != nil {
		return fmt.Errorf("generate multi summary: %w", err)
	}

	if len(summaries) == 0 {
		log.Printf("[PROMOTER] No themes from multi-summary, adding batch as a general session")
		keywords, err := p.backend.ExtractKeywords(ctx, text)
		if err != nil {
			return fmt.Errorf("extract fallback keywords: %w", err)
		}
		if err := p.mid.InsertPagesIntoSession(ctx, fallbackSessionSummary, dedupeKeywords(keywords), pages, p.config.SimilarityThreshold); err != nil {
			return fmt.Errorf("insert fallback session: %w", err)
		}
		return nil
	}

	for _, summary := range summaries {
		content := summary.Content
		if content == "" {
			content = fallbackThemeContent
		}
		log.Printf("[PROMOTER] Processing theme %q for mid-term insertion", summary.Theme)
		if err := p.mid.InsertPagesIntoSession(ctx, content, summary.Keywords, pages, p.config.SimilarityThreshold); err != nil {
			return fmt.Errorf("insert session for theme %q: %w", summary.Theme, err)
		}
	}
	return nil
}

// finalizeConnections repairs bidirectional links for every page carrying a
// pointer, then issues the batch's durable save. Session placement may have
// relocated pages, so the store re-registers each edge; re-registration of an
// existing edge is a no-op.
func (p *Promoter) finalizeConnections(ctx context.Context, pages []*Page) error {
	for _, page := range pages {
		if page.PrePage != "" {
			if err := p.mid.UpdatePageConnections(ctx, page.PrePage, page.ID); err != nil {
				return fmt.Errorf("connect %s -> %s: %w", page.PrePage, page.ID, err)
			}
		}
		if page.NextPage != "" {
			if err := p.mid.UpdatePageConnections(ctx, page.ID, page.NextPage); err != nil {
				return fmt.Errorf("connect %s -> %s: %w", page.ID, page.NextPage, err)
			}
		}
	}
	if err := p.mid.Save(ctx); err != nil {
		return fmt.Errorf("save mid-term store: %w", err)
	}
	return nil
}

// batchText concatenates the batch for summarization, one exchange per page.
func batchText(pages []*Page) string {
	parts := make([]string, len(pages))
	for i, page := range pages {
		parts[i] = fmt.Sprintf("User: %s\nAssistant: %s", page.UserInput, page.AgentResponse)
	}
	return strings.Join(parts, "\n")
}
