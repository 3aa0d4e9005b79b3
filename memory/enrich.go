package memory

import (
	"context"
	"log"
	"math"
	"strings"
	"sync"
)

// Enrich fills in a page's missing derived attributes: the embedding over the
// page's union text and its keyword set. The two computations run as parallel
// tasks with independent outcomes; a failure in one is logged and leaves that
// attribute unset without affecting the other. Pages that already carry both
// attributes are returned untouched, so Enrich is idempotent.
//
// At most two tasks run per call. Batch callers that want cross-page
// concurrency add their own worker pool on top.
func (p *Promoter) Enrich(ctx context.Context, page *Page) {
	if page.Enriched() {
		log.Printf("[PROMOTER] Page %s already has embedding and keywords, skipping computation", page.ID)
		return
	}

	if p.config.EnrichTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.EnrichTimeout)
		defer cancel()
	}

	text := page.FullText()

	var (
		wg        sync.WaitGroup
		embedding []float32
		embedErr  error
		keywords  []string
		kwErr     error
	)

	wantEmbedding := len(page.Embedding) == 0 && p.embedder != nil
	wantKeywords := len(page.Keywords) == 0

	if wantEmbedding {
		wg.Add(1)
		go func() {
			defer wg.Done()
			embedding, embedErr = p.embedder.Embed(ctx, text)
		}()
	}
	if wantKeywords {
		wg.Add(1)
		go func() {
			defer wg.Done()
			keywords, kwErr = p.backend.ExtractKeywords(ctx, text)
		}()
	}
	wg.Wait()

	if wantEmbedding {
		if embedErr != nil {
			log.Printf("[PROMOTER] Embedding computation failed for page %s: %v", page.ID, embedErr)
		} else if len(embedding) > 0 {
			page.Embedding = normalizeEmbedding(embedding)
		}
	}
	if wantKeywords {
		if kwErr != nil {
			log.Printf("[PROMOTER] Keyword extraction failed for page %s: %v", page.ID, kwErr)
		} else if deduped := dedupeKeywords(keywords); len(deduped) > 0 {
			page.Keywords = deduped
		}
	}
}

// normalizeEmbedding scales a vector to unit L2 norm. Zero vectors are
// returned unchanged.
func normalizeEmbedding(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}
	return normalized
}

// dedupeKeywords trims and deduplicates keywords, preserving first-seen order.
func dedupeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	var out []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}
