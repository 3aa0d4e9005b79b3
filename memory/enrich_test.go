package memory_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/becomeliminal/memtier/memory"
)

func enrichPromoter(backend *scriptedBackend, embedder memory.Embedder) *memory.Promoter {
	return memory.NewPromoter(nil, nil, nil, backend, embedder, nil)
}

func TestEnrich_ComputesBothAttributes(t *testing.T) {
	backend := &scriptedBackend{keywords: []string{"go", "memory"}}
	embedder := &fixedEmbedder{dims: 4}
	promoter := enrichPromoter(backend, embedder)

	page := memory.NewPage(turn("hello", "world"))
	promoter.Enrich(context.Background(), page)

	if len(page.Embedding) != 4 {
		t.Fatalf("Expected 4-dim embedding, got %d", len(page.Embedding))
	}
	if len(page.Keywords) != 2 {
		t.Fatalf("Expected 2 keywords, got %v", page.Keywords)
	}
}

func TestEnrich_EmbeddingIsUnitNorm(t *testing.T) {
	promoter := enrichPromoter(&scriptedBackend{keywords: []string{"k"}}, &fixedEmbedder{dims: 4})

	page := memory.NewPage(turn("hello", "world"))
	promoter.Enrich(context.Background(), page)

	var norm float64
	for _, v := range page.Embedding {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-6 {
		t.Errorf("Expected unit-norm embedding, got norm %f", math.Sqrt(norm))
	}
}

func TestEnrich_SkipsEnrichedPage(t *testing.T) {
	backend := &scriptedBackend{keywords: []string{"new"}}
	embedder := &fixedEmbedder{dims: 4}
	promoter := enrichPromoter(backend, embedder)

	page := memory.NewPage(turn("hello", "world"))
	page.Embedding = []float32{1, 0, 0, 0}
	page.Keywords = []string{"old"}

	promoter.Enrich(context.Background(), page)

	if embedder.calls != 0 || backend.keywordCalls != 0 {
		t.Errorf("Expected no collaborator calls for an enriched page, got %d embeds, %d extractions", embedder.calls, backend.keywordCalls)
	}
	if page.Keywords[0] != "old" {
		t.Errorf("Expected existing keywords untouched, got %v", page.Keywords)
	}
}

func TestEnrich_EmbeddingFailureKeepsKeywords(t *testing.T) {
	backend := &scriptedBackend{keywords: []string{"k1", "k2"}}
	embedder := &fixedEmbedder{dims: 4, err: errors.New("model offline")}
	promoter := enrichPromoter(backend, embedder)

	page := memory.NewPage(turn("hello", "world"))
	promoter.Enrich(context.Background(), page)

	if len(page.Embedding) != 0 {
		t.Errorf("Expected no embedding after failure, got %v", page.Embedding)
	}
	if len(page.Keywords) != 2 {
		t.Errorf("Expected keywords despite embedding failure, got %v", page.Keywords)
	}
}

func TestEnrich_KeywordFailureKeepsEmbedding(t *testing.T) {
	backend := &scriptedBackend{keywordErr: errors.New("backend down")}
	promoter := enrichPromoter(backend, &fixedEmbedder{dims: 4})

	page := memory.NewPage(turn("hello", "world"))
	promoter.Enrich(context.Background(), page)

	if len(page.Embedding) != 4 {
		t.Errorf("Expected embedding despite keyword failure, got %v", page.Embedding)
	}
	if len(page.Keywords) != 0 {
		t.Errorf("Expected no keywords after failure, got %v", page.Keywords)
	}
}

func TestEnrich_RecomputesOnlyMissingAttribute(t *testing.T) {
	backend := &scriptedBackend{keywords: []string{"k"}}
	embedder := &fixedEmbedder{dims: 4}
	promoter := enrichPromoter(backend, embedder)

	page := memory.NewPage(turn("hello", "world"))
	page.Embedding = []float32{1, 0, 0, 0}

	promoter.Enrich(context.Background(), page)

	if embedder.calls != 0 {
		t.Errorf("Expected embedding left alone, got %d embed calls", embedder.calls)
	}
	if backend.keywordCalls != 1 {
		t.Errorf("Expected one keyword extraction, got %d", backend.keywordCalls)
	}
}

func TestEnrich_DeduplicatesKeywords(t *testing.T) {
	backend := &scriptedBackend{keywords: []string{" go ", "go", "", "memory"}}
	promoter := enrichPromoter(backend, &fixedEmbedder{dims: 4})

	page := memory.NewPage(turn("hello", "world"))
	promoter.Enrich(context.Background(), page)

	if len(page.Keywords) != 2 || page.Keywords[0] != "go" || page.Keywords[1] != "memory" {
		t.Errorf("Expected deduplicated trimmed keywords, got %v", page.Keywords)
	}
}

func TestEnrich_NilEmbedderSkipsEmbedding(t *testing.T) {
	backend := &scriptedBackend{keywords: []string{"k"}}
	promoter := enrichPromoter(backend, nil)

	page := memory.NewPage(turn("hello", "world"))
	promoter.Enrich(context.Background(), page)

	if len(page.Embedding) != 0 {
		t.Errorf("Expected no embedding without an embedder, got %v", page.Embedding)
	}
	if len(page.Keywords) != 1 {
		t.Errorf("Expected keywords still computed, got %v", page.Keywords)
	}
}
