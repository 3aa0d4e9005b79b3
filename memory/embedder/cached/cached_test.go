package cached

import (
	"context"
	"errors"
	"testing"
)

// countingEmbedder counts how often the inner embedder is hit.
type countingEmbedder struct {
	calls int
	err   error
}

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return []float32{1, 0, 0}, nil
}

func (e *countingEmbedder) Dimensions() int {
	return 3
}

func TestEmbed_CachesRepeatedText(t *testing.T) {
	inner := &countingEmbedder{}
	e, err := New(inner, 16)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer e.Close()

	ctx := context.Background()
	if _, err := e.Embed(ctx, "repeated text"); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if _, err := e.Embed(ctx, "repeated text"); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("Expected 1 inner call for a repeated text, got %d", inner.calls)
	}

	if _, err := e.Embed(ctx, "different text"); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("Expected a second inner call for new text, got %d", inner.calls)
	}
}

func TestEmbed_ErrorsNotCached(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("model offline")}
	e, err := New(inner, 16)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer e.Close()

	ctx := context.Background()
	if _, err := e.Embed(ctx, "text"); err == nil {
		t.Fatal("Expected an error from the inner embedder")
	}

	inner.err = nil
	vec, err := e.Embed(ctx, "text")
	if err != nil {
		t.Fatalf("Expected retry to reach the recovered inner embedder: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("Unexpected vector %v", vec)
	}
	if inner.calls != 2 {
		t.Errorf("Expected both calls to reach the inner embedder, got %d", inner.calls)
	}
}

func TestDimensions_Passthrough(t *testing.T) {
	e, err := New(&countingEmbedder{}, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer e.Close()

	if got := e.Dimensions(); got != 3 {
		t.Errorf("Expected inner dimensions 3, got %d", got)
	}
}
