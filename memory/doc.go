// Package memory implements the tier-promotion pipeline that moves
// conversational turns between memory tiers.
//
// Tiers:
//   - Short-term: bounded FIFO buffer of raw turns (store/shortterm)
//   - Mid-term: theme-organized sessions of pages (store/chromem)
//   - Long-term: user profile and knowledge items (store/longterm)
//
// The Promoter drains turns evicted from the short-term buffer, builds a
// linked Page per turn, fills in derived attributes (embedding, keywords),
// groups the batch into theme-labeled sessions in the mid-term store, and
// repairs cross-page links after insertion. A separate flow folds
// profile/knowledge analysis results into the long-term store.
//
// The Promoter computes no similarity and owns no storage. The stores and
// the LLM backend are collaborators behind narrow interfaces so production
// deployments can swap implementations (pgvector store, hosted embedders)
// without touching the pipeline.
//
// Local SDK Implementation:
//   - chromem-go mid-term store (embedded vector database)
//   - ONNX embedder with all-MiniLM-L6-v2 (real semantic search, offline)
//   - Anthropic backend for continuity, meta info, and summarization
package memory
