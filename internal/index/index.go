// Package index implements a flat vector index with cosine-similarity search.
//
// The index keeps every embedded chunk in memory and persists to an opaque
// on-disk pair: a gob-encoded vector file and a JSON document store. Both
// files are loaded together at startup; if either is missing or unreadable
// the index starts empty instead of failing.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/viterin/vek/vek32"

	"github.com/mdkaba/campusmind/internal/models"
)

// Embedder turns text into fixed-dimension vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Index is a read-mostly flat vector index. Writes happen during ingestion,
// which is an administrative operation; live queries take a read lock only.
type Index struct {
	mu       sync.RWMutex
	dir      string
	embedder Embedder
	logger   *slog.Logger

	vectors [][]float32
	docs    []models.Document
}

// New creates an index persisted under dir, loading any previous state.
// Missing or corrupt state is not an error: the index starts empty.
func New(dir string, embedder Embedder, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	idx := &Index{
		dir:      dir,
		embedder: embedder,
		logger:   logger,
	}
	if err := idx.load(); err != nil {
		logger.Warn("no usable index state on disk, starting empty", "dir", dir, "error", err)
		idx.vectors = nil
		idx.docs = nil
	}
	return idx
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// Add embeds the documents and appends them to the index, then persists.
// Adding is purely additive; duplicate chunks are tolerated.
func (idx *Index) Add(ctx context.Context, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}

	vectors, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.vectors = append(idx.vectors, vectors...)
	idx.docs = append(idx.docs, docs...)

	if err := idx.persist(); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}

	idx.logger.Info("indexed documents", "added", len(docs), "total", len(idx.docs))
	return nil
}

// Search embeds the query and returns the k most similar chunks with their
// cosine-similarity scores, best first. An empty index yields no results.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]models.RetrievedChunk, error) {
	if k <= 0 {
		k = 3
	}

	idx.mu.RLock()
	empty := len(idx.docs) == 0
	idx.mu.RUnlock()
	if empty {
		return nil, nil
	}

	queryVec, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]models.RetrievedChunk, 0, len(idx.docs))
	for i, vec := range idx.vectors {
		if len(vec) != len(queryVec) {
			continue
		}
		results = append(results, models.RetrievedChunk{
			Document: idx.docs[i],
			Score:    vek32.CosineSimilarity(queryVec, vec),
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
