package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mdkaba/campusmind/internal/models"
)

// stubEmbedder maps known texts to fixed vectors so similarity ordering is
// deterministic without a model backend.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no stub vector for %q", text)
	}
	return v, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func testEmbedder() *stubEmbedder {
	return &stubEmbedder{vectors: map[string][]float32{
		"admission requirements": {1, 0, 0},
		"apply to the program":   {0.9, 0.1, 0},
		"campus parking":         {0, 1, 0},
		"library hours":          {0, 0, 1},
		"how do I apply":         {0.95, 0.05, 0},
	}}
}

func testDocs(texts ...string) []models.Document {
	docs := make([]models.Document, len(texts))
	for i, t := range texts {
		docs[i] = models.Document{
			Content:  t,
			Metadata: map[string]string{"source": "https://example.test/" + t},
		}
	}
	return docs
}

func TestSearchRanksBySimilarity(t *testing.T) {
	idx := New(t.TempDir(), testEmbedder(), nil)

	docs := testDocs("admission requirements", "campus parking", "apply to the program", "library hours")
	if err := idx.Add(context.Background(), docs); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := idx.Search(context.Background(), "how do I apply", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Document.Content != "admission requirements" && results[0].Document.Content != "apply to the program" {
		t.Errorf("unexpected top result %q", results[0].Document.Content)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not sorted: %f < %f", results[0].Score, results[1].Score)
	}
	for _, r := range results {
		if r.Document.Content == "library hours" || r.Document.Content == "campus parking" {
			t.Errorf("irrelevant chunk %q ranked in top 2", r.Document.Content)
		}
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	idx := New(t.TempDir(), testEmbedder(), nil)

	results, err := idx.Search(context.Background(), "how do I apply", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results from empty index, got %d", len(results))
	}
}

func TestPersistReload(t *testing.T) {
	dir := t.TempDir()

	idx := New(dir, testEmbedder(), nil)
	if err := idx.Add(context.Background(), testDocs("admission requirements", "campus parking")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	reloaded := New(dir, testEmbedder(), nil)
	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 chunks after reload, got %d", reloaded.Len())
	}

	results, err := reloaded.Search(context.Background(), "how do I apply", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Document.Content != "admission requirements" {
		t.Errorf("unexpected results after reload: %+v", results)
	}
	if got := results[0].Document.Metadata["source"]; got == "" {
		t.Error("metadata lost across reload")
	}
}

func TestCorruptStateStartsEmpty(t *testing.T) {
	dir := t.TempDir()

	idx := New(dir, testEmbedder(), nil)
	if err := idx.Add(context.Background(), testDocs("admission requirements")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, vectorFile), []byte("not gob"), 0o644); err != nil {
		t.Fatal(err)
	}

	reloaded := New(dir, testEmbedder(), nil)
	if reloaded.Len() != 0 {
		t.Fatalf("expected empty index after corruption, got %d chunks", reloaded.Len())
	}

	// The index must remain writable after recovery.
	if err := reloaded.Add(context.Background(), testDocs("campus parking")); err != nil {
		t.Fatalf("Add after recovery: %v", err)
	}
	if reloaded.Len() != 1 {
		t.Fatalf("expected 1 chunk, got %d", reloaded.Len())
	}
}

func TestMissingDocFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()

	idx := New(dir, testEmbedder(), nil)
	if err := idx.Add(context.Background(), testDocs("admission requirements")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, docFile)); err != nil {
		t.Fatal(err)
	}

	reloaded := New(dir, testEmbedder(), nil)
	if reloaded.Len() != 0 {
		t.Fatalf("expected empty index when document store missing, got %d", reloaded.Len())
	}
}

func TestAddIsAdditive(t *testing.T) {
	idx := New(t.TempDir(), testEmbedder(), nil)

	if err := idx.Add(context.Background(), testDocs("admission requirements")); err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(context.Background(), testDocs("admission requirements")); err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 2 {
		t.Fatalf("expected duplicates to accumulate, got %d chunks", idx.Len())
	}
}
