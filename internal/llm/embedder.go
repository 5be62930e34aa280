package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/mdkaba/campusmind/internal/config"
)

// Embedder turns text into the fixed-width vectors the retrieval index
// stores. Cosine scoring needs every vector to share one width, so any
// backend output with a different dimension is rejected here instead of
// reaching the index.
type Embedder struct {
	backend   embeddings.Embedder
	modelName string
	width     int
}

// NewEmbedder creates an embedder for the configured provider and
// embedding model.
func NewEmbedder(cfg config.Config) (*Embedder, error) {
	backend, err := embeddingBackend(cfg)
	if err != nil {
		return nil, err
	}
	return &Embedder{
		backend:   backend,
		modelName: cfg.EmbedModel,
		width:     cfg.EmbedDimension,
	}, nil
}

func embeddingBackend(cfg config.Config) (embeddings.Embedder, error) {
	switch cfg.EmbedProvider {
	case config.ProviderOllama:
		llm, err := ollama.New(
			ollama.WithModel(cfg.EmbedModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama client: %w", err)
		}
		return embeddings.NewEmbedder(llm)

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		llm, err := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithEmbeddingModel(cfg.EmbedModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		return embeddings.NewEmbedder(llm)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.EmbedProvider)
	}
}

// Embed generates the vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates vectors for texts, one per input, each exactly
// the configured width.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	start := time.Now()
	vectors, err := e.backend.EmbedDocuments(ctx, texts)
	if err != nil {
		slog.Warn("embedding failed",
			"model", e.modelName, "texts", len(texts),
			"duration_ms", time.Since(start).Milliseconds(), "error", err)
		return nil, fmt.Errorf("embed %d texts: %w", len(texts), err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d vectors for %d texts", len(vectors), len(texts))
	}
	for i, v := range vectors {
		if len(v) != e.width {
			return nil, fmt.Errorf("embedding %d is %d-dimensional, index expects %d", i, len(v), e.width)
		}
	}

	return vectors, nil
}
