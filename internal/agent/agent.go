// Package agent defines the specialist agents that compete to answer a
// query. Each agent reports a confidence score for the query; the service
// layer routes the query to the highest-scoring one.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/mdkaba/campusmind/internal/knowledge"
	"github.com/mdkaba/campusmind/internal/models"
)

// Agent answers queries within its specialty.
type Agent interface {
	// Name identifies the agent in responses and logs.
	Name() string

	// Score reports how confident the agent is that it should answer,
	// in [0, 1]. Scoring must be cheap: no model or network calls.
	Score(ctx context.Context, query string, history []models.Message) float64

	// Respond produces the answer. The bundle is non-nil only for agents
	// that declare NeedsRetrieval.
	Respond(ctx context.Context, query string, history []models.Message, bundle *ContextBundle) (string, error)

	// NeedsRetrieval reports whether the agent wants indexed context
	// retrieved before Respond is called.
	NeedsRetrieval() bool
}

// Generator produces model completions. Satisfied by llm.Model.
type Generator interface {
	GenerateWithHistory(ctx context.Context, systemPrompt string, history []models.Message, query string) (string, error)
}

// Knowledge is the slice of the knowledge gateway the agents use.
// Satisfied by knowledge.Gateway.
type Knowledge interface {
	WikipediaSummary(ctx context.Context, topic string) *knowledge.WikipediaSummary
	WebSearch(ctx context.Context, query string, maxResults int) []knowledge.SearchResult
	ArxivSearch(ctx context.Context, query string, maxResults int) []knowledge.Paper
	GitHubSearch(ctx context.Context, query string, maxResults int) []knowledge.Repository
}

// ContextBundle carries retrieved chunks into an agent's Respond call.
type ContextBundle struct {
	Chunks []models.RetrievedChunk
}

// Empty reports whether retrieval produced nothing usable.
func (b *ContextBundle) Empty() bool {
	return b == nil || len(b.Chunks) == 0
}

// Sources lists the distinct source URLs of the retrieved chunks, in rank
// order.
func (b *ContextBundle) Sources() []string {
	if b == nil {
		return nil
	}
	seen := make(map[string]bool, len(b.Chunks))
	var sources []string
	for _, c := range b.Chunks {
		src := c.Source()
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		sources = append(sources, src)
	}
	return sources
}

// Render formats the chunks as numbered context blocks for a prompt.
func (b *ContextBundle) Render() string {
	if b.Empty() {
		return ""
	}
	var sb strings.Builder
	for i, c := range b.Chunks {
		fmt.Fprintf(&sb, "[%d] (source: %s)\n%s\n\n", i+1, c.Source(), c.Document.Content)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// containsAny reports whether the lowercased query contains any of the
// terms.
func containsAny(query string, terms []string) bool {
	q := strings.ToLower(query)
	for _, t := range terms {
		if strings.Contains(q, t) {
			return true
		}
	}
	return false
}
