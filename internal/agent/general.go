package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mdkaba/campusmind/internal/models"
)

// generalBoostTerms raise the general agent's score when the query asks
// explicitly for lookup-style answers.
var generalBoostTerms = []string{"wikipedia", "search", "what is"}

// GeneralAgent is the fallback agent for open-domain questions. It backs
// its answers with a Wikipedia summary when one exists, falling back to a
// web search.
type GeneralAgent struct {
	generator Generator
	knowledge Knowledge
	logger    *slog.Logger
}

// NewGeneralAgent creates the general-knowledge agent.
func NewGeneralAgent(generator Generator, knowledge Knowledge, logger *slog.Logger) *GeneralAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeneralAgent{generator: generator, knowledge: knowledge, logger: logger}
}

func (a *GeneralAgent) Name() string { return "GeneralAgent" }

func (a *GeneralAgent) NeedsRetrieval() bool { return false }

// Score starts from a moderate baseline so this agent wins whenever no
// specialist claims the query.
func (a *GeneralAgent) Score(_ context.Context, query string, _ []models.Message) float64 {
	score := 0.5
	if containsAny(query, generalBoostTerms) {
		score = min(score+0.2, 1.0)
	}
	return score
}

func (a *GeneralAgent) Respond(ctx context.Context, query string, history []models.Message, _ *ContextBundle) (string, error) {
	external := a.gatherExternal(ctx, query)

	systemPrompt := fmt.Sprintf(`You are the GeneralAgent, a helpful assistant designed to answer general knowledge questions.
Use the conversation history and the provided external information (Wikipedia summary or web search results) if available and relevant.
If no external information is provided or relevant, answer based on your general knowledge.
Be concise and informative.

External Information Found:
%s`, external)

	return a.generator.GenerateWithHistory(ctx, systemPrompt, history, query)
}

// gatherExternal tries Wikipedia first, then web search. Both sources are
// best-effort: when neither yields anything the model answers unaided.
func (a *GeneralAgent) gatherExternal(ctx context.Context, query string) string {
	if summary := a.knowledge.WikipediaSummary(ctx, query); summary != nil {
		a.logger.Debug("using wikipedia summary", "title", summary.Title)
		return fmt.Sprintf("Wikipedia summary for %q:\n%s", summary.Title, summary.Extract)
	}

	a.logger.Debug("no wikipedia summary, trying web search", "query", query)
	results := a.knowledge.WebSearch(ctx, query, 3)
	if len(results) == 0 {
		return "No specific external information found for this query."
	}

	var parts []string
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("Title: %s\nURL: %s\nSnippet: %s", r.Title, r.URL, r.Snippet))
	}
	return "Relevant web search results:\n" + strings.Join(parts, "\n---\n")
}
