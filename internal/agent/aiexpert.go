package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mdkaba/campusmind/internal/knowledge"
	"github.com/mdkaba/campusmind/internal/models"
)

var aiExpertTerms = []string{
	"ai", "artificial intelligence", "machine learning", "deep learning",
	"neural network", "transformer", "llm", "paper", "arxiv", "github",
	"code", "algorithm", "pytorch", "tensorflow",
}

// githubActionPhrases gate repository search: mentioning GitHub in passing
// is not enough, the user has to ask for repositories.
var githubActionPhrases = []string{
	"find github", "search github", "show github", "look for github",
	"find repository", "find repositories", "search repository", "search repositories",
	"show repository", "show repositories", "look for repository", "look for repositories",
}

// AIExpertAgent handles AI and machine-learning questions, pulling in arXiv
// papers and GitHub repositories when the query asks for them.
type AIExpertAgent struct {
	generator Generator
	knowledge Knowledge
	logger    *slog.Logger
}

// NewAIExpertAgent creates the AI specialist.
func NewAIExpertAgent(generator Generator, knowledge Knowledge, logger *slog.Logger) *AIExpertAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &AIExpertAgent{generator: generator, knowledge: knowledge, logger: logger}
}

func (a *AIExpertAgent) Name() string { return "AIExpertAgent" }

func (a *AIExpertAgent) NeedsRetrieval() bool { return false }

func (a *AIExpertAgent) Score(_ context.Context, query string, _ []models.Message) float64 {
	score := 0.1
	if containsAny(query, aiExpertTerms) {
		score += 0.8
	}
	return min(score, 1.0)
}

func (a *AIExpertAgent) Respond(ctx context.Context, query string, history []models.Message, _ *ContextBundle) (string, error) {
	toolResults := a.gatherTools(ctx, query)

	systemPrompt := fmt.Sprintf(`You are the AIExpertAgent, specializing in AI, machine learning, and related technical topics.
Answer the user's question clearly and concisely based on the conversation history and any provided tool results (arXiv papers, GitHub repositories).
Explain technical concepts accurately.

Tool Results:
%s`, toolResults)

	return a.generator.GenerateWithHistory(ctx, systemPrompt, history, query)
}

func (a *AIExpertAgent) gatherTools(ctx context.Context, query string) string {
	var sb strings.Builder
	q := strings.ToLower(query)

	if strings.Contains(q, "paper") || strings.Contains(q, "arxiv") {
		if papers := a.knowledge.ArxivSearch(ctx, query, 2); len(papers) > 0 {
			sb.WriteString("Relevant arXiv papers found:\n")
			sb.WriteString(formatPapers(papers))
			a.logger.Debug("added arxiv results", "count", len(papers))
		}
	}

	if containsAny(query, githubActionPhrases) {
		terms := knowledge.ExtractSearchTerms(query)
		if repos := a.knowledge.GitHubSearch(ctx, terms, 2); len(repos) > 0 {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString("Relevant GitHub repositories found:\n")
			sb.WriteString(formatRepos(repos))
			a.logger.Debug("added github results", "count", len(repos), "terms", terms)
		}
	}

	if sb.Len() == 0 {
		return "None."
	}
	return sb.String()
}

func formatPapers(papers []knowledge.Paper) string {
	parts := make([]string, len(papers))
	for i, p := range papers {
		abstract := p.Abstract
		if len(abstract) > 200 {
			abstract = abstract[:200] + "..."
		}
		parts[i] = fmt.Sprintf("Title: %s\nAuthors: %s\nURL: %s\nSummary: %s",
			p.Title, strings.Join(p.Authors, ", "), p.URL, abstract)
	}
	return strings.Join(parts, "\n---\n")
}

func formatRepos(repos []knowledge.Repository) string {
	parts := make([]string, len(repos))
	for i, r := range repos {
		parts[i] = fmt.Sprintf("Name: %s\nURL: %s\nDescription: %s\nStars: %d",
			r.FullName, r.URL, r.Description, r.Stars)
	}
	return strings.Join(parts, "\n---\n")
}
