package knowledge

import (
	"context"
	"log/slog"
	"time"
)

// Gateway fronts all external information sources with a uniform failure
// policy: every lookup is bounded by a timeout, and any failure yields an
// empty result with a warning log instead of an error. Callers never have
// to handle an unreachable upstream.
type Gateway struct {
	wikipedia *WikipediaClient
	webSearch *WebSearchClient
	arxiv     *ArxivClient
	github    *GitHubClient
	timeout   time.Duration
	logger    *slog.Logger
}

// NewGateway assembles the facade. A zero timeout defaults to 15 seconds.
func NewGateway(
	wikipedia *WikipediaClient,
	webSearch *WebSearchClient,
	arxiv *ArxivClient,
	github *GitHubClient,
	timeout time.Duration,
	logger *slog.Logger,
) *Gateway {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		wikipedia: wikipedia,
		webSearch: webSearch,
		arxiv:     arxiv,
		github:    github,
		timeout:   timeout,
		logger:    logger,
	}
}

// WikipediaSummary looks up a topic summary. Returns nil when the lookup
// fails for any reason.
func (g *Gateway) WikipediaSummary(ctx context.Context, topic string) *WikipediaSummary {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	summary, err := g.wikipedia.Summary(ctx, topic)
	if err != nil {
		g.logger.Warn("wikipedia lookup failed", "topic", topic, "error", err)
		return nil
	}
	return summary
}

// WebSearch runs a web search. Returns no results when the search fails.
func (g *Gateway) WebSearch(ctx context.Context, query string, maxResults int) []SearchResult {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	results, err := g.webSearch.Search(ctx, query, maxResults)
	if err != nil {
		g.logger.Warn("web search failed", "query", query, "error", err)
		return nil
	}
	return results
}

// ArxivSearch finds papers for a query. Returns no papers when the lookup
// fails.
func (g *Gateway) ArxivSearch(ctx context.Context, query string, maxResults int) []Paper {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	papers, err := g.arxiv.Search(ctx, query, maxResults)
	if err != nil {
		g.logger.Warn("arxiv search failed", "query", query, "error", err)
		return nil
	}
	return papers
}

// GitHubSearch finds repositories for a query. Returns no repositories when
// the lookup fails.
func (g *Gateway) GitHubSearch(ctx context.Context, query string, maxResults int) []Repository {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	repos, err := g.github.SearchRepositories(ctx, query, maxResults)
	if err != nil {
		g.logger.Warn("github search failed", "query", query, "error", err)
		return nil
	}
	return repos
}
