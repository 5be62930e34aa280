package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v57/github"
)

// Repository is a single GitHub search hit.
type Repository struct {
	FullName    string
	Description string
	URL         string
	Stars       int
}

// GitHubClient searches public repositories. A token raises the rate limit
// but is not required.
type GitHubClient struct {
	client *github.Client
}

// NewGitHubClient creates a client, authenticated when token is non-empty.
func NewGitHubClient(token string) *GitHubClient {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHubClient{client: client}
}

// SearchRepositories returns up to maxResults repositories matching the
// query, ordered by stars.
func (c *GitHubClient) SearchRepositories(ctx context.Context, query string, maxResults int) ([]Repository, error) {
	if maxResults <= 0 {
		maxResults = 3
	}

	opts := &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: maxResults},
	}

	result, _, err := c.client.Search.Repositories(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("search repositories: %w", err)
	}

	repos := make([]Repository, 0, len(result.Repositories))
	for _, r := range result.Repositories {
		repos = append(repos, Repository{
			FullName:    r.GetFullName(),
			Description: r.GetDescription(),
			URL:         r.GetHTMLURL(),
			Stars:       r.GetStargazersCount(),
		})
		if len(repos) == maxResults {
			break
		}
	}

	if len(repos) == 0 {
		return nil, fmt.Errorf("no repositories for %q", query)
	}
	return repos, nil
}

// ExtractSearchTerms strips the action phrasing from a repository request so
// only the subject remains, e.g. "find github repos for neural networks"
// becomes "neural networks".
func ExtractSearchTerms(query string) string {
	cleaned := strings.ToLower(query)
	for _, phrase := range []string{
		"find github repos for", "find github repositories for",
		"search github for", "find repositories for", "find repos for",
		"search repositories for", "github repos for", "github repositories for",
		"find github", "search github", "on github", "github",
		"repositories", "repository", "repos", "repo",
	} {
		cleaned = strings.ReplaceAll(cleaned, phrase, " ")
	}
	for _, filler := range []string{" for ", " about ", " on ", " of ", " the ", " a ", " me ", " some "} {
		cleaned = strings.ReplaceAll(cleaned, filler, " ")
	}
	cleaned = strings.TrimSpace(strings.Join(strings.Fields(cleaned), " "))
	if cleaned == "" {
		return query
	}
	return cleaned
}
