// Package knowledge provides clients for external information sources and a
// Gateway facade that shields callers from their failures.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const wikipediaSummaryURL = "https://en.wikipedia.org/api/rest_v1/page/summary/"

// WikipediaSummary is the relevant subset of the REST summary response.
type WikipediaSummary struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	URL     string `json:"-"`
}

// WikipediaClient fetches page summaries, caching results in-process so
// repeated lookups of popular topics do not hit the API again.
type WikipediaClient struct {
	httpClient *http.Client
	cache      *lru.Cache[string, *WikipediaSummary]
}

// NewWikipediaClient creates a client with a bounded summary cache.
func NewWikipediaClient(httpClient *http.Client) (*WikipediaClient, error) {
	cache, err := lru.New[string, *WikipediaSummary](256)
	if err != nil {
		return nil, fmt.Errorf("create summary cache: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WikipediaClient{httpClient: httpClient, cache: cache}, nil
}

// Summary returns the intro extract for a topic, or an error when the page
// does not exist or the API is unreachable.
func (c *WikipediaClient) Summary(ctx context.Context, topic string) (*WikipediaSummary, error) {
	title := strings.TrimSpace(topic)
	if title == "" {
		return nil, fmt.Errorf("empty topic")
	}

	key := strings.ToLower(title)
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	endpoint := wikipediaSummaryURL + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("no wikipedia page for %q", title)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}

	var summary WikipediaSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	if summary.Extract == "" {
		return nil, fmt.Errorf("empty summary for %q", title)
	}
	summary.URL = endpoint

	c.cache.Add(key, &summary)
	return &summary, nil
}
