package knowledge

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const arxivQueryURL = "https://export.arxiv.org/api/query"

// Paper is a single arXiv result.
type Paper struct {
	Title    string
	Authors  []string
	Abstract string
	URL      string
}

// ArxivClient queries the arXiv Atom API.
type ArxivClient struct {
	httpClient *http.Client
	endpoint   string
}

// NewArxivClient creates a client. An empty endpoint uses the public API.
func NewArxivClient(httpClient *http.Client, endpoint string) *ArxivClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = arxivQueryURL
	}
	return &ArxivClient{httpClient: httpClient, endpoint: endpoint}
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
	ID      string `xml:"id"`
	Authors []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

// Search returns up to maxResults papers matching the query, most relevant
// first.
func (c *ArxivClient) Search(ctx context.Context, query string, maxResults int) ([]Paper, error) {
	if maxResults <= 0 {
		maxResults = 3
	}

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", maxResults))
	params.Set("sortBy", "relevance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned status %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		p := Paper{
			Title:    collapseWhitespace(entry.Title),
			Abstract: collapseWhitespace(entry.Summary),
			URL:      entry.ID,
		}
		for _, a := range entry.Authors {
			p.Authors = append(p.Authors, a.Name)
		}
		papers = append(papers, p)
	}

	if len(papers) == 0 {
		return nil, fmt.Errorf("no papers for %q", query)
	}
	return papers, nil
}

// collapseWhitespace folds the newline-wrapped text arXiv emits into single
// spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
