package knowledge

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestWikipediaSummaryCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"title":"Go (programming language)","extract":"Go is a statically typed language."}`)
	}))
	defer srv.Close()

	client, err := NewWikipediaClient(srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	// Point the client at the stub by rewriting requests through a
	// transport that swaps the host.
	client.httpClient = rewriteHost(srv)

	for range 3 {
		summary, err := client.Summary(context.Background(), "Go (programming language)")
		if err != nil {
			t.Fatalf("Summary: %v", err)
		}
		if !strings.Contains(summary.Extract, "statically typed") {
			t.Errorf("unexpected extract %q", summary.Extract)
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("expected 1 upstream hit, got %d", got)
	}
}

func TestWikipediaSummaryNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewWikipediaClient(rewriteHost(srv))
	if err != nil {
		t.Fatal(err)
	}
	client.httpClient = rewriteHost(srv)

	if _, err := client.Summary(context.Background(), "no such page"); err == nil {
		t.Fatal("expected error for missing page")
	}
}

func TestWebSearchParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<div class="result">
				<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fgo">Go language</a>
				<a class="result__snippet">Go is an open source language.</a>
			</div>
			<div class="result">
				<a class="result__a" href="https://example.com/gopher">Gopher</a>
				<a class="result__snippet">About gophers.</a>
			</div>
		</body></html>`)
	}))
	defer srv.Close()

	client := NewWebSearchClient(srv.Client(), srv.URL)
	results, err := client.Search(context.Background(), "go language", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].URL != "https://example.com/go" {
		t.Errorf("redirect not unwrapped: %q", results[0].URL)
	}
	if results[0].Title != "Go language" {
		t.Errorf("unexpected title %q", results[0].Title)
	}
	if results[1].Snippet != "About gophers." {
		t.Errorf("unexpected snippet %q", results[1].Snippet)
	}
}

func TestWebSearchNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body></body></html>`)
	}))
	defer srv.Close()

	client := NewWebSearchClient(srv.Client(), srv.URL)
	if _, err := client.Search(context.Background(), "nothing", 3); err == nil {
		t.Fatal("expected error for empty result page")
	}
}

func TestArxivSearchParsesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
		<feed xmlns="http://www.w3.org/2005/Atom">
			<entry>
				<id>http://arxiv.org/abs/1706.03762</id>
				<title>Attention Is All
  You Need</title>
				<summary>The dominant sequence transduction models...</summary>
				<author><name>Ashish Vaswani</name></author>
				<author><name>Noam Shazeer</name></author>
			</entry>
		</feed>`)
	}))
	defer srv.Close()

	client := NewArxivClient(srv.Client(), srv.URL)
	papers, err := client.Search(context.Background(), "transformers", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("expected 1 paper, got %d", len(papers))
	}
	if papers[0].Title != "Attention Is All You Need" {
		t.Errorf("whitespace not collapsed: %q", papers[0].Title)
	}
	if len(papers[0].Authors) != 2 || papers[0].Authors[0] != "Ashish Vaswani" {
		t.Errorf("unexpected authors %v", papers[0].Authors)
	}
	if papers[0].URL != "http://arxiv.org/abs/1706.03762" {
		t.Errorf("unexpected URL %q", papers[0].URL)
	}
}

func TestGatewayAbsorbsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	wiki, err := NewWikipediaClient(rewriteHost(srv))
	if err != nil {
		t.Fatal(err)
	}
	gw := NewGateway(
		wiki,
		NewWebSearchClient(srv.Client(), srv.URL),
		NewArxivClient(srv.Client(), srv.URL),
		NewGitHubClient(""),
		time.Second,
		nil,
	)

	if got := gw.WikipediaSummary(context.Background(), "anything"); got != nil {
		t.Errorf("expected nil summary on upstream failure, got %+v", got)
	}
	if got := gw.WebSearch(context.Background(), "anything", 3); got != nil {
		t.Errorf("expected no search results on upstream failure, got %v", got)
	}
	if got := gw.ArxivSearch(context.Background(), "anything", 3); got != nil {
		t.Errorf("expected no papers on upstream failure, got %v", got)
	}
}

func TestExtractSearchTerms(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"find github repos for neural networks", "neural networks"},
		{"search github for web scrapers", "web scrapers"},
		{"find repositories for graph databases", "graph databases"},
		{"transformers", "transformers"},
	}
	for _, tt := range tests {
		if got := ExtractSearchTerms(tt.query); got != tt.want {
			t.Errorf("ExtractSearchTerms(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

// rewriteHost returns a client that redirects every request to the test
// server regardless of the requested host.
func rewriteHost(srv *httptest.Server) *http.Client {
	target := strings.TrimPrefix(srv.URL, "http://")
	return &http.Client{
		Transport: &hostRewriter{target: target, inner: srv.Client().Transport},
	}
}

type hostRewriter struct {
	target string
	inner  http.RoundTripper
}

func (h *hostRewriter) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = "http"
	req.URL.Host = h.target
	return h.inner.RoundTrip(req)
}
