package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/mdkaba/campusmind/internal/models"
)

// noiseSelectors mark page regions that carry navigation chrome instead of
// content and are stripped before text extraction.
var noiseSelectors = []string{
	"script", "style", "noscript", "nav", "header", "footer", "aside",
	"form", "iframe", ".nav", ".navbar", ".menu", ".sidebar", ".footer",
	".header", ".breadcrumb", ".cookie", "#cookie-banner",
}

// Scraper fetches web pages and extracts their readable text.
type Scraper struct {
	httpClient  *http.Client
	logger      *slog.Logger
	concurrency int
}

// NewScraper creates a scraper that fetches at most concurrency pages at a
// time.
func NewScraper(httpClient *http.Client, concurrency int, logger *slog.Logger) *Scraper {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{httpClient: httpClient, concurrency: concurrency, logger: logger}
}

// Scrape fetches a single page and returns its readable text as a document
// tagged with the source URL.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (models.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return models.Document{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "campusmind/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.Document{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Document{}, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return models.Document{}, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	doc.Find(strings.Join(noiseSelectors, ", ")).Remove()

	// Prefer the semantic content region when the page has one.
	content := doc.Find("main").First()
	if content.Length() == 0 {
		content = doc.Find("article").First()
	}
	if content.Length() == 0 {
		content = doc.Find("body")
	}

	text := normalizeText(content.Text())
	if text == "" {
		return models.Document{}, fmt.Errorf("no readable text at %s", pageURL)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	return models.Document{
		Content: text,
		Metadata: map[string]string{
			"source": pageURL,
			"title":  title,
		},
	}, nil
}

// ScrapeAll fetches the given URLs concurrently. Pages that fail are logged
// and skipped; the call errors only when every page failed. The optional
// progress callback is invoked once per completed URL.
func (s *Scraper) ScrapeAll(ctx context.Context, urls []string, progress func(url string, err error)) ([]models.Document, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	var (
		mu   sync.Mutex
		docs []models.Document
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, pageURL := range urls {
		g.Go(func() error {
			doc, err := s.Scrape(gctx, pageURL)

			mu.Lock()
			if err != nil {
				s.logger.Warn("skipping page", "url", pageURL, "error", err)
			} else {
				docs = append(docs, doc)
			}
			if progress != nil {
				progress(pageURL, err)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("all %d pages failed", len(urls))
	}
	return docs, nil
}

// normalizeText collapses runs of whitespace while keeping paragraph breaks,
// so the chunker can still split on them.
func normalizeText(raw string) string {
	var paragraphs []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
