package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mdkaba/campusmind/internal/knowledge"
	"github.com/mdkaba/campusmind/internal/metrics"
	"github.com/mdkaba/campusmind/internal/models"
	"github.com/mdkaba/campusmind/internal/parser"
)

// Indexer accepts documents into the knowledge base. Satisfied by
// index.Index.
type Indexer interface {
	Add(ctx context.Context, docs []models.Document) error
	Len() int
}

// IngestEvent reports ingestion progress for display.
type IngestEvent struct {
	Stage     string // "scrape" or "index"
	URL       string
	Completed int
	Total     int
	Err       error
}

// IngestResult summarizes an ingestion run.
type IngestResult struct {
	PagesScraped  int
	PagesFailed   int
	ChunksIndexed int
	TotalChunks   int
}

// IngestService rebuilds the knowledge base from configured source pages:
// scrape, chunk, embed, index.
type IngestService struct {
	scraper   *knowledge.Scraper
	chunks    parser.ChunkConfig
	index     Indexer
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewIngestService creates the ingestion pipeline.
func NewIngestService(scraper *knowledge.Scraper, chunks parser.ChunkConfig, index Indexer, collector *metrics.Collector, logger *slog.Logger) *IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.NewCollector()
	}
	return &IngestService{
		scraper:   scraper,
		chunks:    chunks,
		index:     index,
		collector: collector,
		logger:    logger,
	}
}

// Ingest scrapes the given URLs, splits the pages into chunks, and adds
// them to the index. Pages that fail to scrape are skipped; the run fails
// only when nothing could be ingested. Events are sent to progress when
// non-nil; the channel is closed before returning.
func (s *IngestService) Ingest(ctx context.Context, urls []string, progress chan<- IngestEvent) (*IngestResult, error) {
	if progress != nil {
		defer close(progress)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("no source URLs configured")
	}

	s.logger.Info("starting ingestion", "sources", len(urls))

	var scraped, failed int
	emit := func(ev IngestEvent) {
		if progress != nil {
			progress <- ev
		}
	}

	docs, err := s.scraper.ScrapeAll(ctx, urls, func(url string, err error) {
		if err != nil {
			failed++
		} else {
			scraped++
		}
		emit(IngestEvent{Stage: "scrape", URL: url, Completed: scraped + failed, Total: len(urls), Err: err})
	})
	if err != nil {
		return nil, fmt.Errorf("scrape sources: %w", err)
	}

	chunked := s.chunkDocuments(docs)
	s.logger.Info("pages chunked", "pages", len(docs), "chunks", len(chunked))

	// Index in batches so progress stays visible on large runs and a
	// mid-run failure keeps the batches already persisted.
	const batchSize = 32
	indexed := 0
	for start := 0; start < len(chunked); start += batchSize {
		end := min(start+batchSize, len(chunked))

		batchStart := time.Now()
		if err := s.index.Add(ctx, chunked[start:end]); err != nil {
			return nil, fmt.Errorf("index chunks %d-%d: %w", start, end, err)
		}
		s.collector.RecordTiming(metrics.OpEmbedding, time.Since(batchStart))

		indexed = end
		emit(IngestEvent{Stage: "index", Completed: indexed, Total: len(chunked)})
	}

	s.logger.Info("ingestion complete", "scraped", scraped, "failed", failed, "chunks", indexed, "index_size", s.index.Len())

	return &IngestResult{
		PagesScraped:  scraped,
		PagesFailed:   failed,
		ChunksIndexed: indexed,
		TotalChunks:   len(chunked),
	}, nil
}

// chunkDocuments splits each page into overlapping chunks, carrying the
// page metadata onto every chunk.
func (s *IngestService) chunkDocuments(docs []models.Document) []models.Document {
	var out []models.Document
	for _, doc := range docs {
		for _, piece := range parser.Chunk(doc.Content, s.chunks) {
			meta := make(map[string]string, len(doc.Metadata))
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			out = append(out, models.Document{Content: piece, Metadata: meta})
		}
	}
	return out
}
