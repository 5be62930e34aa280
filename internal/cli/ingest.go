package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdkaba/campusmind/internal/config"
	"github.com/mdkaba/campusmind/internal/metrics"
	"github.com/mdkaba/campusmind/internal/service"
)

var (
	ingestSourcesFile string
	ingestPlain       bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [url...]",
	Short: "Scrape source pages into the knowledge index",
	Long: `Scrape university pages, split them into chunks, embed them, and add
them to the retrieval index on disk.

URLs can be passed as arguments or read from the sources file (YAML with
a top-level "urls" list). Ingestion is additive: re-running it appends
the chunks again, so rebuild the index directory for a clean refresh.

Examples:
  campusmind ingest
  campusmind ingest --sources sources.yaml
  campusmind ingest https://www.concordia.ca/admissions/undergraduate.html`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestSourcesFile, "sources", "s", "", "YAML file listing source URLs (default from config)")
	ingestCmd.Flags().BoolVar(&ingestPlain, "plain", false, "plain line-by-line output instead of the progress UI")
}

func runIngest(cmd *cobra.Command, args []string) error {
	urls := args
	if len(urls) == 0 {
		path := ingestSourcesFile
		if path == "" {
			path = cfg.SourcesFile
		}
		sources, err := config.LoadSources(path)
		if err != nil {
			return fmt.Errorf("load sources: %w", err)
		}
		urls = sources.URLs
	}
	if len(urls) == 0 {
		return fmt.Errorf("no source URLs given")
	}

	svc, err := buildIngestService(metrics.NewCollector())
	if err != nil {
		return err
	}

	if ingestPlain {
		return runIngestPlain(svc, urls)
	}
	return RunIngestProgress(svc, urls)
}

// runIngestPlain runs ingestion without the interactive UI, for scripts
// and non-TTY environments.
func runIngestPlain(svc *service.IngestService, urls []string) error {
	progress := make(chan service.IngestEvent, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range progress {
			switch {
			case ev.Err != nil:
				fmt.Printf("  skip %s: %v\n", ev.URL, ev.Err)
			case ev.Stage == "scrape":
				fmt.Printf("  scraped %s (%d/%d)\n", ev.URL, ev.Completed, ev.Total)
			case ev.Stage == "index":
				fmt.Printf("  indexed %d/%d chunks\n", ev.Completed, ev.Total)
			}
		}
	}()

	result, err := svc.Ingest(context.Background(), urls, progress)
	<-done
	if err != nil {
		return err
	}

	printIngestResult(result)
	return nil
}

func printIngestResult(r *service.IngestResult) {
	fmt.Printf("\nPages scraped:  %d\n", r.PagesScraped)
	if r.PagesFailed > 0 {
		fmt.Printf("Pages failed:   %d\n", r.PagesFailed)
	}
	fmt.Printf("Chunks indexed: %d\n", r.ChunksIndexed)
}
