// Package cli provides the command-line interface for campusmind.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mdkaba/campusmind/internal/agent"
	"github.com/mdkaba/campusmind/internal/client"
	"github.com/mdkaba/campusmind/internal/config"
	"github.com/mdkaba/campusmind/internal/db"
	"github.com/mdkaba/campusmind/internal/index"
	"github.com/mdkaba/campusmind/internal/knowledge"
	"github.com/mdkaba/campusmind/internal/llm"
	"github.com/mdkaba/campusmind/internal/metrics"
	"github.com/mdkaba/campusmind/internal/parser"
	"github.com/mdkaba/campusmind/internal/service"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	serverURL string

	// Global config and db client
	cfg      config.Config
	dbClient *db.Client

	// Closes the log file on exit.
	logCleanup func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "campusmind",
	Short: "Multi-agent university chatbot",
	Long: `Campusmind is a multi-agent chatbot for university information.

Specialist agents compete to answer each query: an admissions expert
grounded in scraped university pages, an AI/ML expert backed by arXiv
and GitHub, and a general agent backed by Wikipedia and web search.
Conversations are persisted so follow-up questions keep their context.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		// Remote commands talk to a running server and need no local
		// pipeline or database connection.
		if remoteCommand(cmd) {
			return nil
		}

		cfg = config.Load()

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, cleanup := config.SetupLogger(cfg.LogFile, level)
		logCleanup = cleanup
		slog.SetDefault(logger)

		ctx := context.Background()
		dbCfg := db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		var err error
		dbClient, err = db.NewClient(ctx, dbCfg, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if logCleanup != nil {
			logCleanup()
		}
	},
}

// remoteCommand reports whether cmd should run against a remote server.
// stats always does; ask and conversations do when --server is set.
func remoteCommand(cmd *cobra.Command) bool {
	if cmd.Name() == "stats" {
		return true
	}
	return serverURL != "" && (cmd.Name() == "ask" || cmd.Name() == "conversations")
}

// apiClient returns a client for the configured server endpoint.
func apiClient() *client.Client {
	return client.New(serverURL)
}

// buildChatService wires the full pipeline: embedder, index, knowledge
// gateway, agents, orchestrator.
func buildChatService(collector *metrics.Collector) (*service.ChatService, error) {
	embedder, err := llm.NewEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	model, err := llm.NewModel(cfg)
	if err != nil {
		return nil, fmt.Errorf("init model: %w", err)
	}

	idx := index.New(cfg.IndexDir, embedder, nil)

	gateway, err := buildGateway()
	if err != nil {
		return nil, err
	}

	agents := []agent.Agent{
		agent.NewGeneralAgent(model, gateway, nil),
		agent.NewAdmissionsAgent(model, nil),
		agent.NewAIExpertAgent(model, gateway, nil),
	}

	return service.NewChatService(agents, dbClient, idx, collector, nil, service.ChatOptions{
		HistoryWindow: cfg.HistoryWindow,
		RetrievalK:    cfg.RetrievalK,
	})
}

// buildGateway assembles the external knowledge clients.
func buildGateway() (*knowledge.Gateway, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	wiki, err := knowledge.NewWikipediaClient(httpClient)
	if err != nil {
		return nil, fmt.Errorf("init wikipedia client: %w", err)
	}

	return knowledge.NewGateway(
		wiki,
		knowledge.NewWebSearchClient(httpClient, ""),
		knowledge.NewArxivClient(httpClient, ""),
		knowledge.NewGitHubClient(cfg.GitHubToken),
		time.Duration(cfg.GatewayTimeoutSeconds)*time.Second,
		nil,
	), nil
}

// buildIngestService wires the scrape-chunk-embed-index pipeline.
func buildIngestService(collector *metrics.Collector) (*service.IngestService, error) {
	embedder, err := llm.NewEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	idx := index.New(cfg.IndexDir, embedder, nil)
	scraper := knowledge.NewScraper(&http.Client{Timeout: 30 * time.Second}, 4, nil)

	chunks := parser.ChunkConfig{MaxSize: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}
	return service.NewIngestService(scraper, chunks, idx, collector, nil), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "URL of a running campusmind server; talk to it instead of running the pipeline locally")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(statsCmd)
}
