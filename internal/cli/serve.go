package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mdkaba/campusmind/internal/metrics"
	"github.com/mdkaba/campusmind/internal/server"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP chat API",
	Long: `Start the HTTP server exposing the chat API.

Endpoints:
  POST /api/v1/chat                           send a message
  GET  /api/v1/conversations                  list conversations
  GET  /api/v1/conversations/:id/messages     full transcript
  GET  /api/v1/stats                          runtime metrics
  GET  /health                                liveness check`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "port to listen on (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	collector := metrics.NewCollector()

	chat, err := buildChatService(collector)
	if err != nil {
		return err
	}

	port := servePort
	if port == "" {
		port = cfg.ServerPort
	}

	handler := server.NewHandler(chat, nil)
	srv := server.New(handler, port, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
