// Package client provides a Go client for the campusmind HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mdkaba/campusmind/internal/metrics"
	"github.com/mdkaba/campusmind/internal/server"
)

// Client talks to a running campusmind server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client. If endpoint is empty, uses the CAMPUSMIND_SERVER_URL
// env var or defaults to localhost:8080. Timeout can be configured via
// CAMPUSMIND_CLIENT_TIMEOUT (default 2m, generation can be slow).
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("CAMPUSMIND_SERVER_URL")
	}
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}

	timeout := 2 * time.Minute
	if t := os.Getenv("CAMPUSMIND_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Chat sends a query and returns the reply. Pass an empty conversationID
// to start a new conversation.
func (c *Client) Chat(ctx context.Context, query, conversationID string) (*server.ChatResponse, error) {
	body, err := json.Marshal(server.ChatRequest{
		Query:          query,
		ConversationID: conversationID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var resp server.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/chat", bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Conversations lists stored conversations.
func (c *Client) Conversations(ctx context.Context) ([]server.ConversationSummary, error) {
	var resp struct {
		Conversations []server.ConversationSummary `json:"conversations"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/conversations", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// Messages returns the transcript of a conversation.
func (c *Client) Messages(ctx context.Context, conversationID string) ([]server.MessageView, error) {
	var resp struct {
		Messages []server.MessageView `json:"messages"`
	}
	path := "/api/v1/conversations/" + conversationID + "/messages"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// Stats fetches runtime metrics from the server.
func (c *Client) Stats(ctx context.Context) (*metrics.Snapshot, error) {
	var snap metrics.Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/v1/stats", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if result == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
