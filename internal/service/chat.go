// Package service orchestrates the chat pipeline: agent selection,
// context retrieval, response generation, and conversation persistence.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mdkaba/campusmind/internal/agent"
	"github.com/mdkaba/campusmind/internal/metrics"
	"github.com/mdkaba/campusmind/internal/models"
)

// HistoryStore persists conversations and messages. Satisfied by db.Client.
type HistoryStore interface {
	GetOrCreateConversation(ctx context.Context, id string, title *string) (*models.Conversation, error)
	AppendMessage(ctx context.Context, conversationID, role, content string) (*models.Message, error)
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error)
	ListConversations(ctx context.Context, limit int) ([]models.Conversation, error)
	ConversationMessages(ctx context.Context, conversationID string) ([]models.Message, error)
}

// Retriever searches the indexed knowledge base. Satisfied by index.Index.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]models.RetrievedChunk, error)
}

// ChatResult is the outcome of one handled query.
type ChatResult struct {
	Response       string
	ConversationID string
	AgentName      string
	ContextSources []string
}

// ChatOptions configures the orchestrator.
type ChatOptions struct {
	// HistoryWindow is how many past messages the agents see. Default 10.
	HistoryWindow int
	// RetrievalK is how many chunks to retrieve for RAG agents. Default 3.
	RetrievalK int
}

// ChatService routes each query to the most confident agent and records
// the exchange.
type ChatService struct {
	agents    []agent.Agent
	history   HistoryStore
	retriever Retriever
	collector *metrics.Collector
	logger    *slog.Logger
	opts      ChatOptions
}

// NewChatService creates the orchestrator. At least one agent is required;
// registration order breaks score ties in favor of earlier agents.
func NewChatService(agents []agent.Agent, history HistoryStore, retriever Retriever, collector *metrics.Collector, logger *slog.Logger, opts ChatOptions) (*ChatService, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("at least one agent is required")
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 10
	}
	if opts.RetrievalK <= 0 {
		opts.RetrievalK = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.NewCollector()
	}
	return &ChatService{
		agents:    agents,
		history:   history,
		retriever: retriever,
		collector: collector,
		logger:    logger,
		opts:      opts,
	}, nil
}

// Handle processes one user query. An empty or unknown conversationID
// starts a new conversation; the returned ConversationID identifies it
// either way.
func (s *ChatService) Handle(ctx context.Context, query, conversationID string) (*ChatResult, error) {
	title := conversationTitle(query)
	conv, err := s.history.GetOrCreateConversation(ctx, conversationID, &title)
	if err != nil {
		return nil, fmt.Errorf("resolve conversation: %w", err)
	}
	convID, err := models.RecordIDString(conv.ID)
	if err != nil {
		return nil, fmt.Errorf("conversation id: %w", err)
	}

	// The user turn is persisted before anything downstream runs, so a
	// generation failure still leaves a record. The history window loaded
	// afterwards therefore ends with the current query.
	if _, err := s.history.AppendMessage(ctx, convID, models.RoleUser, query); err != nil {
		return nil, fmt.Errorf("record user message: %w", err)
	}

	history, err := s.history.RecentMessages(ctx, convID, s.opts.HistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	selected := s.selectAgent(ctx, query, history)
	s.collector.RecordSelection(selected.Name())
	s.logger.Info("agent selected", "agent", selected.Name(), "conversation", convID)

	var bundle *agent.ContextBundle
	if selected.NeedsRetrieval() {
		bundle = s.retrieve(ctx, query)
	}

	genStart := time.Now()
	response, err := selected.Respond(ctx, query, history, bundle)
	s.collector.RecordTiming(metrics.OpGeneration, time.Since(genStart))
	if err != nil {
		return nil, fmt.Errorf("%s respond: %w", selected.Name(), err)
	}

	if _, err := s.history.AppendMessage(ctx, convID, models.RoleAssistant, response); err != nil {
		return nil, fmt.Errorf("record assistant message: %w", err)
	}

	return &ChatResult{
		Response:       response,
		ConversationID: convID,
		AgentName:      selected.Name(),
		ContextSources: bundle.Sources(),
	}, nil
}

// selectAgent scores all agents concurrently and picks the strict maximum.
// Earlier registration wins ties. Scoring has no failure mode, so every
// agent always answers.
func (s *ChatService) selectAgent(ctx context.Context, query string, history []models.Message) agent.Agent {
	scores := make([]float64, len(s.agents))

	var wg sync.WaitGroup
	for i, a := range s.agents {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scores[i] = a.Score(ctx, query, history)
		}()
	}
	wg.Wait()

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}

	s.logger.Debug("agent scores", "scores", scores, "selected", s.agents[best].Name())
	return s.agents[best]
}

// retrieve fetches context for RAG agents. Retrieval failures degrade to
// an empty bundle so the agent can still answer honestly.
func (s *ChatService) retrieve(ctx context.Context, query string) *agent.ContextBundle {
	start := time.Now()
	chunks, err := s.retriever.Search(ctx, query, s.opts.RetrievalK)
	s.collector.RecordTiming(metrics.OpIndexSearch, time.Since(start))
	if err != nil {
		s.logger.Warn("context retrieval failed", "error", err)
		return &agent.ContextBundle{}
	}
	return &agent.ContextBundle{Chunks: chunks}
}

// conversationTitle derives a sidebar title for a new conversation from
// its first user message.
func conversationTitle(query string) string {
	const maxTitleLen = 60

	title := []rune(strings.Join(strings.Fields(query), " "))
	if len(title) > maxTitleLen {
		return strings.TrimSpace(string(title[:maxTitleLen])) + "…"
	}
	return string(title)
}

// Conversations lists stored conversations, most recent first.
func (s *ChatService) Conversations(ctx context.Context, limit int) ([]models.Conversation, error) {
	return s.history.ListConversations(ctx, limit)
}

// Transcript returns the full message history of a conversation in
// chronological order.
func (s *ChatService) Transcript(ctx context.Context, conversationID string) ([]models.Message, error) {
	return s.history.ConversationMessages(ctx, conversationID)
}

// Stats returns a snapshot of runtime metrics.
func (s *ChatService) Stats() metrics.Snapshot {
	return s.collector.Snapshot()
}
