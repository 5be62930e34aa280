package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mdkaba/campusmind/internal/metrics"
	"github.com/mdkaba/campusmind/internal/models"
	"github.com/mdkaba/campusmind/internal/service"
)

// ChatAPI is the slice of the chat service the handlers use. Satisfied by
// service.ChatService.
type ChatAPI interface {
	Handle(ctx context.Context, query, conversationID string) (*service.ChatResult, error)
	Conversations(ctx context.Context, limit int) ([]models.Conversation, error)
	Transcript(ctx context.Context, conversationID string) ([]models.Message, error)
	Stats() metrics.Snapshot
}

// Handler implements the HTTP endpoints.
type Handler struct {
	chat   ChatAPI
	logger *slog.Logger
}

// NewHandler creates the endpoint handler.
func NewHandler(chat ChatAPI, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{chat: chat, logger: logger}
}

// ChatRequest is the request body for POST /api/v1/chat.
type ChatRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the response body for POST /api/v1/chat.
type ChatResponse struct {
	Response       string   `json:"response"`
	ConversationID string   `json:"conversation_id"`
	AgentName      string   `json:"agent_name"`
	ContextSources []string `json:"context_sources,omitempty"`
}

// Chat handles one user query.
// POST /api/v1/chat
func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
	}

	result, err := h.chat.Handle(ctx, req.Query, req.ConversationID)
	if err != nil {
		h.logger.Error("chat request failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to process query"})
	}

	return c.JSON(http.StatusOK, ChatResponse{
		Response:       result.Response,
		ConversationID: result.ConversationID,
		AgentName:      result.AgentName,
		ContextSources: result.ContextSources,
	})
}

// ConversationSummary is one entry in the conversation listing.
type ConversationSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ListConversations lists stored conversations, most recent first.
// GET /api/v1/conversations
func (h *Handler) ListConversations(c echo.Context) error {
	ctx := c.Request().Context()

	conversations, err := h.chat.Conversations(ctx, 100)
	if err != nil {
		h.logger.Error("list conversations failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list conversations"})
	}

	out := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		summary := ConversationSummary{
			ID:        models.MustRecordIDString(conv.ID),
			CreatedAt: conv.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if conv.Title != nil {
			summary.Title = *conv.Title
		}
		out = append(out, summary)
	}

	return c.JSON(http.StatusOK, map[string]any{"conversations": out})
}

// MessageView is one message in a transcript.
type MessageView struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// ConversationMessages returns the full transcript of a conversation.
// GET /api/v1/conversations/:id/messages
func (h *Handler) ConversationMessages(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "conversation id is required"})
	}

	messages, err := h.chat.Transcript(ctx, id)
	if err != nil {
		h.logger.Error("load transcript failed", "conversation", id, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load messages"})
	}

	out := make([]MessageView, 0, len(messages))
	for _, msg := range messages {
		out = append(out, MessageView{
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"messages": out})
}

// Stats returns runtime metrics.
// GET /api/v1/stats
func (h *Handler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.chat.Stats())
}

// Health reports liveness.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
