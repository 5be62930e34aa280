package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"

	"github.com/mdkaba/campusmind/internal/models"
)

// CreateConversation creates a new conversation with a generated record id.
func (c *Client) CreateConversation(ctx context.Context, title *string) (*models.Conversation, error) {
	results, err := surrealdb.Query[[]models.Conversation](ctx, c.db, `
		CREATE type::record("conversation", $id) SET
			title = $title,
			created_at = time::now()
	`, map[string]any{
		"id":    uuid.NewString(),
		"title": title,
	})
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create conversation: empty result")
	}
	return &(*results)[0].Result[0], nil
}

// GetConversation retrieves a conversation by its string id.
// Returns nil if not found.
func (c *Client) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	results, err := surrealdb.Query[[]models.Conversation](ctx, c.db, `
		SELECT * FROM type::record("conversation", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// GetOrCreateConversation resolves an existing conversation by id or creates
// a new one when the id is empty, unknown, or malformed. A bad id is normal
// fallback behavior, never an error.
func (c *Client) GetOrCreateConversation(ctx context.Context, id string, title *string) (*models.Conversation, error) {
	if id != "" {
		conv, err := c.GetConversation(ctx, id)
		if err == nil && conv != nil {
			return conv, nil
		}
		if err != nil {
			// Malformed record ids surface as query errors; treat as unknown.
			slog.Debug("conversation lookup failed, creating new", "id", id, "error", err)
		} else {
			slog.Debug("conversation not found, creating new", "id", id)
		}
	}
	return c.CreateConversation(ctx, title)
}

// ListConversations returns the most recently created conversations.
func (c *Client) ListConversations(ctx context.Context, limit int) ([]models.Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	results, err := surrealdb.Query[[]models.Conversation](ctx, c.db, `
		SELECT * FROM conversation ORDER BY created_at DESC LIMIT $limit
	`, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.Conversation{}, nil
	}
	return (*results)[0].Result, nil
}

// AppendMessage records a single message in a conversation. The write is a
// single statement: it either fully succeeds or leaves no record behind.
func (c *Client) AppendMessage(ctx context.Context, conversationID, role, content string) (*models.Message, error) {
	results, err := surrealdb.Query[[]models.Message](ctx, c.db, `
		CREATE message SET
			conversation = type::record("conversation", $conv),
			role = $role,
			content = $content,
			created_at = time::now()
	`, map[string]any{
		"conv":    conversationID,
		"role":    role,
		"content": content,
	})
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("append message: empty result")
	}
	return &(*results)[0].Result[0], nil
}

// RecentMessages returns up to limit messages of a conversation in
// chronological order. The query selects most-recent-first; the slice is
// reversed before returning so prompts read oldest to newest.
func (c *Client) RecentMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	results, err := surrealdb.Query[[]models.Message](ctx, c.db, `
		SELECT * FROM message
		WHERE conversation = type::record("conversation", $conv)
		ORDER BY created_at DESC
		LIMIT $limit
	`, map[string]any{
		"conv":  conversationID,
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.Message{}, nil
	}

	messages := (*results)[0].Result
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ConversationMessages returns the full transcript of a conversation in
// chronological order.
func (c *Client) ConversationMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	results, err := surrealdb.Query[[]models.Message](ctx, c.db, `
		SELECT * FROM message
		WHERE conversation = type::record("conversation", $conv)
		ORDER BY created_at ASC
	`, map[string]any{"conv": conversationID})
	if err != nil {
		return nil, fmt.Errorf("conversation messages: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.Message{}, nil
	}
	return (*results)[0].Result, nil
}
