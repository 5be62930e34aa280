package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdkaba/campusmind/internal/models"
)

var conversationsLimit int

var conversationsCmd = &cobra.Command{
	Use:   "conversations [id]",
	Short: "List conversations or show a transcript",
	Long: `Without arguments, list stored conversations, most recent first.
With a conversation id, print its full transcript. With --server the
listing comes from a running campusmind server instead of the local
database.

Examples:
  campusmind conversations
  campusmind conversations 0d2f...
  campusmind --server http://localhost:8080 conversations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConversations,
}

func init() {
	conversationsCmd.Flags().IntVarP(&conversationsLimit, "limit", "n", 20, "max conversations to list")
}

func runConversations(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if serverURL != "" {
		return runConversationsRemote(ctx, args)
	}

	if len(args) == 1 {
		return printTranscript(ctx, args[0])
	}

	conversations, err := dbClient.ListConversations(ctx, conversationsLimit)
	if err != nil {
		return fmt.Errorf("list conversations: %w", err)
	}
	if len(conversations) == 0 {
		fmt.Println("No conversations yet.")
		return nil
	}

	for _, conv := range conversations {
		title := "(untitled)"
		if conv.Title != nil {
			title = *conv.Title
		}
		fmt.Printf("%s  %s  %s\n",
			models.MustRecordIDString(conv.ID),
			conv.CreatedAt.Format("2006-01-02 15:04"),
			title)
	}
	return nil
}

func runConversationsRemote(ctx context.Context, args []string) error {
	api := apiClient()

	if len(args) == 1 {
		messages, err := api.Messages(ctx, args[0])
		if err != nil {
			return fmt.Errorf("load transcript: %w", err)
		}
		if len(messages) == 0 {
			fmt.Println("No messages in this conversation.")
			return nil
		}
		for _, msg := range messages {
			fmt.Printf("[%s] %s\n\n", msg.Role, msg.Content)
		}
		return nil
	}

	conversations, err := api.Conversations(ctx)
	if err != nil {
		return fmt.Errorf("list conversations: %w", err)
	}
	if len(conversations) == 0 {
		fmt.Println("No conversations yet.")
		return nil
	}
	for _, conv := range conversations {
		title := conv.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s  %s  %s\n", conv.ID, conv.CreatedAt, title)
	}
	return nil
}

func printTranscript(ctx context.Context, id string) error {
	messages, err := dbClient.ConversationMessages(ctx, id)
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}
	if len(messages) == 0 {
		fmt.Println("No messages in this conversation.")
		return nil
	}

	for _, msg := range messages {
		fmt.Printf("[%s] %s\n\n", msg.Role, msg.Content)
	}
	return nil
}
