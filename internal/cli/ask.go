package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdkaba/campusmind/internal/metrics"
)

var askConversation string

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Send one query and print the reply",
	Long: `Send a single query through the agent pipeline and print the reply.

Pass --conversation to continue an earlier exchange; otherwise a new
conversation is started and its id printed so you can follow up.
With --server the query is sent to a running campusmind server instead
of building the pipeline locally.

Examples:
  campusmind ask "What are the admission requirements?"
  campusmind ask "And the deadlines?" -c 0d2f...
  campusmind --server http://localhost:8080 ask "What is a transformer?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askConversation, "conversation", "c", "", "conversation id to continue")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if serverURL != "" {
		resp, err := apiClient().Chat(ctx, args[0], askConversation)
		if err != nil {
			return fmt.Errorf("chat: %w", err)
		}
		printReply(resp.Response, resp.AgentName, resp.ConversationID, resp.ContextSources)
		return nil
	}

	chat, err := buildChatService(metrics.NewCollector())
	if err != nil {
		return err
	}

	result, err := chat.Handle(ctx, args[0], askConversation)
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}

	printReply(result.Response, result.AgentName, result.ConversationID, result.ContextSources)
	return nil
}

func printReply(response, agentName, conversationID string, sources []string) {
	fmt.Println(response)
	fmt.Println()
	fmt.Printf("agent: %s\n", agentName)
	fmt.Printf("conversation: %s\n", conversationID)
	if len(sources) > 0 {
		fmt.Println("sources:")
		for _, src := range sources {
			fmt.Printf("  - %s\n", src)
		}
	}
}
