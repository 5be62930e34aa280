package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show runtime statistics of a running server",
	Long: `Fetch and print runtime statistics from a running campusmind server:
uptime, how often each agent was selected, and per-operation timings.

The server endpoint comes from --server, the CAMPUSMIND_SERVER_URL env
var, or defaults to http://localhost:8080.

Examples:
  campusmind stats
  campusmind --server http://campusmind.internal:8080 stats`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	snap, err := apiClient().Stats(context.Background())
	if err != nil {
		return fmt.Errorf("get server stats: %w", err)
	}

	uptime := time.Duration(snap.UptimeSeconds * float64(time.Second))
	fmt.Printf("Server Statistics\n")
	fmt.Printf("═══════════════════════════════════════\n\n")
	fmt.Printf("Uptime: %s\n", uptime.Round(time.Second))

	if len(snap.AgentSelections) > 0 {
		fmt.Printf("\nAgent selections:\n")
		names := make([]string, 0, len(snap.AgentSelections))
		for name := range snap.AgentSelections {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-20s %d\n", name, snap.AgentSelections[name])
		}
	}

	if len(snap.Operations) > 0 {
		fmt.Printf("\nOperations:\n")
		ops := make([]string, 0, len(snap.Operations))
		for op := range snap.Operations {
			ops = append(ops, op)
		}
		sort.Strings(ops)
		for _, op := range ops {
			m := snap.Operations[op]
			fmt.Printf("  %-14s count=%-6d avg=%.1fms min=%dms max=%dms\n",
				op, m.Count, m.AvgTimeMs, m.MinTimeMs, m.MaxTimeMs)
		}
	}

	return nil
}
