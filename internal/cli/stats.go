package cli

import (
	"errors"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ingesta/internal/core/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show content store statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if contentStore == nil {
		return errors.New("content store not configured")
	}

	stats, err := contentStore.Statistics(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Files:  %d (%s)\n", stats.TotalFiles, humanize.Bytes(uint64(stats.TotalBytes))) //nolint:gosec // sizes are non-negative
	cmd.Printf("Chunks: %d\n", stats.TotalChunks)
	for _, status := range domain.Statuses() {
		cmd.Printf("  %-10s %d\n", status, stats.CountsByStatus[status])
	}
	return nil
}
