package cli

import (
	"errors"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ingesta/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status [pending|processing|completed|failed]",
	Short: "List tracked files by status",
	Long: `Lists tracked files in the given lifecycle status, most recently
processed first. Defaults to pending.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if contentStore == nil {
		return errors.New("content store not configured")
	}

	status := domain.StatusPending
	if len(args) == 1 {
		status = domain.Status(args[0])
	}

	records, err := contentStore.ListByStatus(cmd.Context(), status)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		cmd.Printf("No %s files.\n", status)
		return nil
	}

	cmd.Printf("%d %s file(s):\n", len(records), status)
	for _, record := range records {
		cmd.Printf("  %s  %-10s %s\n", record.Fingerprint, humanize.Bytes(uint64(record.SizeBytes)), record.SourcePath) //nolint:gosec // sizes are non-negative
		if record.ErrorMessage != "" {
			cmd.Printf("    error: %s\n", record.ErrorMessage)
		}
	}
	return nil
}
