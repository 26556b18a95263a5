package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest a file or folder into the content store",
	Long: `Scans the given path, validates candidates against the configured
policy, deduplicates by content fingerprint, and stores new files as
pending for extraction.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestor == nil {
		return errors.New("ingest service not configured")
	}

	report, err := ingestor.Ingest(cmd.Context(), args[0])
	if err != nil {
		if report != nil && !report.Success {
			cmd.PrintErrf("Invalid path: %s\n", report.PathInfo.Reason)
		}
		return err
	}

	s := report.Summary
	cmd.Printf("Scanned %d file(s): %d valid, %d invalid\n", s.TotalScanned, s.Valid, s.Invalid)
	cmd.Printf("Stored %d new, %d already tracked, %d failed\n", s.NewlyStored, s.AlreadyTracked, s.Failed)

	for _, invalid := range report.InvalidFiles {
		cmd.Printf("  skipped %s: %s\n", invalid.Path, invalid.Reason)
	}
	for _, result := range report.StoredResults {
		if result.Success {
			cmd.Printf("  stored %s (%s) %s\n", result.Path, result.SizeFormatted, result.Fingerprint)
		} else {
			cmd.Printf("  failed %s: %s\n", result.Path, result.Error)
		}
	}

	return nil
}
