package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ingesta/internal/core/domain"
	"github.com/custodia-labs/ingesta/internal/core/ports/driving"
)

var retryFailed bool

var extractCmd = &cobra.Command{
	Use:   "extract [fingerprint]",
	Short: "Run extraction over tracked files",
	Long: `Extracts text and chunks from stored blobs. Without arguments every
pending file is processed; with --retry-failed the failed ones are
retried instead. A fingerprint argument extracts that single file,
whatever its status.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&retryFailed, "retry-failed", false, "retry failed files instead of pending ones")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractionRunner == nil {
		return errors.New("extraction service not configured")
	}

	ctx := cmd.Context()

	if len(args) == 1 {
		outcome, err := extractionRunner.ExtractOne(ctx, args[0])
		if err != nil {
			return err
		}
		printOutcomes(cmd, []driving.ExtractionOutcome{*outcome})
		return nil
	}

	var (
		outcomes []driving.ExtractionOutcome
		err      error
	)
	if retryFailed {
		outcomes, err = extractionRunner.RetryFailed(ctx)
	} else {
		outcomes, err = extractionRunner.RunPending(ctx)
	}
	if err != nil {
		return err
	}

	printOutcomes(cmd, outcomes)
	return nil
}

func printOutcomes(cmd *cobra.Command, outcomes []driving.ExtractionOutcome) {
	if len(outcomes) == 0 {
		cmd.Println("Nothing to extract.")
		return
	}

	completed := 0
	for _, outcome := range outcomes {
		if outcome.Status == domain.StatusCompleted {
			completed++
			cmd.Printf("  completed %s: %d chunk(s)\n", outcome.Path, outcome.ChunkCount)
		} else {
			cmd.Printf("  failed %s: %s\n", outcome.Path, outcome.Error)
		}
	}
	cmd.Printf("Extracted %d/%d file(s).\n", completed, len(outcomes))
}
