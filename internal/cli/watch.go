package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ingesta/internal/catalog"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and ingest new files as they appear",
	Long: `Monitors a directory for created or modified files matching the
configured policy and ingests each one. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestor == nil || fileCatalog == nil {
		return errors.New("ingest service not configured")
	}

	watcher, err := catalog.NewWatcher(fileCatalog.Policy())
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx := cmd.Context()
	paths, err := watcher.Watch(ctx, args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s...\n", args[0])
	for path := range paths {
		report, err := ingestor.Ingest(ctx, path)
		if err != nil {
			cmd.PrintErrf("ingesting %s: %v\n", path, err)
			continue
		}
		if report.Summary.NewlyStored > 0 {
			cmd.Printf("  stored %s\n", path)
		}
	}

	// The channel closes on cancellation; stopping is not an error.
	return nil
}
