package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [fingerprint]",
	Short: "Delete a tracked file and its extracted data",
	Long: `Removes the file record for the given fingerprint together with all
its extracted content and chunks. Source files on disk are untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if contentStore == nil {
		return errors.New("content store not configured")
	}

	if err := contentStore.DeleteFile(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Deleted %s.\n", args[0])
	return nil
}
