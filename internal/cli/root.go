// Package cli implements the ingesta command-line interface.
// Services are wired once in the root command's PersistentPreRunE and
// shared by subcommands through package-level variables; tests swap
// the variables for mocks.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ingesta/internal/catalog"
	"github.com/custodia-labs/ingesta/internal/config"
	"github.com/custodia-labs/ingesta/internal/core/ports/driven"
	"github.com/custodia-labs/ingesta/internal/core/ports/driving"
	"github.com/custodia-labs/ingesta/internal/core/services"
	"github.com/custodia-labs/ingesta/internal/extractors"
	"github.com/custodia-labs/ingesta/internal/extractors/plaintext"
	"github.com/custodia-labs/ingesta/internal/fingerprint"
	"github.com/custodia-labs/ingesta/internal/logger"
	"github.com/custodia-labs/ingesta/internal/postprocessors"
	"github.com/custodia-labs/ingesta/internal/storage/sqlite"
)

// version is set at build time via -ldflags.
var version = "dev"

// Wired services, shared by subcommands.
var (
	cfg              *config.Config
	log              *logger.Logger
	contentStore     driven.ContentStore
	fileCatalog      *catalog.Catalog
	ingestor         driving.Ingestor
	extractionRunner driving.ExtractionRunner
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "ingesta",
	Short: "Content-addressed document ingestion and tracking",
	Long: `Ingesta discovers documents on disk, deduplicates them by content
fingerprint, and tracks each one through extraction into text and
chunks, all stored in a local SQLite database.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.ingesta/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// setup loads configuration and wires the service graph.
func setup(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	log = logger.New(os.Stderr, verbose || cfg.Verbose)

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening content store: %w", err)
	}
	contentStore = store
	log.Debug("content store at %s", store.Path())

	policy := cfg.ToPolicy()
	fileCatalog = catalog.New(policy)

	ingestor, err = services.NewIngestService(
		contentStore, fileCatalog, fingerprint.New(), policy, log)
	if err != nil {
		return err
	}

	registry := extractors.NewRegistry()
	registry.Register(plaintext.New())

	processors := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(processors)
	chunkerProc, err := processors.Build("chunker", cfg.ChunkerSettings())
	if err != nil {
		return err
	}

	extractionRunner = services.NewExtractService(
		contentStore, registry, postprocessors.NewPipeline(chunkerProc), nil, log)

	return nil
}

// teardown releases wired resources.
func teardown() error {
	if contentStore == nil {
		return nil
	}
	err := contentStore.Close()
	contentStore = nil
	return err
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command under the given context, so
// long-running commands stop on interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
