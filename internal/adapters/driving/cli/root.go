// Package cli implements the ragline command line interface.
package cli

import (
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragline-cli/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/ragline-cli/internal/adapters/driven/config/file"
	indexsqlite "github.com/custodia-labs/ragline-cli/internal/adapters/driven/index/sqlite"
	storagesqlite "github.com/custodia-labs/ragline-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragline-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragline-cli/internal/core/services"
	"github.com/custodia-labs/ragline-cli/internal/ingest"
	"github.com/custodia-labs/ragline-cli/internal/logger"
	"github.com/custodia-labs/ragline-cli/internal/tokencount"
)

// version is set at build time via ldflags.
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
)

// Services wired by initServices. Package-level so commands and tests
// can reach them.
var (
	ingestService driving.IngestService
	queryService  driving.QueryService
	threadService driving.ThreadService

	appConfig *configfile.Config
	closers   []io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "ragline",
	Short: "Chat with your local documents",
	Long: `ragline ingests text files, images, and PDFs into a local vector
index and answers questions about them with retrieval-augmented
generation. Everything stays on your machine except the LLM call.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

// Execute runs the root command and releases resources afterwards.
func Execute() error {
	defer closeAll()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.ragline)")
}

// initServices wires adapters to services before any command runs.
// Tests inject their own services, which skips the wiring.
func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}
	if ingestService != nil {
		return nil
	}

	// API keys may live in a .env next to the working directory.
	_ = godotenv.Load()

	cfg, err := configfile.Load(configDir)
	if err != nil {
		return err
	}
	appConfig = cfg

	engine := ai.CreateEmbeddingEngine(cfg.ClipSettings(), cfg.FallbackSettings())
	closers = append(closers, engine)

	index, err := indexsqlite.New(cfg.DataDir, cfg.Collection, engine)
	if err != nil {
		return fmt.Errorf("opening vector index: %w", err)
	}
	closers = append(closers, index)

	threadStore, err := storagesqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening thread store: %w", err)
	}
	closers = append(closers, threadStore)

	ingestor, err := ingest.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return err
	}

	llm, err := ai.CreateLLMService(cfg.LLMSettings())
	if err != nil {
		return err
	}
	closers = append(closers, llm)

	ingestService = services.NewIngestService(ingestor, index)
	threadService = services.NewThreadService(threadStore)
	queryService = services.NewRAGService(index, llm, threadStore, tokencount.New(), services.RAGConfig{
		TokenLimit:  cfg.Conversation.TokenLimit,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	return nil
}

func closeAll() {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i].Close()
	}
	closers = nil
}
