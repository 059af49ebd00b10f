// Package cmd provides the CLI commands for knowledgeengine: a thin demo
// surface over the ingest/search/mediasvc/reprocess facades, not a
// standalone product. Every subcommand opens the store, wires the same
// components ingest.Core/search.Facade use internally, and calls exactly
// one public operation.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/knowledgeengine/internal/config"
	"github.com/Aman-CERP/knowledgeengine/internal/embed"
	"github.com/Aman-CERP/knowledgeengine/internal/enrich"
	"github.com/Aman-CERP/knowledgeengine/internal/ingest"
	"github.com/Aman-CERP/knowledgeengine/internal/logging"
	"github.com/Aman-CERP/knowledgeengine/internal/mdparse"
	"github.com/Aman-CERP/knowledgeengine/internal/media"
	"github.com/Aman-CERP/knowledgeengine/internal/mediasvc"
	"github.com/Aman-CERP/knowledgeengine/internal/pipeline"
	"github.com/Aman-CERP/knowledgeengine/internal/queue"
	"github.com/Aman-CERP/knowledgeengine/internal/reprocess"
	"github.com/Aman-CERP/knowledgeengine/internal/search"
	"github.com/Aman-CERP/knowledgeengine/internal/splitter"
	"github.com/Aman-CERP/knowledgeengine/internal/store"
	"github.com/Aman-CERP/knowledgeengine/pkg/version"
)

var (
	dataDir     string
	offline     bool
	debugMode   bool
	loggingDone func()
)

// NewRootCmd creates the root command for the knowledgeengine CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "knowledgeengine",
		Short:   "Embedded semantic knowledge engine demo CLI",
		Version: version.Version,
	}
	cmd.SetVersionTemplate("knowledgeengine version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", ".knowledgeengine-data", "database and log directory")
	cmd.PersistentFlags().BoolVar(&offline, "offline", false, "use static (hash-based) embeddings/analysis, skip upstream calls")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newMediaCmd())
	cmd.AddCommand(newReprocessCmd())
	cmd.AddCommand(newQueueCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func startLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if debugMode {
		cfg = logging.DebugConfig()
	}
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	loggingDone = cleanup
	slog.SetDefault(logger)
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingDone != nil {
		loggingDone()
		loggingDone = nil
	}
	return nil
}

// app bundles every component a subcommand needs, wired the same way
// ingest.Core/search.Facade are wired internally.
type app struct {
	Store     *store.Store
	Config    *config.Config
	Core      *ingest.Core
	Search    *search.Facade
	Media     *mediasvc.Service
	Reprocess *reprocess.Service
}

// newApp opens the store at dataDir and wires the full component graph.
// The returned closer must be called to release the store's file lock.
func newApp(ctx context.Context) (*app, func() error, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	cfg, err := config.Load(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.Open(ctx, dataDir, store.DefaultVectorStoreConfig(cfg.Embed.EmbeddingDim))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	provider := embed.ProviderOllama
	if offline {
		provider = embed.ProviderStatic
	}
	embedder, err := embed.NewEmbedder(ctx, provider, "")
	if err != nil {
		_ = st.Close()
		return nil, nil, fmt.Errorf("failed to build embedder: %w", err)
	}

	sp := splitter.New(splitter.Config{
		ChunkSize:           cfg.Chunk.ChunkSize,
		CodeChunkSize:       cfg.Chunk.CodeChunkSize,
		TranscriptChunkSize: cfg.Chunk.TranscriptChunkSize,
		OCRChunkSize:        cfg.Chunk.OCRChunkSize,
	}, splitter.NewStatementSnapper())
	parser := mdparse.New()

	var analyzer media.Analyzer
	if offline {
		analyzer = media.NewStaticAnalyzer("")
	} else {
		analyzer = media.NewHTTPAnalyzer(media.HTTPConfig{})
	}

	limiter := embed.NewTokenBucket(cfg.Embed.RateLimitRPM, cfg.Embed.EmbedderBurst)
	pl := pipeline.New(sp, parser, st, func(msg string) { slog.Warn(msg) })

	core := &ingest.Core{
		Parser:   parser,
		Splitter: sp,
		Enricher: enrich.HierarchicalStrategy{},
		Embedder: embedder,
		Store:    st,
		Pipeline: pl,
		Analyzer: analyzer,
	}
	core.Queue = queue.New(st, analyzer, limiter, core.HandleAnalyzedTask)

	a := &app{
		Store:  st,
		Config: cfg,
		Core:   core,
		Search: &search.Facade{Embedder: embedder, Store: st},
		Media:  &mediasvc.Service{Store: st},
		Reprocess: &reprocess.Service{
			Store:    st,
			Pipeline: pl,
			Enricher: enrich.HierarchicalStrategy{},
			Embedder: embedder,
			Analyzer: analyzer,
		},
	}
	return a, st.Close, nil
}
