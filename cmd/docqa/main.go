// Package main provides the docqa CLI: an HTTP server plus bulk
// indexing and one-shot question commands over the same index.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bull/docqa/internal/chunker"
	"github.com/bull/docqa/internal/config"
	"github.com/bull/docqa/internal/embedding"
	"github.com/bull/docqa/internal/generator"
	"github.com/bull/docqa/internal/index"
	"github.com/bull/docqa/internal/loader"
	"github.com/bull/docqa/internal/pipeline"
	"github.com/bull/docqa/internal/retriever"
	"github.com/bull/docqa/internal/server"
	"github.com/bull/docqa/internal/service"
	"github.com/bull/docqa/internal/sink"
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Document question answering over your own files",
	Long: `docqa indexes plain-text and markdown documents and answers
questions about them, citing the source files.

With OPENAI_API_KEY set it uses OpenAI for embeddings and generation;
without it, deterministic local backends that need no network.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the HTTP server with POST /upload, POST /ask and
GET /health endpoints. A previously persisted index is loaded on
startup when compatible.`,
	RunE: runServe,
}

var indexCmd = &cobra.Command{
	Use:   "index <dir>",
	Short: "Bulk-index a directory of .txt and .md files",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndex,
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question against the persisted index",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var (
	askEngine string
	askTopK   int
)

func init() {
	askCmd.Flags().StringVar(&askEngine, "engine", "", "answer engine (linear or graph)")
	askCmd.Flags().IntVar(&askTopK, "k", 0, "number of chunks to retrieve")
	rootCmd.AddCommand(serveCmd, indexCmd, askCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildService assembles the full pipeline from environment
// configuration and loads the persisted index if one exists. Missing or
// unreadable snapshots degrade to an empty index; a snapshot built with
// an incompatible backend is a configuration error.
func buildService(cfg config.Config, logger *slog.Logger) (*service.Service, error) {
	provider, err := embedding.Select(embedding.Options{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIEmbedModel,
		Timeout: cfg.RequestTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("embedding backend: %w", err)
	}

	manifest := index.Manifest{
		Provider:  provider.Name(),
		Model:     provider.Model(),
		Dimension: provider.Dimension(),
	}
	ix, err := index.Load(cfg.IndexDir, manifest)
	switch {
	case err == nil:
		logger.Info("loaded index snapshot", "dir", cfg.IndexDir, "chunks", ix.Size())
	case errors.Is(err, index.ErrNoSnapshot):
		logger.Info("no index snapshot found, starting empty", "dir", cfg.IndexDir)
		ix, err = index.New(provider.Dimension())
		if err != nil {
			return nil, err
		}
	case errors.Is(err, index.ErrCorruptSnapshot):
		logger.Warn("index snapshot unreadable, starting empty", "dir", cfg.IndexDir, "error", err)
		ix, err = index.New(provider.Dimension())
		if err != nil {
			return nil, err
		}
	default:
		// Dimension, metric or provider mismatches need operator action.
		return nil, fmt.Errorf("load index: %w", err)
	}

	gen, err := generator.Select(generator.Options{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.RequestTimeout,
		Budget:  cfg.ContextBudget,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("generation backend: %w", err)
	}

	r := retriever.New(provider, ix, logger)
	engines := map[string]pipeline.Engine{
		pipeline.EngineLinear: pipeline.NewLinear(r, gen, cfg.ContextBudget),
		pipeline.EngineGraph:  pipeline.NewGraph(r, gen, cfg.ContextBudget),
	}

	var qaSink sink.Sink
	if cfg.QALog != "" {
		fileSink, err := sink.NewFileSink(cfg.QALog)
		if err != nil {
			return nil, fmt.Errorf("question log: %w", err)
		}
		qaSink = fileSink
	}

	return service.New(service.Config{
		Chunker:       chunker.New(cfg.ChunkSize, cfg.ChunkOverlap),
		Provider:      provider,
		Index:         ix,
		Engines:       engines,
		DefaultEngine: cfg.AnswerEngine,
		Sink:          qaSink,
		IndexDir:      cfg.IndexDir,
		Logger:        logger,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)
	cfg := config.FromEnv()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	svc, err := buildService(cfg, logger)
	if err != nil {
		return err
	}

	srv := server.New(svc, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.ListenAddr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	case err := <-errCh:
		return err
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := config.FromEnv()

	svc, err := buildService(cfg, logger)
	if err != nil {
		return err
	}

	res, err := loader.New(svc, logger).IndexDir(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d/%d documents (%d chunks, %d failed)\n",
		res.SuccessfulDocs, res.TotalDocs, res.TotalChunks, res.FailedDocs)
	if res.FailedDocs > 0 {
		return fmt.Errorf("%d documents failed to index", res.FailedDocs)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := config.FromEnv()

	svc, err := buildService(cfg, logger)
	if err != nil {
		return err
	}

	answer, err := svc.Ask(cmd.Context(), strings.Join(args, " "), askEngine, askTopK)
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	fmt.Println()
	fmt.Println("Sources:")
	for _, s := range answer.Sources {
		fmt.Printf("  - %s\n", s)
	}
	return nil
}
