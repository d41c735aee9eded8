// Package main provides the docintel HTTP server entry point.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/docuserve/docintel/internal/auth"
	"github.com/docuserve/docintel/internal/chunker"
	"github.com/docuserve/docintel/internal/config"
	"github.com/docuserve/docintel/internal/embedding"
	"github.com/docuserve/docintel/internal/ingest"
	"github.com/docuserve/docintel/internal/llm"
	"github.com/docuserve/docintel/internal/pdf"
	"github.com/docuserve/docintel/internal/planner"
	"github.com/docuserve/docintel/internal/rag"
	"github.com/docuserve/docintel/internal/server"
	"github.com/docuserve/docintel/internal/store"
	"github.com/docuserve/docintel/internal/title"
	"github.com/docuserve/docintel/internal/vectorstore"
)

var rootCmd = &cobra.Command{
	Use:   "docintel",
	Short: "Multi-tenant document intelligence server",
	Long:  "HTTP server for scoped PDF ingestion, retrieval-grounded chat, and project planning",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the docintel API server.

Environment variables:
  DOCINTEL_HOST    Bind address (default: 0.0.0.0)
  DOCINTEL_PORT    HTTP port (default: 8080)
  QDRANT_HOST      Qdrant hostname (default: localhost)
  QDRANT_PORT      Qdrant gRPC port (default: 6334)
  OPENAI_API_KEY   OpenAI API key (required)
  DOCINTEL_DB_PATH SQLite database path (default: docintel.db)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	index, err := vectorstore.NewIndex(cfg.QdrantHost, cfg.QdrantPort)
	if err != nil {
		return err
	}
	defer index.Close()

	openaiClient, err := embedding.NewClient(cfg.OpenAIKey)
	if err != nil {
		return err
	}
	embedder := embedding.NewEmbedder(openaiClient, cfg.EmbeddingModel, 0)
	chat := llm.NewClient(openaiClient.Client(), cfg.ChatModel, cfg.LLMTimeout)

	pipeline := ingest.NewPipeline(
		pdf.NewExtractor(),
		title.NewExtractor(chat, 0, logger),
		chunker.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		embedder,
		index,
		st,
		cfg.UploadDir,
		logger,
	)

	retriever := rag.NewVectorRetriever(embedder, index, cfg.TopK, cfg.FetchPoolSize, cfg.MMRLambda)
	answerer := rag.NewAnswerer(retriever, chat, cfg.MaxTurns)
	plans := planner.NewGenerator(chat)

	srv := server.New(cfg, st, auth.NewResolver(st), pipeline, answerer, plans, index, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	}
}
