// Package server exposes the tenant, ingestion, chat, and planning
// operations over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/docuserve/docintel/internal/auth"
	"github.com/docuserve/docintel/internal/config"
	"github.com/docuserve/docintel/internal/ingest"
	"github.com/docuserve/docintel/internal/planner"
	"github.com/docuserve/docintel/internal/rag"
	"github.com/docuserve/docintel/internal/scope"
	"github.com/docuserve/docintel/internal/session"
	"github.com/docuserve/docintel/internal/store"
)

// Ingestor runs the upload pipeline for one document.
type Ingestor interface {
	Ingest(ctx context.Context, sc scope.Scope, filename string, data []byte) (*ingest.Result, error)
}

// Chatter answers one question within a scope.
type Chatter interface {
	Answer(ctx context.Context, sc scope.Scope, question string, history []rag.Turn) (string, []rag.Turn, error)
}

// PlanGenerator produces a structured project plan.
type PlanGenerator interface {
	Generate(ctx context.Context, in planner.ProjectInputs) (*planner.ProjectPlan, error)
}

// HealthChecker reports vector index liveness.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server wires the HTTP surface to the domain services.
type Server struct {
	store    *store.Store
	resolver *auth.Resolver
	ingestor Ingestor
	chatter  Chatter
	planner  PlanGenerator
	vectors  HealthChecker
	sessions *session.History
	validate *validator.Validate
	logger   *slog.Logger
	httpSrv  *http.Server
}

// New assembles the server. The session history bound follows the
// configured per-conversation window.
func New(cfg *config.Config, st *store.Store, resolver *auth.Resolver, ingestor Ingestor, chatter Chatter, plan PlanGenerator, vectors HealthChecker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:    st,
		resolver: resolver,
		ingestor: ingestor,
		chatter:  chatter,
		planner:  plan,
		vectors:  vectors,
		sessions: session.NewHistory(cfg.MaxTurns),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the routed handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}
