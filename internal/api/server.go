// Package api exposes the submit/poll HTTP interface over the pipeline.
package api

import (
	"symptom-pipeline/internal/common/config"
	"symptom-pipeline/internal/common/database"
	"symptom-pipeline/internal/common/logger"
	"symptom-pipeline/internal/orchestrator"
	"symptom-pipeline/internal/session"
	"symptom-pipeline/pkg/registry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	cfg    *config.Config
	store  *session.Store
	orch   *orchestrator.Orchestrator
	redis  *database.RedisClient
	stages *registry.StageRegistry
	logger logger.Logger
}

func NewServer(cfg *config.Config, store *session.Store, orch *orchestrator.Orchestrator, redis *database.RedisClient, log logger.Logger) *Server {
	return &Server{
		cfg:    cfg,
		store:  store,
		orch:   orch,
		redis:  redis,
		stages: registry.Default(),
		logger: log,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/status/{sessionID}", s.handleStatus)
		r.Get("/pipeline", s.handlePipeline)
	})

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
