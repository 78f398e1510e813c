// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"symptom-pipeline/internal/api"
	"symptom-pipeline/internal/common/config"
	"symptom-pipeline/internal/common/database"
	"symptom-pipeline/internal/common/logger"
	"symptom-pipeline/internal/common/observability"
	"symptom-pipeline/internal/orchestrator"
	"symptom-pipeline/internal/session"

	coarsesearch "symptom-pipeline/internal/steps/coarse-search"
	deepresearch "symptom-pipeline/internal/steps/deep-research"
	extractdocuments "symptom-pipeline/internal/steps/extract-documents"
	findclinics "symptom-pipeline/internal/steps/find-clinics"
	forumdebate "symptom-pipeline/internal/steps/forum-debate"
	redacttext "symptom-pipeline/internal/steps/redact-text"
	resolvelocation "symptom-pipeline/internal/steps/resolve-location"
	scoreconditions "symptom-pipeline/internal/steps/score-conditions"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting symptom analysis server...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return redisClient.Ping(pingCtx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	store := session.NewStore(redisClient, cfg.Pipeline.SessionTTLDuration(), log)

	steps := orchestrator.Steps{
		ExtractDocuments: extractdocuments.NewHandler(extractdocuments.NewConfig(), log),
		RedactText:       redacttext.NewHandler(redacttext.NewConfig(cfg.Services.Sanitizer), log),
		ResolveLocation:  resolvelocation.NewHandler(resolvelocation.NewConfig(cfg.Services.Location), log),
		CoarseSearch:     coarsesearch.NewHandler(coarsesearch.NewConfig(cfg.Services.Reasoning, cfg.Pipeline), log),
		DeepResearch:     deepresearch.NewHandler(deepresearch.NewConfig(cfg.Services.Research, cfg.Pipeline), log),
		ForumDebate:      forumdebate.NewHandler(forumdebate.NewConfig(), log),
		ScoreConditions:  scoreconditions.NewHandler(scoreconditions.NewConfig(cfg.Pipeline), log),
		FindClinics:      findclinics.NewHandler(findclinics.NewConfig(cfg.Services.Clinics, cfg.Pipeline), log),
	}

	orch := orchestrator.New(store, steps, obs, log)
	server := api.NewServer(cfg, store, orch, redisClient, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// pprof on a separate port, not exposed through the main router.
	go func() {
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			zapLog.Warn("pprof server stopped", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("Server stopped")
}
