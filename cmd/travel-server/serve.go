package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"travel-planner-backend/internal/chat"
	"travel-planner-backend/internal/config"
	"travel-planner-backend/internal/llm"
	"travel-planner-backend/internal/logger"
	"travel-planner-backend/internal/server"
	"travel-planner-backend/internal/store"
	"travel-planner-backend/internal/tracer"
	"travel-planner-backend/internal/travel"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chat backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port != "" {
				cfg.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}

func serve(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	log := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		FilePath:   cfg.LogFilePath,
		Production: cfg.IsProduction(),
	})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer := tracer.Init(ctx, cfg.TracingEnabled, cfg.OTLPEndpoint, log)

	catalog, err := travel.LoadCatalog(cfg.PromptsFile)
	if err != nil {
		return errors.Wrap(err, "load prompt catalog")
	}
	gateway := llm.NewOpenAIGateway(llm.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.Model,
		Timeout: cfg.LLMTimeout,
	}, log)
	orch := travel.NewOrchestrator(gateway, catalog, travel.Options{
		HistoryWindow:        cfg.HistoryWindow,
		FollowUpThreshold:    cfg.FollowUpThreshold,
		FollowUpMaxQuestions: cfg.FollowUpMaxQuestions,
		ClassifyCacheTTL:     cfg.ClassifyCacheTTL,
	}, log)

	sessions := store.NewMemoryStore()
	cleanup := store.NewCleanupService(sessions, cfg.SessionMaxAge, cfg.SessionCleanupInterval, log)
	srv := server.NewServer(cfg, chat.NewService(sessions, orch, log), log)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.Info("travel planner listening",
			zap.String("addr", httpServer.Addr),
			zap.String("model", cfg.Model),
			zap.String("env", cfg.Environment),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	eg.Go(func() error {
		cleanup.Start(egCtx)
		<-egCtx.Done()
		cleanup.Stop()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
		if err := shutdownTracer(shutdownCtx); err != nil {
			log.Warn("tracer shutdown error", zap.Error(err))
		}
		return nil
	})
	return eg.Wait()
}
