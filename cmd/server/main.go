package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/cvforge/internal/api"
	"github.com/dgallion1/cvforge/internal/config"
	"github.com/dgallion1/cvforge/internal/critique"
	"github.com/dgallion1/cvforge/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Every provider client records into one stats window.
	stats := critique.NewLLMStats(time.Hour)
	newAnalyzer := func(p critique.Provider, model, apiKey string) (critique.Analyzer, error) {
		if apiKey == "" {
			apiKey = cfg.APIKey(p)
		}
		return critique.New(critique.Options{
			Provider:        p,
			Model:           model,
			APIKey:          apiKey,
			Timeout:         cfg.LLMTimeout,
			MaxPromptTokens: cfg.MaxPromptTokens,
			Stats:           stats,
			Logger:          log,
		})
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, newAnalyzer, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting cvforge",
		"port", cfg.Port,
		"default_provider", cfg.DefaultProvider,
		"workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
