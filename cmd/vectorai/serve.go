package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vector-ai/vector-backend/internal/analysis"
	"github.com/vector-ai/vector-backend/internal/config"
	"github.com/vector-ai/vector-backend/internal/headhunter"
	"github.com/vector-ai/vector-backend/internal/llm"
	"github.com/vector-ai/vector-backend/internal/logger"
	"github.com/vector-ai/vector-backend/internal/ratelimit"
	"github.com/vector-ai/vector-backend/internal/server"
	"github.com/vector-ai/vector-backend/internal/skills"
	"github.com/vector-ai/vector-backend/internal/snapshot"
	"github.com/vector-ai/vector-backend/internal/validation"
)

var (
	servePort   int
	serveConfig string
	serveDebug  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the interview, analysis and posting-matching endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to a JSON config file")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFile(serveConfig)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveDebug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	providers, closeProviders, err := buildProviders(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeProviders()
	if len(providers) == 0 {
		return fmt.Errorf("no LLM providers available: set OPENROUTER_API_KEY, GEMINI_API_KEY or run Ollama")
	}

	gateway := llm.NewGateway(log, providers...)
	repairer := validation.NewRepairer(gateway, log)

	cache := headhunter.NewCache(cfg.CacheTTL)
	postings := headhunter.NewClient(cfg.HHBaseURL, cache, log)

	store := skills.NewStore(skills.NewMemoryRepository(), func(ctx context.Context, postingID string) ([]string, error) {
		vacancy, err := postings.GetVacancy(ctx, postingID)
		if err != nil {
			return nil, err
		}
		return vacancy.SkillNames(), nil
	}, log)

	service := analysis.NewService(
		gateway,
		repairer,
		ratelimit.NewLimiter(),
		store,
		postings,
		snapshot.NewMemoryRecorder(),
		cfg.HHAreaID,
		log,
	)

	srv := server.New(service, cfg.Port, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

// buildProviders assembles the LLM fallback chain. With provider "auto" every
// configured backend joins the chain in priority order; an explicit provider
// name pins the chain to that single backend.
func buildProviders(ctx context.Context, cfg *config.Config, log *zap.Logger) ([]llm.Client, func(), error) {
	var (
		providers []llm.Client
		closers   []func() error
	)
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("provider close failed", zap.Error(err))
			}
		}
	}

	addOpenRouter := func() {
		providers = append(providers, llm.NewOpenRouter(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel))
	}
	addOllama := func() {
		providers = append(providers, llm.NewOllama(cfg.OllamaBaseURL, cfg.OllamaModel))
	}
	addGemini := func() error {
		gemini, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("failed to create gemini provider: %w", err)
		}
		providers = append(providers, gemini)
		closers = append(closers, gemini.Close)
		return nil
	}

	switch cfg.Provider {
	case "openrouter", "openai":
		addOpenRouter()
	case "ollama":
		addOllama()
	case "gemini":
		if err := addGemini(); err != nil {
			return nil, closeAll, err
		}
	default: // auto
		if cfg.OpenRouterAPIKey != "" {
			addOpenRouter()
		}
		addOllama()
		if cfg.GeminiAPIKey != "" {
			if err := addGemini(); err != nil {
				closeAll()
				return nil, func() {}, err
			}
		}
	}

	for _, p := range providers {
		log.Info("llm provider enabled", zap.String("provider", p.Name()))
	}

	return providers, closeAll, nil
}
