package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ChaseRain/carouselgen/internal/api"
	"github.com/ChaseRain/carouselgen/internal/infra/config"
	"github.com/ChaseRain/carouselgen/internal/infra/httpclient"
	"github.com/ChaseRain/carouselgen/internal/infra/limiter"
	"github.com/ChaseRain/carouselgen/internal/infra/logger"
	"github.com/ChaseRain/carouselgen/internal/infra/metrics"
	"github.com/ChaseRain/carouselgen/internal/service/export"
	"github.com/ChaseRain/carouselgen/internal/service/gemini"
	"github.com/ChaseRain/carouselgen/internal/service/imagegen"
	"github.com/ChaseRain/carouselgen/internal/service/orchestrator"
	"github.com/ChaseRain/carouselgen/internal/service/render"
	"github.com/ChaseRain/carouselgen/internal/service/session"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.Gemini.APIKey == "" {
		zapLogger.Warn("no Gemini API key configured, generation requests will fail")
	}

	// Init HTTP client
	httpClient := httpclient.New(httpclient.Options{
		Timeout: time.Duration(cfg.HTTPClient.TimeoutSeconds) * time.Second,
	})

	// Init limiter and metrics
	lim := limiter.New(cfg.Limiter.MaxConcurrent, cfg.Limiter.RatePerSecond)
	m := metrics.New()

	// Init services
	geminiSvc := gemini.New(gemini.Options{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		BaseURL:     cfg.Gemini.BaseURL,
		Temperature: cfg.Gemini.Temperature,
		TopP:        cfg.Gemini.TopP,
	}, httpClient, zapLogger)
	imageGenSvc := imagegen.New(imagegen.Options{
		APIKey:  cfg.ImageGen.APIKey,
		Model:   cfg.ImageGen.Model,
		BaseURL: cfg.ImageGen.BaseURL,
	}, httpClient, zapLogger)

	renderer, err := render.New()
	if err != nil {
		zapLogger.Error("failed to load fonts", "error", err)
		os.Exit(1)
	}
	exporter := export.New(renderer, cfg.Render.ExportScale, m, zapLogger)

	// Init orchestrator
	orch := orchestrator.New(geminiSvc, imageGenSvc, lim, m, zapLogger, orchestrator.Options{
		ImageTimeout: time.Duration(cfg.ImageGen.TimeoutSeconds) * time.Second,
	})

	// Init sessions
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	sessions := session.NewStore(orch, time.Duration(cfg.Session.IdleTTLMinutes)*time.Minute, zapLogger)
	go sessions.Run(ctx, time.Minute)

	// Init router
	handler := api.NewHandler(sessions, exporter, cfg.Session.CookieName, zapLogger)
	router := api.NewRouter(handler, m, cfg.Server.AllowedOrigins, zapLogger)

	// Create server
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	// Start server
	go func() {
		zapLogger.Info("starting server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Error("server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down server...")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", "error", err)
	}
	zapLogger.Info("server stopped")
}
