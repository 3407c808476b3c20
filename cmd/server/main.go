package main

import (
	// Standard library
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// External dependencies
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Internal packages
	"github.com/meetkit/meetings-gateway/cmd/server/internal/api"
	"github.com/meetkit/meetings-gateway/cmd/server/internal/cache"
	"github.com/meetkit/meetings-gateway/cmd/server/internal/config"
	"github.com/meetkit/meetings-gateway/cmd/server/internal/middleware"
	"github.com/meetkit/meetings-gateway/cmd/server/internal/recordings"
	"github.com/meetkit/meetings-gateway/cmd/server/internal/upstream"
	"github.com/meetkit/meetings-gateway/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logInstance, err := logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		Format:      cfg.Log.Format,
		WithSource:  !cfg.IsProduction(),
		File:        cfg.Log.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	appLogger := logInstance.With("component", "gateway")

	// Validate configuration
	if err := config.ValidateConfig(cfg); err != nil {
		appLogger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	appLogger.Info("configuration loaded", "env", cfg.Server.Env, "port", cfg.Server.Port)
	appLogger.Debug("effective configuration", "config", cfg.PrintConfig())

	// A missing credential is a request-time error, not a startup error:
	// the gateway still serves health and readiness without one.
	if !cfg.HasCredential() {
		appLogger.Warn("MEETINGS_API_KEY is not set - data requests will fail until a credential is configured")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Wire the upstream client, cache slot and meetings service
	client := upstream.NewClient(cfg.Upstream, cfg.Filters,
		logInstance.With("component", "upstream-client"))
	slot := cache.NewSlot(cfg.Cache.TTL)
	fetcher := recordings.NewFetcher(client, cfg.Upstream.PageDelay, cfg.Upstream.MaxRetries,
		logInstance.With("component", "fetcher"))
	service := recordings.NewService(client, fetcher, slot,
		logInstance.With("component", "meetings-service"))
	appLogger.Info("meetings service ready",
		"base_url", cfg.Upstream.BaseURL,
		"cache_ttl", cfg.Cache.TTL.String(),
	)

	production := cfg.IsProduction()

	r := gin.New()
	r.Use(middleware.Recovery(production))
	r.Use(middleware.RequestLogger())

	// Probe and metrics endpoints
	startTime := time.Now()
	upstreamStatus := api.UpstreamStatus{
		CredentialConfigured: client.HasCredential(),
		BaseURL:              client.BaseURL(),
	}
	r.GET("/health", api.HandleHealth(service, cfg.Server.Env, startTime, upstreamStatus))
	r.GET("/readiness", api.HandleReadiness(cfg.HasCredential()))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/meetings", api.HandleListMeetings(service, production))
		apiGroup.GET("/meetings/:id/transcript", api.HandleGetTranscript(service, production))
		apiGroup.GET("/health", api.HandleHealth(service, cfg.Server.Env, startTime, upstreamStatus)) // Alternative API path
		apiGroup.POST("/cache/clear", api.HandleClearCache(service))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": fmt.Sprintf("No route for %s %s", c.Request.Method, c.Request.URL.Path),
		})
	})

	// Create HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:    cfg.GetServerAddr(),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("server starting", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	appLogger.Info("shutdown signal received, shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	appLogger.Info("server shutdown complete")
}
