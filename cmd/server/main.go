package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Qualiasolutions/theracoach/internal/config"
	"github.com/Qualiasolutions/theracoach/internal/handlers"
	"github.com/Qualiasolutions/theracoach/internal/i18n"
	"github.com/Qualiasolutions/theracoach/internal/middleware"
	"github.com/Qualiasolutions/theracoach/internal/ratelimit"
	"github.com/Qualiasolutions/theracoach/internal/services/ai"
	"github.com/Qualiasolutions/theracoach/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	envFile := flag.String("env", ".env", "Path to .env file")
	flag.Parse()

	// Load .env file if exists
	if err := godotenv.Load(*envFile); err != nil {
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info("Starting relay server...")

	// The service still boots without a key; every chat request answers
	// 503 until one is configured.
	if cfg.Upstream.APIKey == "" {
		log.Error("OPENROUTER_API_KEY is not set: chat requests will be rejected with 503")
	} else {
		log.WithField("key_length", len(cfg.Upstream.APIKey)).Info("Upstream API key loaded")
	}

	metrics := middleware.NewMetrics()
	localizer := i18n.NewLocalizer(cfg.I18n.DefaultLanguage)

	limiter, err := ratelimit.New(&cfg.RateLimit, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize rate limiter")
	}
	log.WithFields(logrus.Fields{
		"store":  cfg.RateLimit.Store,
		"max":    cfg.RateLimit.MaxRequests,
		"window": cfg.RateLimit.Window,
	}).Info("Rate limiter initialized")

	aiClient := ai.NewClient(&cfg.Upstream, metrics, log)
	chatHandler := handlers.NewChatHandler(cfg, aiClient, localizer, metrics, log)

	var chat http.Handler = http.HandlerFunc(chatHandler.HandleChat)
	chat = middleware.RateLimit(limiter, localizer, metrics, log)(chat)
	chat = middleware.RequireConfigured(aiClient.Configured, localizer, metrics, log)(chat)

	router := mux.NewRouter()
	router.Handle("/api/chat", chat).Methods(http.MethodPost)

	if cfg.Monitoring.Metrics.Enabled {
		go func() {
			log.WithFields(logrus.Fields{
				"port": cfg.Monitoring.Metrics.Port,
				"path": cfg.Monitoring.Metrics.Path,
			}).Info("Starting metrics server")

			if err := middleware.StartMetricsServer(cfg.Monitoring.Metrics.Port, cfg.Monitoring.Metrics.Path); err != nil {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
		// No WriteTimeout: responses stream for as long as the upstream
		// call runs; the per-request upstream timeout bounds that instead.
	}

	go func() {
		log.WithField("addr", server.Addr).Info("Listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}

	log.Info("Server stopped")
}
