package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/antoniostano/switchboard/internal/agent"
	"github.com/antoniostano/switchboard/internal/config"
	"github.com/antoniostano/switchboard/internal/httpapi"
	"github.com/antoniostano/switchboard/internal/observability"
	"github.com/antoniostano/switchboard/internal/relay"
	"github.com/antoniostano/switchboard/internal/session"
	"github.com/antoniostano/switchboard/internal/upstream"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.OpenAIAPIKey == "" {
		log.Printf("OPENAI_API_KEY is not set; agent connections will be refused")
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	registry, err := agent.NewRegistry(agent.Builtin(), cfg.DefaultAgentID)
	if err != nil {
		log.Fatalf("agent registry init failed: %v", err)
	}
	sessions := session.NewManager(cfg.DefaultAgentID)

	dialer := upstream.NewWSDialer(upstream.WSDialerConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.RealtimeBaseURL,
		Model:   cfg.RealtimeModel,
	})
	controller := upstream.NewController(registry, dialer, cfg.OpenAIAPIKey, cfg.UpstreamConnectTimeout, upstream.SessionOptions{
		TranscriptionModel:    cfg.TranscriptionModel,
		TranscriptionLanguage: cfg.TranscriptionLanguage,
		Temperature:           cfg.Temperature,
		MaxResponseTokens:     cfg.MaxResponseTokens,
	}, metrics)

	rly := relay.New(sessions, controller, metrics)
	api := httpapi.New(cfg, registry, sessions, rly, metrics)

	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
