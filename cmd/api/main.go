package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/openquest/dungeonmaster/internal/config"
	"github.com/openquest/dungeonmaster/internal/handlers"
	"github.com/openquest/dungeonmaster/internal/logger"
	"github.com/openquest/dungeonmaster/internal/middleware"
	"github.com/openquest/dungeonmaster/internal/services"
	"github.com/openquest/dungeonmaster/internal/services/events"
	"github.com/openquest/dungeonmaster/internal/session"
	"github.com/openquest/dungeonmaster/internal/storage"
	"github.com/openquest/dungeonmaster/pkg/textfilter"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Dungeon Master API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	var llmService services.LLMService
	switch cfg.LLMProvider {
	case "anthropic":
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
		log.Info("Using Anthropic LLM provider")
	case "openai":
		llmService = services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.ModelName, log)
		log.Info("Using OpenAI LLM provider")
	}

	store := storage.NewRedisStorage(cfg.RedisURL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	// Initialize the model on startup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if err := llmService.InitModel(ctx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	broadcaster := events.NewBroadcaster(store.Client(), log)

	manager := session.NewManager(store, llmService, log).
		WithBroadcaster(broadcaster)
	if textfilter.Enabled(cfg.ContentRating) {
		manager.WithSanitizer(textfilter.New().Sanitize)
		log.Info("Content filter enabled", "rating", cfg.ContentRating)
	}

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, log))

	gameHandler := handlers.NewGameHandler(manager, log)
	mux.Handle("/v1/game", gameHandler)

	chatHandler := handlers.NewChatHandler(manager, log)
	rollHandler := handlers.NewRollHandler(manager, log)
	eventsHandler := handlers.NewEventsHandler(manager, broadcaster, log)
	mux.HandleFunc("/v1/game/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat"):
			chatHandler.ServeHTTP(w, r)
		case strings.HasSuffix(r.URL.Path, "/roll"):
			rollHandler.ServeHTTP(w, r)
		case strings.HasSuffix(r.URL.Path, "/events"):
			eventsHandler.ServeHTTP(w, r)
		default:
			gameHandler.ServeHTTP(w, r)
		}
	})

	mux.Handle("/v1/scenarios", handlers.NewScenariosHandler(log))

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout omitted so SSE responses can stream; streaming
		// endpoints carry their own timeouts
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
