package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/storyweaver/internal/config"
	"github.com/jwebster45206/storyweaver/internal/handlers"
	"github.com/jwebster45206/storyweaver/internal/logger"
	"github.com/jwebster45206/storyweaver/internal/middleware"
	"github.com/jwebster45206/storyweaver/internal/services"
	"github.com/jwebster45206/storyweaver/internal/services/events"
	"github.com/jwebster45206/storyweaver/internal/storage"
	"github.com/jwebster45206/storyweaver/pkg/generator"
	"github.com/jwebster45206/storyweaver/pkg/playback"
	"github.com/jwebster45206/storyweaver/pkg/story"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting StoryWeaver API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName,
		"storage_backend", cfg.StorageBackend)

	llmService, err := services.NewLLMService(cfg, log)
	if err != nil {
		log.Error("Failed to configure LLM provider", "error", err)
		os.Exit(1)
	}
	var gen generator.Generator
	if llmService != nil {
		gen = services.NewLLMGenerator(llmService, log).WithTemperature(cfg.Temperature)
	}

	slot, err := storage.Open(cfg, log)
	if err != nil {
		log.Error("Failed to configure storage", "error", err)
		os.Exit(1)
	}
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	var redisClient *redis.Client
	if rs, ok := slot.(*storage.RedisSlot); ok {
		if err := rs.WaitForConnection(storageCtx, 10, 2*time.Second); err != nil {
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		redisClient = rs.Client()
	} else if err := slot.Ping(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	store := story.NewStore()
	persister := storage.NewPersister(slot, store, log)
	n, err := persister.Load(storageCtx)
	if err != nil {
		log.Error("Failed to load stories", "error", err)
		os.Exit(1)
	}
	log.Info("Stories loaded", "count", n)
	store.AddObserver(persister)
	if redisClient != nil {
		store.AddObserver(events.NewBroadcaster(redisClient, log))
	}

	engine := playback.NewEngine(store, gen,
		playback.WithLogger(log),
		playback.WithTimeout(cfg.GenTimeout))

	mux := http.NewServeMux()
	handlers.Register(mux, handlers.Deps{
		Store:      store,
		Sessions:   playback.NewSessions(engine),
		Generator:  gen,
		LLM:        llmService,
		Slot:       slot,
		Redis:      redisClient,
		Logger:     log,
		GenTimeout: cfg.GenTimeout,
	})

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout: SSE streams and generations manage their own deadlines
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	// final write so nothing accepted during shutdown is lost
	if err := persister.Save(shutdownCtx); err != nil {
		log.Error("Failed to save stories on shutdown", "error", err)
	}
	if err := slot.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
