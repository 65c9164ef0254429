package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/xaenox/vision-board/internal/board"
	"github.com/xaenox/vision-board/internal/generator"
	"github.com/xaenox/vision-board/internal/server"
	"github.com/xaenox/vision-board/internal/storage"
	"github.com/xaenox/vision-board/pkg/config"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load local .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize snapshot storage
	var snap storage.Snapshotter
	switch cfg.Storage.Driver {
	case "memory":
		logger.Info("Using in-memory snapshot storage")
		snap = storage.NewMemoryStorage()
	case "postgres":
		logger.Info("Using PostgreSQL snapshot storage")
		snap, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	default:
		logger.Info("Using file snapshot storage", zap.String("path", cfg.Storage.SnapshotPath))
		snap, err = storage.NewFileStorage(cfg.Storage.SnapshotPath)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer snap.Close()

	// Initialize the board store
	store := board.NewStore(snap, logger)
	store.Initialize(context.Background())

	// Initialize the content generator
	gen := generator.NewOpenAIGenerator(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.ChatModel,
		cfg.OpenAI.ImageModel,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		logger,
	)

	// Initialize and start the server
	srv := server.New(store, gen, logger)

	go func() {
		if err := srv.Start(cfg.Server.Port); err != nil {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()
	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}
