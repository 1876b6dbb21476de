package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-news-feed/internal/favorites/config"
	delivery "ai-news-feed/internal/favorites/delivery/http"
	"ai-news-feed/internal/favorites/service"
	pipelinecfg "ai-news-feed/internal/pipeline/config"
	"ai-news-feed/internal/pipeline/repository"
	"ai-news-feed/pkg/logger"
	"ai-news-feed/pkg/postgres"

	"google.golang.org/genai"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the favorites API",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Favorites API", logger.Field("name", cfg.App.Name))

	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	articleRepo := repository.NewArticleRepository(db.DB, cfg.Storage.LookupChunkSize, cfg.Storage.UpsertChunkSize)

	// The AI repositories are shared with the pipeline and read the
	// provider sections from its config shape.
	aiCfg := &pipelinecfg.Config{
		AI:         cfg.AI,
		Gemini:     cfg.Gemini,
		OpenRouter: cfg.OpenRouter,
		Enrichment: cfg.Enrichment,
	}
	var aiRepo repository.AIRepository
	switch cfg.AI.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
		}
		aiRepo, err = repository.NewGeminiAIRepository(aiCfg, appLogger, genAiClient)
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI repository", logger.ErrorField(err))
		}
	case "openrouter":
		aiRepo = repository.NewOpenRouterRepository(aiCfg, appLogger)
	default:
		appLogger.Fatal("Invalid AI provider specified in config", logger.Field("provider", cfg.AI.Provider))
	}

	favoriteSvc := service.NewFavoriteService(articleRepo, aiRepo, appLogger)

	e := echo.New()
	e.HideBanner = true

	favoriteHandler := delivery.NewFavoriteHandler(favoriteSvc, appLogger)
	apiV1 := e.Group("/api/v1")
	articlesGroup := apiV1.Group("/articles")
	favoriteHandler.RegisterRoutes(articlesGroup)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "favorites-api"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-favorites.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing favorites-api CLI: %s\n", err)
		os.Exit(1)
	}
}
