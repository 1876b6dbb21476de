package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-news-feed/internal/pipeline/config"
	"ai-news-feed/internal/pipeline/normalizer"
	"ai-news-feed/internal/pipeline/repository"
	"ai-news-feed/internal/pipeline/scraper"
	"ai-news-feed/internal/pipeline/service"
	"ai-news-feed/internal/report"
	"ai-news-feed/pkg/logger"
	"ai-news-feed/pkg/postgres"
	"ai-news-feed/pkg/redis"
	"ai-news-feed/pkg/telegram"

	"google.golang.org/genai"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs one full ingestion cycle and exits",
	Run:   runOnce,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Runs the ingestion cycle on a cron schedule",
	Run:   runSchedule,
}

func runOnce(cmd *cobra.Command, args []string) {
	app, cleanup := buildApp()
	defer cleanup()

	if err := app.runPipeline(context.Background()); err != nil {
		app.logger.Fatal("Pipeline run failed", zap.Error(err))
	}
}

func runSchedule(cmd *cobra.Command, args []string) {
	app, cleanup := buildApp()
	defer cleanup()

	schedule := app.cfg.Pipeline.CronSchedule
	if schedule == "" {
		schedule = "0 6 * * *"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := app.runPipeline(ctx); err != nil {
			app.logger.Error("Scheduled pipeline run failed", zap.Error(err))
		}
	})
	if err != nil {
		app.logger.Fatal("Invalid cron schedule", zap.String("schedule", schedule), zap.Error(err))
	}
	c.Start()

	app.logger.Info("Pipeline scheduler started", zap.String("schedule", schedule))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.logger.Info("Shutting down pipeline scheduler...")
	cancel()
	<-c.Stop().Done()
	app.logger.Info("Pipeline scheduler stopped.")
}

type pipelineApp struct {
	cfg      *config.Config
	logger   *logger.Logger
	pipeline service.PipelineService
	reporter *report.Generator
}

func (a *pipelineApp) runPipeline(ctx context.Context) error {
	summary, articles, err := a.pipeline.Run(ctx)
	if err != nil {
		return err
	}
	if summary.Persisted == 0 || a.cfg.Pipeline.OutputDir == "" {
		return nil
	}
	if err := a.reporter.WriteAll(a.cfg.Pipeline.OutputDir, articles); err != nil {
		a.logger.Error("Failed to write reports", zap.Error(err))
	}
	return nil
}

func buildApp() (*pipelineApp, func()) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger.Info("Starting Pipeline Service", zap.String("name", cfg.App.Name))

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
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}

	var redisClient *redis.Client
	var seenCache *repository.SeenLinkCache
	if cfg.Redis.Enabled {
		redisCfg := redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}
		redisClient, err = redis.NewClient(redisCfg)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without seen-link cache", zap.Error(err))
		} else {
			seenCache = repository.NewSeenLinkCache(redisClient.Client)
		}
	}

	articleRepo := repository.NewArticleRepository(db.DB, cfg.Storage.LookupChunkSize, cfg.Storage.UpsertChunkSize)
	aiRepo := newAIRepository(cfg, appLogger)

	var notifier telegram.Notifier = telegram.NoopNotifier{}
	if cfg.Telegram.Enabled {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", zap.Error(err))
		}
	}

	scrapers := []scraper.Scraper{
		scraper.NewArxivScraper(cfg.Arxiv, appLogger),
		scraper.NewRSSScraper(cfg.RSS, appLogger),
	}
	if cfg.Serper.APIKey != "" {
		scrapers = append(scrapers, scraper.NewSerperScraper(cfg.Serper, appLogger))
	}

	pipelineSvc := service.NewPipelineService(
		cfg,
		scrapers,
		normalizer.New(appLogger),
		service.NewDeduplicator(articleRepo, seenCache, appLogger),
		service.NewEnricher(aiRepo, cfg.Enrichment, appLogger),
		articleRepo,
		seenCache,
		notifier,
		appLogger,
	)

	app := &pipelineApp{
		cfg:      cfg,
		logger:   appLogger,
		pipeline: pipelineSvc,
		reporter: report.NewGenerator(appLogger),
	}
	cleanup := func() {
		if sqlDB, err := db.DB.DB(); err == nil {
			sqlDB.Close()
		}
		if redisClient != nil {
			redisClient.Close()
		}
		_ = appLogger.Sync()
	}
	return app, cleanup
}

func newAIRepository(cfg *config.Config, appLogger *logger.Logger) repository.AIRepository {
	switch cfg.AI.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", zap.Error(err))
		}
		repo, err := repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI repository", zap.Error(err))
		}
		return repo
	case "openrouter":
		return repository.NewOpenRouterRepository(cfg, appLogger)
	default:
		appLogger.Fatal("Invalid AI provider specified in config", zap.String("provider", cfg.AI.Provider))
		return nil
	}
}

func main() {
	rootCmd := &cobra.Command{Use: "pipeline"}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-pipeline.yaml", "Path to the configuration file")

	rootCmd.AddCommand(runCmd, scheduleCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing pipeline CLI: %s\n", err)
		os.Exit(1)
	}
}
