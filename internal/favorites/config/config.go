package config

import (
	"time"

	pipelinecfg "ai-news-feed/internal/pipeline/config"
	"ai-news-feed/pkg/config"
)

// Config holds the full configuration for the favorites API service. The
// AI sections match the pipeline's so both services talk to the same
// enrichment provider.
type Config struct {
	App        config.App            `mapstructure:"app"`
	Logger     config.Logger         `mapstructure:"logger"`
	Database   config.Database       `mapstructure:"database"`
	API        config.API            `mapstructure:"api"`
	Storage    pipelinecfg.Storage    `mapstructure:"storage"`
	AI         pipelinecfg.AI         `mapstructure:"ai"`
	Gemini     pipelinecfg.Gemini     `mapstructure:"gemini"`
	OpenRouter pipelinecfg.OpenRouter `mapstructure:"openrouter"`
	Enrichment pipelinecfg.Enrichment `mapstructure:"enrichment"`
}

// Load loads the favorites API configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = 8080
	}
	if cfg.Storage.LookupChunkSize <= 0 {
		cfg.Storage.LookupChunkSize = 200
	}
	if cfg.Storage.UpsertChunkSize <= 0 {
		cfg.Storage.UpsertChunkSize = 100
	}
	if cfg.Enrichment.RequestTimeout <= 0 {
		cfg.Enrichment.RequestTimeout = 90 * time.Second
	}
	if cfg.Gemini.MaxRequestPerMinute <= 0 {
		cfg.Gemini.MaxRequestPerMinute = 10
	}
	if cfg.Gemini.MaxTokenPerMinute <= 0 {
		cfg.Gemini.MaxTokenPerMinute = 1_000_000
	}
	return &cfg, nil
}
