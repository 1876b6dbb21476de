package config

import (
	"time"

	"ai-news-feed/pkg/config"
)

// Pipeline holds run-level settings for the daily batch.
type Pipeline struct {
	DaysAgo               int           `mapstructure:"days_ago"`
	RunTimeout            time.Duration `mapstructure:"run_timeout"`
	AdapterTimeout        time.Duration `mapstructure:"adapter_timeout"`
	MaxConcurrentScrapers int           `mapstructure:"max_concurrent_scrapers"`
	OutputDir             string        `mapstructure:"output_dir"`
	CronSchedule          string        `mapstructure:"cron_schedule"`
}

// Arxiv holds the paper-index adapter settings.
type Arxiv struct {
	BaseURL               string   `mapstructure:"base_url"`
	Categories            []string `mapstructure:"categories"`
	MaxResultsPerCategory int      `mapstructure:"max_results_per_category"`
}

// RSSFeed is a single configured feed.
type RSSFeed struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// RSS holds the RSS adapter settings.
type RSS struct {
	Feeds             []RSSFeed `mapstructure:"feeds"`
	MaxEntriesPerFeed int       `mapstructure:"max_entries_per_feed"`
	FetchFullContent  bool      `mapstructure:"fetch_full_content"`
}

// Serper holds the news-search adapter settings.
type Serper struct {
	APIKey     string   `mapstructure:"api_key"`
	BaseURL    string   `mapstructure:"base_url"`
	Queries    []string `mapstructure:"queries"`
	MaxResults int      `mapstructure:"max_results"`
}

// Enrichment holds batcher settings for the LLM stage.
type Enrichment struct {
	BatchSize            int           `mapstructure:"batch_size"`
	MaxConcurrentBatches int           `mapstructure:"max_concurrent_batches"`
	MaxAttempts          int           `mapstructure:"max_attempts"`
	RetryBaseDelay       time.Duration `mapstructure:"retry_base_delay"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout"`
}

// Storage holds chunk sizes for store lookups and writes.
type Storage struct {
	LookupChunkSize int `mapstructure:"lookup_chunk_size"`
	UpsertChunkSize int `mapstructure:"upsert_chunk_size"`
}

// AI selects the enrichment provider.
type AI struct {
	Provider string `mapstructure:"provider"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// OpenRouter holds the configuration for the OpenRouter API.
type OpenRouter struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Config holds the full configuration for the pipeline service.
type Config struct {
	App        config.App      `mapstructure:"app"`
	Logger     config.Logger   `mapstructure:"logger"`
	Database   config.Database `mapstructure:"database"`
	Redis      config.Redis    `mapstructure:"redis"`
	Telegram   config.Telegram `mapstructure:"telegram"`
	Pipeline   Pipeline        `mapstructure:"pipeline"`
	Arxiv      Arxiv           `mapstructure:"arxiv"`
	RSS        RSS             `mapstructure:"rss"`
	Serper     Serper          `mapstructure:"serper"`
	Enrichment Enrichment      `mapstructure:"enrichment"`
	Storage    Storage         `mapstructure:"storage"`
	AI         AI              `mapstructure:"ai"`
	Gemini     Gemini          `mapstructure:"gemini"`
	OpenRouter OpenRouter      `mapstructure:"openrouter"`
}

// Load loads the pipeline configuration from the given path and applies
// defaults for unset tuning knobs.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Pipeline.DaysAgo <= 0 {
		c.Pipeline.DaysAgo = 1
	}
	if c.Pipeline.RunTimeout <= 0 {
		c.Pipeline.RunTimeout = 30 * time.Minute
	}
	if c.Pipeline.AdapterTimeout <= 0 {
		c.Pipeline.AdapterTimeout = 2 * time.Minute
	}
	if c.Pipeline.MaxConcurrentScrapers <= 0 {
		c.Pipeline.MaxConcurrentScrapers = 3
	}
	if c.Arxiv.BaseURL == "" {
		c.Arxiv.BaseURL = "https://export.arxiv.org/api/query"
	}
	if c.Arxiv.MaxResultsPerCategory <= 0 {
		c.Arxiv.MaxResultsPerCategory = 20
	}
	if c.RSS.MaxEntriesPerFeed <= 0 {
		c.RSS.MaxEntriesPerFeed = 100
	}
	if c.Serper.BaseURL == "" {
		c.Serper.BaseURL = "https://google.serper.dev/news"
	}
	if c.Serper.MaxResults <= 0 {
		c.Serper.MaxResults = 10
	}
	if c.Enrichment.BatchSize <= 0 {
		c.Enrichment.BatchSize = 10
	}
	if c.Enrichment.MaxConcurrentBatches <= 0 {
		c.Enrichment.MaxConcurrentBatches = 2
	}
	if c.Enrichment.MaxAttempts <= 0 {
		c.Enrichment.MaxAttempts = 3
	}
	if c.Enrichment.RetryBaseDelay <= 0 {
		c.Enrichment.RetryBaseDelay = 2 * time.Second
	}
	if c.Enrichment.RequestTimeout <= 0 {
		c.Enrichment.RequestTimeout = 90 * time.Second
	}
	if c.Gemini.MaxRequestPerMinute <= 0 {
		c.Gemini.MaxRequestPerMinute = 10
	}
	if c.Gemini.MaxTokenPerMinute <= 0 {
		c.Gemini.MaxTokenPerMinute = 1_000_000
	}
	if c.Storage.LookupChunkSize <= 0 {
		c.Storage.LookupChunkSize = 200
	}
	if c.Storage.UpsertChunkSize <= 0 {
		c.Storage.UpsertChunkSize = 100
	}
}
