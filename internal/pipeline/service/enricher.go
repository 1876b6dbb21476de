package service

import (
	"context"
	"sync"

	"ai-news-feed/internal/entity"
	"ai-news-feed/internal/pipeline/config"
	"ai-news-feed/internal/pipeline/dto"
	"ai-news-feed/internal/pipeline/repository"
	"ai-news-feed/pkg/logger"
	"ai-news-feed/pkg/retry"
	"ai-news-feed/pkg/utils"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// EnrichOutcome reports what the enrichment stage did with the input set.
// Every input article comes back out: enriched when the engine delivered,
// raw-fallback (empty enrichment fields) when it did not.
type EnrichOutcome struct {
	Articles    []entity.Article
	Enriched    int
	RawFallback int
}

// Enricher batches articles through the enrichment engine with bounded
// concurrency and bounded retries.
type Enricher struct {
	aiRepo repository.AIRepository
	cfg    config.Enrichment
	logger *logger.Logger
}

// NewEnricher creates an Enricher.
func NewEnricher(aiRepo repository.AIRepository, cfg config.Enrichment, log *logger.Logger) *Enricher {
	return &Enricher{aiRepo: aiRepo, cfg: cfg, logger: log}
}

// EnrichAll partitions articles into fixed-size batches and processes them
// on a capped worker pool. A batch whose retries exhaust is kept raw; the
// readability score is always computed locally and never fails a batch.
func (e *Enricher) EnrichAll(ctx context.Context, articles []entity.Article) EnrichOutcome {
	if len(articles) == 0 {
		return EnrichOutcome{}
	}

	batches := utils.Chunk(articles, e.cfg.BatchSize)
	results := make([][]entity.Article, len(batches))
	enrichedCounts := make([]int, len(batches))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.cfg.MaxConcurrentBatches)
	for i := range batches {
		if !utils.ShouldContinue(ctx, e.logger) {
			results[i] = rawFallback(batches[i])
			continue
		}

		i := i
		batch := batches[i]
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[i], enrichedCounts[i] = e.enrichBatch(ctx, batch)
		})
	}
	wg.Wait()

	outcome := EnrichOutcome{Articles: make([]entity.Article, 0, len(articles))}
	for i, batch := range results {
		outcome.Articles = append(outcome.Articles, batch...)
		outcome.Enriched += enrichedCounts[i]
		outcome.RawFallback += len(batch) - enrichedCounts[i]
	}
	return outcome
}

// enrichBatch runs one batch through the engine with retry/backoff and
// merges whatever came back. Articles the engine skipped within an
// otherwise successful response stay raw without a batch retry.
func (e *Enricher) enrichBatch(ctx context.Context, batch []entity.Article) ([]entity.Article, int) {
	out := make([]entity.Article, len(batch))
	copy(out, batch)
	for i := range out {
		out[i].ReadabilityScore = ReadabilityScore(out[i].Content)
	}

	var enrichments []dto.ArticleEnrichment
	err := retry.Do(ctx, e.cfg.MaxAttempts, e.cfg.RetryBaseDelay, func(ctx context.Context) error {
		var callErr error
		enrichments, callErr = e.aiRepo.EnrichBatch(ctx, batch)
		return callErr
	})
	if err != nil {
		e.logger.Error("Enrichment failed for batch, persisting raw",
			logger.IntField("batch_size", len(batch)), logger.ErrorField(err))
		for i := range out {
			out[i].EnsureDefaults()
		}
		return out, 0
	}

	enriched := 0
	applied := make([]bool, len(out))
	for _, enrichment := range enrichments {
		if enrichment.Index < 0 || enrichment.Index >= len(out) || applied[enrichment.Index] {
			e.logger.Warn("Enrichment result with invalid index",
				logger.IntField("index", enrichment.Index), logger.IntField("batch_size", len(out)))
			continue
		}
		mergeEnrichment(&out[enrichment.Index], enrichment)
		applied[enrichment.Index] = true
		enriched++
	}
	for i := range out {
		out[i].EnsureDefaults()
	}

	return out, enriched
}

// mergeEnrichment copies returned fields onto the article. Missing fields
// stay empty; EnsureDefaults later replaces nils with empty collections.
func mergeEnrichment(article *entity.Article, enrichment dto.ArticleEnrichment) {
	if enrichment.Summary != "" {
		article.Summary = enrichment.Summary
	}
	article.SummaryZH = enrichment.SummaryZH
	if len(enrichment.Tags) > 0 {
		article.Tags = pq.StringArray(enrichment.Tags)
	}
	article.MainTags = pq.StringArray(enrichment.MainTags)
	article.KeyPoints = pq.StringArray(enrichment.KeyPoints)
	article.TrendTag = enrichment.TrendTag
	article.HeatScore = enrichment.HeatScore

	if len(enrichment.Entities) > 0 {
		entities := datatypes.JSONMap{}
		for category, names := range enrichment.Entities {
			entities[category] = names
		}
		article.Entities = entities
	}
	if enrichment.Sentiment.Label != "" {
		article.Sentiment = datatypes.JSONMap{
			"label": enrichment.Sentiment.Label,
			"score": enrichment.Sentiment.Score,
		}
	}
}

func rawFallback(batch []entity.Article) []entity.Article {
	out := make([]entity.Article, len(batch))
	copy(out, batch)
	for i := range out {
		out[i].ReadabilityScore = ReadabilityScore(out[i].Content)
		out[i].EnsureDefaults()
	}
	return out
}
