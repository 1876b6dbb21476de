package service

import (
	"context"
	"testing"
	"time"

	"ai-news-feed/internal/entity"
	"ai-news-feed/internal/pipeline/config"
	"ai-news-feed/internal/pipeline/dto"
	"ai-news-feed/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enrichmentConfig() config.Enrichment {
	return config.Enrichment{
		BatchSize:            2,
		MaxConcurrentBatches: 2,
		MaxAttempts:          3,
		RetryBaseDelay:       time.Millisecond,
	}
}

func TestEnrichAllAppliesResults(t *testing.T) {
	ai := &fakeAIRepo{}
	e := NewEnricher(ai, enrichmentConfig(), testLogger(t))

	articles := []entity.Article{
		{Title: "one", Link: "https://a.com/1", Content: "Some readable content here."},
		{Title: "two", Link: "https://a.com/2", Content: "More readable content here."},
	}

	out := e.EnrichAll(context.Background(), articles)
	require.Len(t, out.Articles, 2)
	assert.Equal(t, 2, out.Enriched)
	assert.Equal(t, 0, out.RawFallback)

	assert.Equal(t, "summary of one", out.Articles[0].Summary)
	assert.Equal(t, []string{"ai"}, []string(out.Articles[0].Tags))
	assert.Greater(t, out.Articles[0].ReadabilityScore, 0.0)
}

func TestEnrichAllRetriesTransientFailures(t *testing.T) {
	ai := &fakeAIRepo{failFirst: 2}
	cfg := enrichmentConfig()
	cfg.BatchSize = 10
	e := NewEnricher(ai, cfg, testLogger(t))

	out := e.EnrichAll(context.Background(), []entity.Article{
		{Title: "one", Link: "https://a.com/1"},
	})
	assert.Equal(t, 1, out.Enriched)
	assert.Equal(t, 3, ai.calls)
}

func TestEnrichAllFallsBackToRawOnExhaustion(t *testing.T) {
	ai := &fakeAIRepo{err: errTemporary}
	e := NewEnricher(ai, enrichmentConfig(), testLogger(t))

	out := e.EnrichAll(context.Background(), []entity.Article{
		{Title: "one", Link: "https://a.com/1", Content: "text"},
	})
	require.Len(t, out.Articles, 1)
	assert.Equal(t, 0, out.Enriched)
	assert.Equal(t, 1, out.RawFallback)

	// Raw rows still carry a readability score and empty collections.
	raw := out.Articles[0]
	assert.Greater(t, raw.ReadabilityScore, 0.0)
	assert.NotNil(t, raw.Tags)
	assert.NotNil(t, raw.Entities)
	assert.Empty(t, raw.Summary)
}

func TestEnrichAllDoesNotRetryPermanentErrors(t *testing.T) {
	ai := &fakeAIRepo{err: retry.Permanent(errTemporary)}
	e := NewEnricher(ai, enrichmentConfig(), testLogger(t))

	out := e.EnrichAll(context.Background(), []entity.Article{
		{Title: "one", Link: "https://a.com/1"},
	})
	assert.Equal(t, 1, out.RawFallback)
	assert.Equal(t, 1, ai.calls)
}

func TestEnrichAllIgnoresInvalidIndexes(t *testing.T) {
	ai := &fakeAIRepo{
		enrichments: func(articles []entity.Article) []dto.ArticleEnrichment {
			return []dto.ArticleEnrichment{
				{Index: 0, Summary: "ok"},
				{Index: 7, Summary: "out of range"},
				{Index: -1, Summary: "negative"},
			}
		},
	}
	cfg := enrichmentConfig()
	cfg.BatchSize = 10
	e := NewEnricher(ai, cfg, testLogger(t))

	out := e.EnrichAll(context.Background(), []entity.Article{
		{Title: "one", Link: "https://a.com/1"},
		{Title: "two", Link: "https://a.com/2"},
	})
	require.Len(t, out.Articles, 2)
	assert.Equal(t, 1, out.Enriched)
	assert.Equal(t, 1, out.RawFallback)
	assert.Equal(t, "ok", out.Articles[0].Summary)
	assert.Empty(t, out.Articles[1].Summary)
}

func TestEnrichAllAcceptsPartialFields(t *testing.T) {
	ai := &fakeAIRepo{
		enrichments: func(articles []entity.Article) []dto.ArticleEnrichment {
			return []dto.ArticleEnrichment{{
				Index:     0,
				Summary:   "only summary and sentiment",
				Sentiment: dto.SentimentResult{Label: "positive", Score: 0.9},
			}}
		},
	}
	cfg := enrichmentConfig()
	cfg.BatchSize = 10
	e := NewEnricher(ai, cfg, testLogger(t))

	out := e.EnrichAll(context.Background(), []entity.Article{
		{Title: "one", Link: "https://a.com/1"},
	})
	require.Len(t, out.Articles, 1)
	got := out.Articles[0]
	assert.Equal(t, "only summary and sentiment", got.Summary)
	assert.Equal(t, "positive", got.Sentiment["label"])
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.KeyPoints)
}

func TestEnrichAllEmptyInput(t *testing.T) {
	e := NewEnricher(&fakeAIRepo{}, enrichmentConfig(), testLogger(t))
	out := e.EnrichAll(context.Background(), nil)
	assert.Empty(t, out.Articles)
}
