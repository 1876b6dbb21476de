package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-news-feed/internal/entity"
	"ai-news-feed/internal/pipeline/config"
	"ai-news-feed/internal/pipeline/normalizer"
	"ai-news-feed/internal/pipeline/scraper"
	"ai-news-feed/pkg/telegram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	name     string
	articles []entity.Article
	err      error
}

func (f *fakeScraper) Name() string { return f.name }

func (f *fakeScraper) Fetch(ctx context.Context, window scraper.FetchWindow) ([]entity.Article, error) {
	return f.articles, f.err
}

func testPipelineConfig() *config.Config {
	return &config.Config{
		Pipeline: config.Pipeline{
			DaysAgo:               1,
			RunTimeout:            time.Minute,
			AdapterTimeout:        10 * time.Second,
			MaxConcurrentScrapers: 3,
		},
		Enrichment: config.Enrichment{
			BatchSize:            10,
			MaxConcurrentBatches: 2,
			MaxAttempts:          2,
			RetryBaseDelay:       time.Millisecond,
		},
	}
}

func newTestPipeline(t *testing.T, cfg *config.Config, repo *fakeArticleRepo, ai *fakeAIRepo, scrapers ...scraper.Scraper) PipelineService {
	t.Helper()
	log := testLogger(t)
	return NewPipelineService(
		cfg,
		scrapers,
		normalizer.New(log),
		NewDeduplicator(repo, nil, log),
		NewEnricher(ai, cfg.Enrichment, log),
		repo,
		nil,
		telegram.NoopNotifier{},
		log,
	)
}

func TestPipelineRunEndToEnd(t *testing.T) {
	now := time.Now().UTC()
	repo := newFakeArticleRepo()
	ai := &fakeAIRepo{}

	svc := newTestPipeline(t, testPipelineConfig(), repo, ai,
		&fakeScraper{name: "feeds", articles: []entity.Article{
			{Title: "one", Link: "https://a.com/1", Published: now, Source: entity.SourceRSS, Content: "text"},
			{Title: "dup", Link: "https://a.com/1", Published: now, Source: entity.SourceRSS},
		}},
		&fakeScraper{name: "papers", articles: []entity.Article{
			{Title: "two", Link: "https://b.com/2", Published: now, Source: entity.SourcePaperIndex},
		}},
	)

	summary, articles, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Fetched)
	assert.Equal(t, 1, summary.Deduplicated)
	assert.Equal(t, 2, summary.Enriched)
	assert.Equal(t, 2, summary.Persisted)
	assert.Len(t, articles, 2)
	assert.Len(t, repo.upserted, 2)
}

func TestPipelineRunSurvivesFailingAdapter(t *testing.T) {
	now := time.Now().UTC()
	repo := newFakeArticleRepo()

	svc := newTestPipeline(t, testPipelineConfig(), repo, &fakeAIRepo{},
		&fakeScraper{name: "broken", err: errors.New("upstream down")},
		&fakeScraper{name: "working", articles: []entity.Article{
			{Title: "ok", Link: "https://a.com/ok", Published: now, Source: entity.SourceRSS},
		}},
	)

	summary, _, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Fetched)
	assert.Equal(t, 1, summary.Persisted)
}

func TestPipelineRunExcludesInvalidArticles(t *testing.T) {
	now := time.Now().UTC()
	repo := newFakeArticleRepo()

	svc := newTestPipeline(t, testPipelineConfig(), repo, &fakeAIRepo{},
		&fakeScraper{name: "feeds", articles: []entity.Article{
			{Title: "", Link: "https://a.com/no-title", Published: now, Source: entity.SourceRSS},
			{Title: "ok", Link: "https://a.com/ok", Published: now, Source: entity.SourceRSS},
		}},
	)

	summary, _, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Invalid)
	assert.Equal(t, 1, summary.Persisted)
}

func TestPipelineRunEmptyFetch(t *testing.T) {
	repo := newFakeArticleRepo()
	svc := newTestPipeline(t, testPipelineConfig(), repo, &fakeAIRepo{},
		&fakeScraper{name: "empty"},
	)

	summary, articles, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Fetched)
	assert.Empty(t, articles)
	assert.Empty(t, repo.upserted)
}

func TestPipelineRunPropagatesUpsertErrors(t *testing.T) {
	now := time.Now().UTC()
	repo := newFakeArticleRepo()
	repo.upsertErr = errors.New("store down")

	svc := newTestPipeline(t, testPipelineConfig(), repo, &fakeAIRepo{},
		&fakeScraper{name: "feeds", articles: []entity.Article{
			{Title: "ok", Link: "https://a.com/ok", Published: now, Source: entity.SourceRSS},
		}},
	)

	_, _, err := svc.Run(context.Background())
	assert.Error(t, err)
}
