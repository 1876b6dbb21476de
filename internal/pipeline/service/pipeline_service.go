package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"ai-news-feed/internal/entity"
	"ai-news-feed/internal/pipeline/config"
	"ai-news-feed/internal/pipeline/normalizer"
	"ai-news-feed/internal/pipeline/repository"
	"ai-news-feed/internal/pipeline/scraper"
	"ai-news-feed/pkg/logger"
	"ai-news-feed/pkg/telegram"
	"ai-news-feed/pkg/utils"
)

// RunSummary is the per-run accounting reported in logs and in the
// notification digest.
type RunSummary struct {
	Fetched      int
	Normalized   int
	Deduplicated int
	Invalid      int
	Enriched     int
	RawFallback  int
	Persisted    int
	Failed       int
	Duration     time.Duration
}

// PipelineService runs one full ingestion cycle: fetch from every adapter,
// normalize, deduplicate, enrich, persist.
type PipelineService interface {
	Run(ctx context.Context) (*RunSummary, []entity.Article, error)
}

type pipelineService struct {
	cfg          *config.Config
	scrapers     []scraper.Scraper
	normalizer   *normalizer.Normalizer
	deduplicator *Deduplicator
	enricher     *Enricher
	articleRepo  repository.ArticleRepository
	seenCache    *repository.SeenLinkCache
	notifier     telegram.Notifier
	logger       *logger.Logger
}

// NewPipelineService creates the service. seenCache may be nil when the
// cache tier is disabled.
func NewPipelineService(
	cfg *config.Config,
	scrapers []scraper.Scraper,
	norm *normalizer.Normalizer,
	dedup *Deduplicator,
	enricher *Enricher,
	articleRepo repository.ArticleRepository,
	seenCache *repository.SeenLinkCache,
	notifier telegram.Notifier,
	log *logger.Logger,
) PipelineService {
	return &pipelineService{
		cfg:          cfg,
		scrapers:     scrapers,
		normalizer:   norm,
		deduplicator: dedup,
		enricher:     enricher,
		articleRepo:  articleRepo,
		seenCache:    seenCache,
		notifier:     notifier,
		logger:       log,
	}
}

func (s *pipelineService) Run(ctx context.Context) (*RunSummary, []entity.Article, error) {
	started := utils.TimeNowUTC()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Pipeline.RunTimeout)
	defer cancel()

	summary := &RunSummary{}

	fetched := s.fetchAll(ctx)
	summary.Fetched = len(fetched)
	if len(fetched) == 0 {
		summary.Duration = time.Since(started)
		s.logger.Warn("No articles fetched from any source")
		s.notify(summary)
		return summary, nil, nil
	}

	normalized := s.normalizer.Normalize(fetched, s.cfg.Pipeline.DaysAgo)
	summary.Normalized = len(normalized)

	fresh, err := s.deduplicator.Dedup(ctx, normalized)
	if err != nil {
		return summary, nil, fmt.Errorf("deduplication failed: %w", err)
	}
	summary.Deduplicated = len(normalized) - len(fresh)

	valid := make([]entity.Article, 0, len(fresh))
	for _, article := range fresh {
		if err := ValidateArticle(article); err != nil {
			summary.Invalid++
			s.logger.Warn("Excluding invalid article", logger.ErrorField(err))
			continue
		}
		valid = append(valid, article)
	}

	outcome := s.enricher.EnrichAll(ctx, valid)
	summary.Enriched = outcome.Enriched
	summary.RawFallback = outcome.RawFallback

	result, err := s.articleRepo.UpsertArticles(ctx, outcome.Articles)
	if err != nil {
		return summary, nil, fmt.Errorf("persisting articles failed: %w", err)
	}
	summary.Persisted = result.Persisted
	for _, failure := range result.Failed {
		summary.Failed += len(failure.Links)
		s.logger.Error("Chunk of articles failed to persist",
			logger.IntField("count", len(failure.Links)), logger.ErrorField(failure.Err))
	}

	s.markSeen(ctx, outcome.Articles, result)
	summary.Duration = time.Since(started)

	s.logger.Info("Pipeline run finished",
		logger.IntField("fetched", summary.Fetched),
		logger.IntField("normalized", summary.Normalized),
		logger.IntField("deduplicated", summary.Deduplicated),
		logger.IntField("invalid", summary.Invalid),
		logger.IntField("enriched", summary.Enriched),
		logger.IntField("raw_fallback", summary.RawFallback),
		logger.IntField("persisted", summary.Persisted),
		logger.IntField("failed", summary.Failed),
		logger.DurationField("duration", summary.Duration))

	s.notify(summary)
	return summary, outcome.Articles, nil
}

// fetchAll runs every adapter concurrently under a per-adapter timeout.
// A failing adapter is logged and skipped; the rest of the run proceeds
// with whatever was fetched.
func (s *pipelineService) fetchAll(ctx context.Context) []entity.Article {
	window := scraper.FetchWindow{
		Start: utils.TimeNowUTC().AddDate(0, 0, -s.cfg.Pipeline.DaysAgo),
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		articles []entity.Article
	)
	semaphore := make(chan struct{}, s.cfg.Pipeline.MaxConcurrentScrapers)

	for _, sc := range s.scrapers {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		sc := sc
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			adapterCtx, cancel := context.WithTimeout(ctx, s.cfg.Pipeline.AdapterTimeout)
			defer cancel()

			fetched, err := sc.Fetch(adapterCtx, window)
			if err != nil {
				s.logger.Error("Adapter failed",
					logger.StringField("adapter", sc.Name()), logger.ErrorField(err))
			}
			if len(fetched) == 0 {
				return
			}
			s.logger.Info("Adapter finished",
				logger.StringField("adapter", sc.Name()), logger.IntField("articles", len(fetched)))

			mu.Lock()
			articles = append(articles, fetched...)
			mu.Unlock()
		})
	}
	wg.Wait()
	return articles
}

// markSeen records persisted links in the seen-link cache. Links from
// failed chunks are left out so a later run retries them.
func (s *pipelineService) markSeen(ctx context.Context, articles []entity.Article, result *repository.UpsertResult) {
	if s.seenCache == nil || len(articles) == 0 {
		return
	}

	failedLinks := make(map[string]bool)
	for _, failure := range result.Failed {
		for _, link := range failure.Links {
			failedLinks[link] = true
		}
	}

	links := make([]string, 0, len(articles))
	for _, article := range articles {
		if !failedLinks[article.Link] {
			links = append(links, article.Link)
		}
	}
	if err := s.seenCache.Add(ctx, links); err != nil {
		s.logger.Warn("Failed to record links in seen cache", logger.ErrorField(err))
	}
}

func (s *pipelineService) notify(summary *RunSummary) {
	if s.notifier == nil {
		return
	}

	var b strings.Builder
	b.WriteString("*AI News Pipeline*\n")
	b.WriteString(fmt.Sprintf("Fetched: %d\n", summary.Fetched))
	b.WriteString(fmt.Sprintf("Duplicates skipped: %d\n", summary.Deduplicated))
	b.WriteString(fmt.Sprintf("Enriched: %d (raw: %d)\n", summary.Enriched, summary.RawFallback))
	b.WriteString(fmt.Sprintf("Persisted: %d\n", summary.Persisted))
	if summary.Failed > 0 {
		b.WriteString(fmt.Sprintf("Failed: %d\n", summary.Failed))
	}
	b.WriteString(fmt.Sprintf("Duration: %s", summary.Duration.Round(time.Second)))

	if err := s.notifier.SendMessage(b.String()); err != nil {
		s.logger.Warn("Failed to send run digest", logger.ErrorField(err))
	}
}
