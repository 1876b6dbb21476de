package service

import (
	"context"
	"fmt"

	"ai-news-feed/internal/entity"
	"ai-news-feed/internal/pipeline/repository"
	"ai-news-feed/pkg/logger"
)

// Deduplicator removes duplicates within a run and filters out links the
// store already holds.
type Deduplicator struct {
	repo   repository.ArticleRepository
	cache  *repository.SeenLinkCache
	logger *logger.Logger
}

// NewDeduplicator creates a Deduplicator. cache may be nil, in which case
// only the store is consulted.
func NewDeduplicator(repo repository.ArticleRepository, cache *repository.SeenLinkCache, log *logger.Logger) *Deduplicator {
	return &Deduplicator{repo: repo, cache: cache, logger: log}
}

// Dedup merges same-link candidates within the run (keeping the one with
// non-empty content, first-seen on ties) and then drops links already in
// the store. Input links must already be canonical.
func (d *Deduplicator) Dedup(ctx context.Context, articles []entity.Article) ([]entity.Article, error) {
	merged := d.mergeIntraRun(articles)
	if len(merged) == 0 {
		return merged, nil
	}

	links := make([]string, len(merged))
	for i, a := range merged {
		links[i] = a.Link
	}

	seen := d.cachedLinks(ctx, links)

	var unknown []string
	for _, link := range links {
		if !seen[link] {
			unknown = append(unknown, link)
		}
	}
	if len(unknown) > 0 {
		existing, err := d.repo.FindExistingLinks(ctx, unknown)
		if err != nil {
			return nil, fmt.Errorf("failed to check persisted links: %w", err)
		}
		for link := range existing {
			seen[link] = true
		}
	}

	fresh := make([]entity.Article, 0, len(merged))
	for _, article := range merged {
		if seen[article.Link] {
			continue
		}
		fresh = append(fresh, article)
	}

	d.logger.Info("Deduplicated articles",
		logger.IntField("candidates", len(articles)),
		logger.IntField("after_intra_run", len(merged)),
		logger.IntField("new", len(fresh)),
	)
	return fresh, nil
}

// mergeIntraRun keeps one representative per canonical link, preserving
// first-seen order. A later candidate replaces the representative only
// when it brings content the representative lacks.
func (d *Deduplicator) mergeIntraRun(articles []entity.Article) []entity.Article {
	index := make(map[string]int, len(articles))
	merged := make([]entity.Article, 0, len(articles))
	for _, article := range articles {
		pos, ok := index[article.Link]
		if !ok {
			index[article.Link] = len(merged)
			merged = append(merged, article)
			continue
		}
		if merged[pos].Content == "" && article.Content != "" {
			merged[pos] = article
		}
	}
	return merged
}

// cachedLinks consults the optional Redis set; any error degrades to an
// empty result so the store lookup still runs.
func (d *Deduplicator) cachedLinks(ctx context.Context, links []string) map[string]bool {
	if d.cache == nil {
		return map[string]bool{}
	}
	seen, err := d.cache.Contains(ctx, links)
	if err != nil {
		d.logger.Warn("Seen-link cache unavailable, falling back to store lookup", logger.ErrorField(err))
		return map[string]bool{}
	}
	return seen
}
