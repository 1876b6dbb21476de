package repository

import (
	"context"
	"fmt"
	"time"

	"ai-news-feed/internal/entity"
	"ai-news-feed/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertColumns is the update set applied on link conflict. Identity,
// creation audit, and user-state columns are deliberately absent so a
// daily re-run cannot clobber them.
var upsertColumns = []string{
	"title", "published", "source", "content", "summary", "language", "image_url",
	"tags", "main_tags", "authors", "key_points", "entities", "sentiment",
	"summary_zh", "trend_tag", "heat_score", "readability_score", "updated_at",
}

// ChunkFailure identifies one failed write chunk and its record keys.
type ChunkFailure struct {
	Links []string
	Err   error
}

// UpsertResult reports a chunked write: how many records were persisted
// and which chunks failed.
type UpsertResult struct {
	Persisted int
	Failed    []ChunkFailure
}

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	FindExistingLinks(ctx context.Context, links []string) (map[string]bool, error)
	UpsertArticles(ctx context.Context, articles []entity.Article) (*UpsertResult, error)
	FindByID(ctx context.Context, id uint) (*entity.Article, error)
	FindRecent(ctx context.Context, limit, daysAgo int) ([]entity.Article, error)
	UpdateFavorite(ctx context.Context, id uint, analysis, plainSummary string) error
}

type articleRepository struct {
	db              *gorm.DB
	lookupChunkSize int
	upsertChunkSize int

	// Per-chunk store operations, swappable in tests.
	lookupChunk func(ctx context.Context, links []string) ([]string, error)
	writeChunk  func(ctx context.Context, batch []entity.Article) error
}

// NewArticleRepository creates an ArticleRepository with the given chunk
// sizes for existence lookups and writes.
func NewArticleRepository(db *gorm.DB, lookupChunkSize, upsertChunkSize int) ArticleRepository {
	r := &articleRepository{
		db:              db,
		lookupChunkSize: lookupChunkSize,
		upsertChunkSize: upsertChunkSize,
	}
	r.lookupChunk = r.lookupLinkChunk
	r.writeChunk = r.writeArticleChunk
	return r
}

// FindExistingLinks returns the subset of links already present, queried
// in bounded `link IN (...)` chunks.
func (r *articleRepository) FindExistingLinks(ctx context.Context, links []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(links))
	for _, chunk := range utils.Chunk(links, r.lookupChunkSize) {
		found, err := r.lookupChunk(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to query existing links: %w", err)
		}
		for _, link := range found {
			existing[link] = true
		}
	}
	return existing, nil
}

func (r *articleRepository) lookupLinkChunk(ctx context.Context, links []string) ([]string, error) {
	var found []string
	err := r.db.WithContext(ctx).Model(&entity.Article{}).
		Where("link IN ?", links).
		Pluck("link", &found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

// UpsertArticles writes articles in chunks with insert-or-update on link.
// A failing chunk is recorded with its keys and does not stop the
// remaining chunks.
func (r *articleRepository) UpsertArticles(ctx context.Context, articles []entity.Article) (*UpsertResult, error) {
	result := &UpsertResult{}
	for _, chunk := range utils.Chunk(articles, r.upsertChunkSize) {
		batch := make([]entity.Article, len(chunk))
		copy(batch, chunk)
		for i := range batch {
			batch[i].EnsureDefaults()
		}

		if err := r.writeChunk(ctx, batch); err != nil {
			links := make([]string, len(chunk))
			for i, a := range chunk {
				links[i] = a.Link
			}
			result.Failed = append(result.Failed, ChunkFailure{Links: links, Err: err})
			continue
		}
		result.Persisted += len(chunk)
	}
	return result, nil
}

func (r *articleRepository) writeArticleChunk(ctx context.Context, batch []entity.Article) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "link"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(&batch).Error
}

// FindByID loads a single article.
func (r *articleRepository) FindByID(ctx context.Context, id uint) (*entity.Article, error) {
	var article entity.Article
	if err := r.db.WithContext(ctx).First(&article, id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// FindRecent returns articles published within the last daysAgo days,
// newest first.
func (r *articleRepository) FindRecent(ctx context.Context, limit, daysAgo int) ([]entity.Article, error) {
	var articles []entity.Article
	cutoff := time.Now().UTC().AddDate(0, 0, -daysAgo)
	err := r.db.WithContext(ctx).
		Where("published >= ?", cutoff).
		Order("published DESC").
		Limit(limit).
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recent articles: %w", err)
	}
	return articles, nil
}

// UpdateFavorite flips is_favorite and stores the generated analysis on
// one row.
func (r *articleRepository) UpdateFavorite(ctx context.Context, id uint, analysis, plainSummary string) error {
	updates := map[string]interface{}{
		"is_favorite": true,
	}
	if analysis != "" {
		updates["favorite_analysis"] = analysis
	}
	if plainSummary != "" {
		updates["plain_summary"] = plainSummary
	}
	return r.db.WithContext(ctx).Model(&entity.Article{}).
		Where("id = ?", id).
		Updates(updates).Error
}
