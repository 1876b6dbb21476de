package service

import (
	"context"
	"fmt"

	"ai-news-feed/internal/entity"
	"ai-news-feed/internal/favorites/dto"
	"ai-news-feed/internal/pipeline/repository"
	"ai-news-feed/pkg/logger"
	"ai-news-feed/pkg/utils"
)

const previewRunes = 100

// FavoriteService marks articles as favorites and generates the deep
// analysis and plain-language summary for them.
type FavoriteService interface {
	Favorite(ctx context.Context, articleID uint) (*dto.FavoriteResponse, error)
	ListRecent(ctx context.Context, limit, daysAgo int) ([]dto.ArticleResponse, error)
}

type favoriteService struct {
	articleRepo repository.ArticleRepository
	aiRepo      repository.AIRepository
	logger      *logger.Logger
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(articleRepo repository.ArticleRepository, aiRepo repository.AIRepository, log *logger.Logger) FavoriteService {
	return &favoriteService{articleRepo: articleRepo, aiRepo: aiRepo, logger: log}
}

// Favorite marks the article and generates analysis when it has none yet.
// Re-favoriting an already analyzed article only flips the flag, so the
// call is idempotent and never re-spends engine tokens.
func (s *favoriteService) Favorite(ctx context.Context, articleID uint) (*dto.FavoriteResponse, error) {
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("looking up article %d: %w", articleID, err)
	}

	if article.FavoriteAnalysis != "" && article.PlainSummary != "" {
		if err := s.articleRepo.UpdateFavorite(ctx, articleID, article.FavoriteAnalysis, article.PlainSummary); err != nil {
			return nil, fmt.Errorf("updating favorite state for article %d: %w", articleID, err)
		}
		return &dto.FavoriteResponse{
			ArticleID: articleID,
			Success:   true,
			Message:   "article already analyzed, favorite flag updated",
		}, nil
	}

	result, err := s.aiRepo.AnalyzeFavorite(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("generating favorite analysis for article %d: %w", articleID, err)
	}

	analysis := article.FavoriteAnalysis
	if analysis == "" {
		analysis = result.Analysis
	}
	plainSummary := article.PlainSummary
	if plainSummary == "" {
		plainSummary = result.PlainSummary
	}

	if err := s.articleRepo.UpdateFavorite(ctx, articleID, analysis, plainSummary); err != nil {
		return nil, fmt.Errorf("updating favorite state for article %d: %w", articleID, err)
	}

	s.logger.Info("Favorite analysis generated",
		logger.IntField("article_id", int(articleID)),
		logger.IntField("analysis_chars", len(analysis)),
		logger.IntField("plain_summary_chars", len(plainSummary)))

	return &dto.FavoriteResponse{
		ArticleID:               articleID,
		Success:                 true,
		Message:                 "favorite saved, analysis generated",
		FavoriteAnalysisPreview: utils.Truncate(analysis, previewRunes),
		PlainSummaryPreview:     utils.Truncate(plainSummary, previewRunes),
	}, nil
}

// ListRecent returns the latest articles inside the recency window.
func (s *favoriteService) ListRecent(ctx context.Context, limit, daysAgo int) ([]dto.ArticleResponse, error) {
	articles, err := s.articleRepo.FindRecent(ctx, limit, daysAgo)
	if err != nil {
		return nil, fmt.Errorf("listing recent articles: %w", err)
	}

	responses := make([]dto.ArticleResponse, 0, len(articles))
	for _, article := range articles {
		responses = append(responses, toArticleResponse(article))
	}
	return responses, nil
}

func toArticleResponse(article entity.Article) dto.ArticleResponse {
	article.EnsureDefaults()
	return dto.ArticleResponse{
		ID:               article.ID,
		Title:            article.Title,
		Link:             article.Link,
		Published:        article.Published,
		Source:           string(article.Source),
		Summary:          article.Summary,
		SummaryZH:        article.SummaryZH,
		Tags:             article.Tags,
		MainTags:         article.MainTags,
		Entities:         article.Entities,
		Sentiment:        article.Sentiment,
		KeyPoints:        article.KeyPoints,
		TrendTag:         article.TrendTag,
		HeatScore:        article.HeatScore,
		ReadabilityScore: article.ReadabilityScore,
		IsFavorite:       article.IsFavorite,
		FavoriteAnalysis: article.FavoriteAnalysis,
		PlainSummary:     article.PlainSummary,
		ImageURL:         article.ImageURL,
	}
}
