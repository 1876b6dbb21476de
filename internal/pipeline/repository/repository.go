package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-news-feed/internal/entity"
	"ai-news-feed/internal/pipeline/dto"
)

// AIRepository is the enrichment-engine contract. EnrichBatch sends one
// combined structured request for the batch and returns one enrichment
// object per article it could process; callers tolerate missing indexes.
type AIRepository interface {
	EnrichBatch(ctx context.Context, articles []entity.Article) ([]dto.ArticleEnrichment, error)
	AnalyzeFavorite(ctx context.Context, article *entity.Article) (*dto.FavoriteAnalysisResult, error)
}

// parseEnrichmentJSON strips markdown code fences the models like to wrap
// JSON in and unmarshals the array of per-article enrichments.
func parseEnrichmentJSON(raw string) ([]dto.ArticleEnrichment, error) {
	cleaned := stripJSONFences(raw)

	var results []dto.ArticleEnrichment
	if err := json.Unmarshal([]byte(cleaned), &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal enrichment JSON: %w", err)
	}
	return results, nil
}

func parseFavoriteJSON(raw string) (*dto.FavoriteAnalysisResult, error) {
	cleaned := stripJSONFences(raw)

	var result dto.FavoriteAnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal favorite analysis JSON: %w", err)
	}
	return &result, nil
}

func stripJSONFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}
