package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ai-news-feed/internal/entity"
	"ai-news-feed/internal/pipeline/config"
	"ai-news-feed/internal/pipeline/dto"
	"ai-news-feed/pkg/logger"
	"ai-news-feed/pkg/retry"
)

// openRouterRepository is an implementation of AIRepository that uses the
// OpenRouter chat-completions API.
type openRouterRepository struct {
	client *http.Client
	cfg    *config.Config
	logger *logger.Logger
}

// NewOpenRouterRepository creates a new instance of openRouterRepository.
func NewOpenRouterRepository(cfg *config.Config, log *logger.Logger) AIRepository {
	return &openRouterRepository{
		client: &http.Client{
			Timeout: cfg.Enrichment.RequestTimeout,
		},
		cfg:    cfg,
		logger: log,
	}
}

// EnrichBatch performs one combined enrichment request for the batch.
func (r *openRouterRepository) EnrichBatch(ctx context.Context, articles []entity.Article) ([]dto.ArticleEnrichment, error) {
	content, err := r.complete(ctx, BuildEnrichmentPrompt(articles))
	if err != nil {
		return nil, err
	}
	return parseEnrichmentJSON(content)
}

// AnalyzeFavorite generates the on-demand analysis for one article.
func (r *openRouterRepository) AnalyzeFavorite(ctx context.Context, article *entity.Article) (*dto.FavoriteAnalysisResult, error) {
	content, err := r.complete(ctx, BuildFavoriteAnalysisPrompt(article))
	if err != nil {
		return nil, err
	}
	return parseFavoriteJSON(content)
}

func (r *openRouterRepository) complete(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"model": r.cfg.OpenRouter.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.OpenRouter.BaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.OpenRouter.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("Failed to send request to OpenRouter", logger.ErrorField(err))
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Received non-OK response from OpenRouter",
			logger.IntField("status_code", resp.StatusCode))
		err := fmt.Errorf("received non-OK response from OpenRouter: %d", resp.StatusCode)
		if isPermanentStatus(resp.StatusCode) {
			return "", retry.Permanent(err)
		}
		return "", err
	}

	var openRouterResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&openRouterResponse); err != nil {
		return "", fmt.Errorf("failed to decode OpenRouter response: %w", err)
	}
	if len(openRouterResponse.Choices) == 0 {
		return "", fmt.Errorf("received empty choices from OpenRouter")
	}

	return openRouterResponse.Choices[0].Message.Content, nil
}
