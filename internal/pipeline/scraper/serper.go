package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ai-news-feed/internal/entity"
	"ai-news-feed/internal/pipeline/config"
	"ai-news-feed/internal/pipeline/dto"
	"ai-news-feed/pkg/logger"
	"ai-news-feed/pkg/retry"
	"ai-news-feed/pkg/utils"
)

// SerperScraper queries the Serper news search API for each configured
// query string.
type SerperScraper struct {
	cfg    config.Serper
	logger *logger.Logger
	client *http.Client
}

// NewSerperScraper creates a new news-search source adapter.
func NewSerperScraper(cfg config.Serper, log *logger.Logger) *SerperScraper {
	return &SerperScraper{
		cfg:    cfg,
		logger: log,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Name identifies the adapter in logs and run summaries.
func (s *SerperScraper) Name() string {
	return "serper"
}

// Fetch runs each configured query. Client errors (bad key, bad request)
// stop the adapter; other failures skip to the next query.
func (s *SerperScraper) Fetch(ctx context.Context, window FetchWindow) ([]entity.Article, error) {
	if s.cfg.APIKey == "" {
		return nil, fmt.Errorf("serper api key is not configured")
	}

	maxResults := window.MaxResults
	if maxResults <= 0 {
		maxResults = s.cfg.MaxResults
	}

	var articles []entity.Article
	var lastErr error
	for _, query := range s.cfg.Queries {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}

		items, err := s.search(ctx, query, maxResults)
		if err != nil {
			s.logger.Error("Serper query failed",
				logger.StringField("query", query), logger.ErrorField(err))
			lastErr = err
			if retry.IsPermanent(err) {
				break
			}
			continue
		}

		for _, item := range items {
			article, ok := s.itemToArticle(item, window.Start)
			if !ok {
				continue
			}
			articles = append(articles, article)
		}
	}

	if len(articles) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all serper queries failed: %w", lastErr)
	}
	return articles, nil
}

func (s *SerperScraper) search(ctx context.Context, query string, num int) ([]dto.SerperNewsItem, error) {
	payload, err := json.Marshal(dto.SerperNewsRequest{Query: query, Num: num})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal serper request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create serper request: %w", err)
	}
	req.Header.Set("X-API-KEY", s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call serper: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("serper returned status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}

	var out dto.SerperNewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode serper response: %w", err)
	}
	return out.News, nil
}

func (s *SerperScraper) itemToArticle(item dto.SerperNewsItem, start time.Time) (entity.Article, bool) {
	if item.Link == "" || item.Title == "" {
		return entity.Article{}, false
	}

	published, guessed := parseSerperDate(item.Date)
	if !guessed && published.Before(start) {
		return entity.Article{}, false
	}

	return entity.Article{
		Title:            utils.CleanToValidUTF8(item.Title),
		Link:             item.Link,
		Published:        published,
		Source:           entity.SourceNewsSearch,
		Summary:          utils.SafeText(item.Snippet),
		Content:          utils.SafeText(item.Snippet),
		ImageURL:         item.ImageURL,
		Language:         "en",
		PublishedGuessed: guessed,
	}, true
}

// parseSerperDate handles the relative dates Serper returns ("3 hours
// ago", "2 days ago") and falls back to now for anything unparsable.
func parseSerperDate(raw string) (time.Time, bool) {
	now := utils.TimeNowUTC()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now, true
	}

	fields := strings.Fields(strings.ToLower(raw))
	if len(fields) == 3 && fields[2] == "ago" {
		n, err := strconv.Atoi(fields[0])
		if err == nil {
			switch strings.TrimSuffix(fields[1], "s") {
			case "minute":
				return now.Add(-time.Duration(n) * time.Minute), false
			case "hour":
				return now.Add(-time.Duration(n) * time.Hour), false
			case "day":
				return now.AddDate(0, 0, -n), false
			case "week":
				return now.AddDate(0, 0, -7*n), false
			case "month":
				return now.AddDate(0, -n, 0), false
			}
		}
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02", "Jan 2, 2006"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), false
		}
	}
	return now, true
}
