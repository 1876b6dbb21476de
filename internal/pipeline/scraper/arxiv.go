package scraper

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-news-feed/internal/entity"
	"ai-news-feed/internal/pipeline/config"
	"ai-news-feed/internal/pipeline/dto"
	"ai-news-feed/pkg/logger"
	"ai-news-feed/pkg/utils"
)

// ArxivScraper pulls recent papers per category from the arXiv query API.
type ArxivScraper struct {
	cfg    config.Arxiv
	logger *logger.Logger
	client *http.Client
}

// NewArxivScraper creates a new arXiv source adapter.
func NewArxivScraper(cfg config.Arxiv, log *logger.Logger) *ArxivScraper {
	return &ArxivScraper{
		cfg:    cfg,
		logger: log,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name identifies the adapter in logs and run summaries.
func (s *ArxivScraper) Name() string {
	return "arxiv"
}

// Fetch queries each configured category, newest first, and keeps entries
// published inside the window. A failing category is logged and skipped so
// the remaining categories still contribute.
func (s *ArxivScraper) Fetch(ctx context.Context, window FetchWindow) ([]entity.Article, error) {
	maxResults := window.MaxResults
	if maxResults <= 0 {
		maxResults = s.cfg.MaxResultsPerCategory
	}

	var articles []entity.Article
	var lastErr error
	for _, category := range s.cfg.Categories {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}

		entries, err := s.fetchCategory(ctx, category, maxResults)
		if err != nil {
			s.logger.Error("Failed to fetch arXiv category",
				logger.StringField("category", category), logger.ErrorField(err))
			lastErr = err
			continue
		}

		kept := 0
		for _, entry := range entries {
			article, ok := s.entryToArticle(entry, window.Start)
			if !ok {
				continue
			}
			articles = append(articles, article)
			kept++
		}
		s.logger.Info("Fetched arXiv category",
			logger.StringField("category", category),
			logger.IntField("fetched", len(entries)),
			logger.IntField("kept", kept),
		)
	}

	if len(articles) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all arXiv categories failed: %w", lastErr)
	}
	return articles, nil
}

func (s *ArxivScraper) fetchCategory(ctx context.Context, category string, maxResults int) ([]dto.ArxivEntry, error) {
	params := url.Values{}
	params.Set("search_query", "cat:"+category)
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")
	params.Set("max_results", fmt.Sprintf("%d", maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create arXiv request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query arXiv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read arXiv response: %w", err)
	}

	var feed dto.ArxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse arXiv atom feed: %w", err)
	}
	return feed.Entries, nil
}

func (s *ArxivScraper) entryToArticle(entry dto.ArxivEntry, start time.Time) (entity.Article, bool) {
	published, err := time.Parse(time.RFC3339, entry.Published)
	if err != nil {
		s.logger.Warn("Skipping arXiv entry with unparsable published date",
			logger.StringField("id", entry.ID), logger.StringField("published", entry.Published))
		return entity.Article{}, false
	}
	if published.Before(start) {
		return entity.Article{}, false
	}

	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		authors = append(authors, a.Name)
	}
	tags := make([]string, 0, len(entry.Categories))
	for _, c := range entry.Categories {
		tags = append(tags, c.Term)
	}

	summary := utils.SafeText(strings.ReplaceAll(entry.Summary, "\n", " "))
	article := entity.Article{
		Title:     utils.SafeText(strings.ReplaceAll(entry.Title, "\n", " ")),
		Link:      entry.ID,
		Published: published.UTC(),
		Source:    entity.SourcePaperIndex,
		Summary:   summary,
		Content:   summary,
		Authors:   authors,
		Tags:      tags,
		Language:  "en",
	}
	return article, true
}
