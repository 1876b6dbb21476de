package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-news-feed/internal/entity"
	"ai-news-feed/internal/pipeline/config"
	"ai-news-feed/pkg/logger"
	"ai-news-feed/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/patrickmn/go-cache"
)

// RSSScraper fetches the configured feeds and optionally resolves each
// item to its full readable text.
type RSSScraper struct {
	cfg          config.RSS
	logger       *logger.Logger
	parser       *gofeed.Parser
	client       *http.Client
	contentCache *cache.Cache
}

// NewRSSScraper creates a new RSS source adapter.
func NewRSSScraper(cfg config.RSS, log *logger.Logger) *RSSScraper {
	return &RSSScraper{
		cfg:          cfg,
		logger:       log,
		parser:       gofeed.NewParser(),
		client:       &http.Client{Timeout: 20 * time.Second},
		contentCache: cache.New(30*time.Minute, 10*time.Minute),
	}
}

// Name identifies the adapter in logs and run summaries.
func (s *RSSScraper) Name() string {
	return "rss"
}

// Fetch parses every configured feed and keeps entries published inside
// the window. A broken feed is logged and skipped.
func (s *RSSScraper) Fetch(ctx context.Context, window FetchWindow) ([]entity.Article, error) {
	maxEntries := window.MaxResults
	if maxEntries <= 0 {
		maxEntries = s.cfg.MaxEntriesPerFeed
	}

	var articles []entity.Article
	var lastErr error
	for _, feedCfg := range s.cfg.Feeds {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}

		feed, err := s.parser.ParseURLWithContext(feedCfg.URL, ctx)
		if err != nil {
			s.logger.Error("Failed to parse RSS feed",
				logger.StringField("feed", feedCfg.Name), logger.ErrorField(err))
			lastErr = err
			continue
		}

		kept := 0
		for _, item := range feed.Items {
			if kept >= maxEntries {
				break
			}
			article, ok := s.itemToArticle(ctx, item, feedCfg, window.Start)
			if !ok {
				continue
			}
			articles = append(articles, article)
			kept++
		}
		s.logger.Info("Fetched RSS feed",
			logger.StringField("feed", feedCfg.Name),
			logger.IntField("items", len(feed.Items)),
			logger.IntField("kept", kept),
		)
	}

	if len(articles) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all RSS feeds failed: %w", lastErr)
	}
	return articles, nil
}

func (s *RSSScraper) itemToArticle(ctx context.Context, item *gofeed.Item, feedCfg config.RSSFeed, start time.Time) (entity.Article, bool) {
	published := time.Time{}
	guessed := false
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		published = item.UpdatedParsed.UTC()
	} else {
		published = utils.TimeNowUTC()
		guessed = true
	}
	if published.Before(start) {
		return entity.Article{}, false
	}

	summary := item.Description
	if summary == "" && item.Content != "" {
		summary = item.Content
	}

	article := entity.Article{
		Title:            utils.CleanToValidUTF8(item.Title),
		Link:             item.Link,
		Published:        published,
		Source:           entity.SourceRSS,
		Summary:          utils.SafeText(summary),
		Authors:          itemAuthors(item),
		Tags:             item.Categories,
		Language:         "en",
		PublishedGuessed: guessed,
	}
	if item.Image != nil {
		article.ImageURL = item.Image.URL
	}

	if s.cfg.FetchFullContent {
		if content, err := s.fullContent(ctx, item.Link); err != nil {
			s.logger.Warn("Failed to fetch full content, keeping feed summary",
				logger.StringField("link", item.Link), logger.ErrorField(err))
		} else {
			article.Content = content
		}
	}
	if article.Content == "" {
		article.Content = article.Summary
	}

	return article, true
}

func itemAuthors(item *gofeed.Item) []string {
	authors := make([]string, 0, len(item.Authors))
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			authors = append(authors, a.Name)
		}
	}
	return authors
}

// fullContent downloads the article page and extracts the readable body.
// Results are cached per link for the life of the run.
func (s *RSSScraper) fullContent(ctx context.Context, link string) (string, error) {
	if cached, found := s.contentCache.Get(link); found {
		return cached.(string), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("article page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read article page: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to extract readable content: %w", err)
	}
	docHTML, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(doc.Content())))
	if err != nil {
		return "", fmt.Errorf("failed to parse extracted content: %w", err)
	}

	content := strings.TrimSpace(docHTML.Text())
	content = strings.Join(strings.Fields(content), " ")
	content = utils.SafeText(utils.CleanToValidUTF8(content))

	s.contentCache.Set(link, content, cache.DefaultExpiration)
	return content, nil
}
