package service

import (
	"fmt"
	"net/url"
	"strings"

	"ai-news-feed/internal/entity"
)

// ValidateArticle checks the fields every persisted article must carry.
// The returned error names the first offending field.
func ValidateArticle(article entity.Article) error {
	if strings.TrimSpace(article.Title) == "" {
		return fmt.Errorf("article has empty title (link=%s)", article.Link)
	}
	parsed, err := url.Parse(article.Link)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return fmt.Errorf("article has invalid link %q", article.Link)
	}
	if article.Published.IsZero() {
		return fmt.Errorf("article has zero published time (link=%s)", article.Link)
	}
	if article.Source == "" {
		return fmt.Errorf("article has empty source (link=%s)", article.Link)
	}
	return nil
}
