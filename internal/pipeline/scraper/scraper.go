package scraper

import (
	"context"
	"time"

	"ai-news-feed/internal/entity"
)

// FetchWindow bounds what a scraper should return: articles published at
// or after Start, capped at MaxResults per internal unit (category, feed,
// query). A zero MaxResults means the scraper's configured default.
type FetchWindow struct {
	Start      time.Time
	MaxResults int
}

// Scraper is the source-adapter contract. Implementations return whatever
// subset they managed to fetch; a non-nil error never carries partial
// results away, the caller logs it and keeps the returned articles.
type Scraper interface {
	Name() string
	Fetch(ctx context.Context, window FetchWindow) ([]entity.Article, error)
}
