package service

import (
	"testing"
	"time"

	"ai-news-feed/internal/entity"

	"github.com/stretchr/testify/assert"
)

func validArticle() entity.Article {
	return entity.Article{
		Title:     "A title",
		Link:      "https://a.com/x",
		Published: time.Now().UTC(),
		Source:    entity.SourceRSS,
	}
}

func TestValidateArticle(t *testing.T) {
	assert.NoError(t, ValidateArticle(validArticle()))
}

func TestValidateArticleRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*entity.Article)
		wantMsg string
	}{
		{"empty title", func(a *entity.Article) { a.Title = "  " }, "title"},
		{"relative link", func(a *entity.Article) { a.Link = "/x/y" }, "link"},
		{"garbage link", func(a *entity.Article) { a.Link = "://" }, "link"},
		{"zero published", func(a *entity.Article) { a.Published = time.Time{} }, "published"},
		{"empty source", func(a *entity.Article) { a.Source = "" }, "source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validArticle()
			tt.mutate(&a)
			err := ValidateArticle(a)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
