package service

import (
	"context"
	"errors"
	"sync"

	"ai-news-feed/internal/entity"
	"ai-news-feed/internal/pipeline/dto"
	"ai-news-feed/internal/pipeline/repository"
	"ai-news-feed/pkg/logger"

	"github.com/stretchr/testify/require"
)

var errTemporary = errors.New("engine temporarily unavailable")

func testLogger(t require.TestingT) *logger.Logger {
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	return log
}

type fakeArticleRepo struct {
	mu        sync.Mutex
	existing  map[string]bool
	lookupErr error
	upsertErr error
	upserted  []entity.Article
	byID      map[uint]*entity.Article
	favorites map[uint][2]string
}

func newFakeArticleRepo(existing ...string) *fakeArticleRepo {
	m := make(map[string]bool, len(existing))
	for _, link := range existing {
		m[link] = true
	}
	return &fakeArticleRepo{
		existing:  m,
		byID:      make(map[uint]*entity.Article),
		favorites: make(map[uint][2]string),
	}
}

func (f *fakeArticleRepo) FindExistingLinks(ctx context.Context, links []string) (map[string]bool, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	out := make(map[string]bool)
	for _, link := range links {
		if f.existing[link] {
			out[link] = true
		}
	}
	return out, nil
}

func (f *fakeArticleRepo) UpsertArticles(ctx context.Context, articles []entity.Article) (*repository.UpsertResult, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.mu.Lock()
	f.upserted = append(f.upserted, articles...)
	f.mu.Unlock()
	return &repository.UpsertResult{Persisted: len(articles)}, nil
}

func (f *fakeArticleRepo) FindByID(ctx context.Context, id uint) (*entity.Article, error) {
	return f.byID[id], nil
}

func (f *fakeArticleRepo) FindRecent(ctx context.Context, limit, daysAgo int) ([]entity.Article, error) {
	return nil, nil
}

func (f *fakeArticleRepo) UpdateFavorite(ctx context.Context, id uint, analysis, plainSummary string) error {
	f.favorites[id] = [2]string{analysis, plainSummary}
	return nil
}

type fakeAIRepo struct {
	mu          sync.Mutex
	calls       int
	failFirst   int
	err         error
	enrichments func(articles []entity.Article) []dto.ArticleEnrichment
}

func (f *fakeAIRepo) EnrichBatch(ctx context.Context, articles []entity.Article) ([]dto.ArticleEnrichment, error) {
	f.mu.Lock()
	f.calls++
	calls := f.calls
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if calls <= f.failFirst {
		return nil, errTemporary
	}
	if f.enrichments != nil {
		return f.enrichments(articles), nil
	}
	out := make([]dto.ArticleEnrichment, len(articles))
	for i := range articles {
		out[i] = dto.ArticleEnrichment{
			Index:   i,
			Summary: "summary of " + articles[i].Title,
			Tags:    []string{"ai"},
		}
	}
	return out, nil
}

func (f *fakeAIRepo) AnalyzeFavorite(ctx context.Context, article *entity.Article) (*dto.FavoriteAnalysisResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.FavoriteAnalysisResult{Analysis: "analysis", PlainSummary: "plain"}, nil
}
