package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-news-feed/internal/favorites/dto"
	"ai-news-feed/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeFavoriteService struct {
	favoriteResp *dto.FavoriteResponse
	articles     []dto.ArticleResponse
	gotLimit     int
	gotDaysAgo   int
	err          error
}

func (f *fakeFavoriteService) Favorite(ctx context.Context, articleID uint) (*dto.FavoriteResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.favoriteResp, nil
}

func (f *fakeFavoriteService) ListRecent(ctx context.Context, limit, daysAgo int) ([]dto.ArticleResponse, error) {
	f.gotLimit = limit
	f.gotDaysAgo = daysAgo
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

func newTestServer(t *testing.T, svc *fakeFavoriteService) *echo.Echo {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)

	e := echo.New()
	handler := NewFavoriteHandler(svc, log)
	handler.RegisterRoutes(e.Group("/api/v1/articles"))
	return e
}

func TestFavoriteArticle(t *testing.T) {
	svc := &fakeFavoriteService{
		favoriteResp: &dto.FavoriteResponse{ArticleID: 7, Success: true, Message: "ok"},
	}
	e := newTestServer(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/articles/7/favorite", nil)
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.FavoriteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint(7), resp.ArticleID)
	assert.True(t, resp.Success)
}

func TestFavoriteArticleInvalidID(t *testing.T) {
	e := newTestServer(t, &fakeFavoriteService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/articles/abc/favorite", nil)
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFavoriteArticleNotFound(t *testing.T) {
	e := newTestServer(t, &fakeFavoriteService{
		err: fmt.Errorf("looking up article 42: %w", gorm.ErrRecordNotFound),
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/articles/42/favorite", nil)
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Article not found", body["error"])
}

func TestFavoriteArticleServiceError(t *testing.T) {
	e := newTestServer(t, &fakeFavoriteService{err: errors.New("engine down")})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/articles/7/favorite", nil)
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListArticles(t *testing.T) {
	svc := &fakeFavoriteService{
		articles: []dto.ArticleResponse{{ID: 1, Title: "one"}},
	}
	e := newTestServer(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/articles?limit=5&days_ago=3", nil)
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, svc.gotLimit)
	assert.Equal(t, 3, svc.gotDaysAgo)

	var articles []dto.ArticleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &articles))
	require.Len(t, articles, 1)
	assert.Equal(t, "one", articles[0].Title)
}

func TestListArticlesDefaults(t *testing.T) {
	svc := &fakeFavoriteService{}
	e := newTestServer(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/articles?limit=bogus", nil)
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultListLimit, svc.gotLimit)
	assert.Equal(t, defaultListDaysAgo, svc.gotDaysAgo)
}
