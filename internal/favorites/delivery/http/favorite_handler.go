package http

import (
	"errors"
	"net/http"
	"strconv"

	"ai-news-feed/internal/favorites/service"
	"ai-news-feed/pkg/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	defaultListLimit   = 50
	defaultListDaysAgo = 7
)

// FavoriteHandler handles HTTP requests for articles and favorites.
type FavoriteHandler struct {
	favoriteService service.FavoriteService
	logger          *logger.Logger
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(favoriteService service.FavoriteService, logger *logger.Logger) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService, logger: logger}
}

// RegisterRoutes registers the article routes to the Echo group.
func (h *FavoriteHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListArticles)
	g.POST("/:id/favorite", h.FavoriteArticle)
}

// FavoriteArticle marks an article as favorite and generates its analysis.
func (h *FavoriteHandler) FavoriteArticle(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid article ID"})
	}

	response, err := h.favoriteService.Favorite(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Article not found"})
		}
		h.logger.Error("Failed to favorite article",
			logger.IntField("article_id", int(id)), logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to favorite article"})
	}

	return c.JSON(http.StatusOK, response)
}

// ListArticles returns recent articles, newest first.
func (h *FavoriteHandler) ListArticles(c echo.Context) error {
	limit := queryInt(c, "limit", defaultListLimit)
	daysAgo := queryInt(c, "days_ago", defaultListDaysAgo)

	articles, err := h.favoriteService.ListRecent(c.Request().Context(), limit, daysAgo)
	if err != nil {
		h.logger.Error("Failed to list articles", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list articles"})
	}

	return c.JSON(http.StatusOK, articles)
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
