package dto

import "time"

// FavoriteResponse is returned from the favorite endpoint. The previews
// are truncated so the caller sees whether analysis was generated without
// pulling the article again.
type FavoriteResponse struct {
	ArticleID               uint   `json:"article_id"`
	Success                 bool   `json:"success"`
	Message                 string `json:"message"`
	FavoriteAnalysisPreview string `json:"favorite_analysis_preview,omitempty"`
	PlainSummaryPreview     string `json:"plain_summary_preview,omitempty"`
}

// ArticleResponse is the list view of an article.
type ArticleResponse struct {
	ID               uint                   `json:"id"`
	Title            string                 `json:"title"`
	Link             string                 `json:"link"`
	Published        time.Time              `json:"published"`
	Source           string                 `json:"source"`
	Summary          string                 `json:"summary"`
	SummaryZH        string                 `json:"summary_zh,omitempty"`
	Tags             []string               `json:"tags"`
	MainTags         []string               `json:"main_tags"`
	Entities         map[string]interface{} `json:"entities,omitempty"`
	Sentiment        map[string]interface{} `json:"sentiment,omitempty"`
	KeyPoints        []string               `json:"key_points"`
	TrendTag         string                 `json:"trend_tag,omitempty"`
	HeatScore        float64                `json:"heat_score"`
	ReadabilityScore float64                `json:"readability_score"`
	IsFavorite       bool                   `json:"is_favorite"`
	FavoriteAnalysis string                 `json:"favorite_analysis,omitempty"`
	PlainSummary     string                 `json:"plain_summary,omitempty"`
	ImageURL         string                 `json:"image_url,omitempty"`
}

// ErrorResponse is the generic error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
