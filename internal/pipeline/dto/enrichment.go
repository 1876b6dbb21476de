package dto

// ArticleEnrichment is the structured output the enrichment engine returns
// for one article within a batch. Index ties the object back to its
// position in the request; any absent field defaults to empty on merge.
type ArticleEnrichment struct {
	Index     int                 `json:"index"`
	Summary   string              `json:"summary"`
	SummaryZH string              `json:"summary_zh"`
	Tags      []string            `json:"tags"`
	MainTags  []string            `json:"main_tags"`
	Entities  map[string][]string `json:"entities"`
	Sentiment SentimentResult     `json:"sentiment"`
	KeyPoints []string            `json:"key_points"`
	TrendTag  string              `json:"trend_tag"`
	HeatScore float64             `json:"heat_score"`
}

// SentimentResult is the polarity label and score for an article.
type SentimentResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// FavoriteAnalysisResult is the on-demand output for a favorited article:
// a trend analysis plus a plain-language summary.
type FavoriteAnalysisResult struct {
	Analysis     string `json:"analysis"`
	PlainSummary string `json:"plain_summary"`
}
