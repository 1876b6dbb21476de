package repository

import (
	"fmt"
	"strings"

	"ai-news-feed/internal/entity"
	"ai-news-feed/pkg/utils"
)

const contentPreviewRunes = 2000

// BuildEnrichmentPrompt asks for one JSON object per article, keyed by the
// article's position in the batch. The engine may omit fields; the batcher
// defaults anything missing to empty.
func BuildEnrichmentPrompt(articles []entity.Article) string {
	var b strings.Builder
	b.WriteString(`You are a news analyst. For each article below, produce enrichment metadata.
Return ONLY a JSON array with one object per article:
[
  {
    "index": 0,
    "summary": "concise English summary, 2-3 sentences",
    "summary_zh": "简体中文简报，2-3句",
    "tags": ["keyword", "..."],
    "main_tags": ["capability" | "cost" | "paradigm" | "landscape"],
    "entities": {"ORG": ["..."], "PERSON": ["..."], "PRODUCT": ["..."]},
    "sentiment": {"label": "positive" | "neutral" | "negative", "score": 0.0},
    "key_points": ["three short key points in Chinese"],
    "trend_tag": "one short trend label",
    "heat_score": 0.0
  }
]
heat_score is 0-100. Do not wrap the JSON in markdown fences.

Articles:
`)

	for i, article := range articles {
		content := article.Content
		if content == "" {
			content = article.Summary
		}
		b.WriteString(fmt.Sprintf("\n--- Article %d ---\nTitle: %s\nPublished: %s\nContent: %s\n",
			i, article.Title, article.Published.Format("2006-01-02"), utils.Truncate(content, contentPreviewRunes)))
	}

	return b.String()
}

// BuildFavoriteAnalysisPrompt asks for a trend analysis plus a
// plain-language summary for one favorited article.
func BuildFavoriteAnalysisPrompt(article *entity.Article) string {
	content := article.Content
	if content == "" {
		content = article.Summary
	}
	return fmt.Sprintf(`You are a technology analyst. Analyze the following favorited article.
Return ONLY a JSON object:
{
  "analysis": "趋势简析（中文，3-5句，说明该文章反映的技术或行业趋势）",
  "plain_summary": "通俗总结（中文，用简单的话解释专业术语）"
}
Do not wrap the JSON in markdown fences.

Title: %s
Published: %s
Content: %s
`, article.Title, article.Published.Format("2006-01-02"), utils.Truncate(content, contentPreviewRunes))
}
