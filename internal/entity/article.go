package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Source identifies which adapter produced an article.
type Source string

const (
	SourcePaperIndex Source = "paper_index"
	SourceRSS        Source = "rss"
	SourceNewsSearch Source = "news_search"
)

// Article is the central record of the pipeline. Its canonical link is the
// dedup and upsert key; the store enforces uniqueness on it.
type Article struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Link      string    `gorm:"unique;not null" json:"link"`
	Published time.Time `gorm:"not null;index" json:"published"`
	Source    Source    `gorm:"not null;index" json:"source"`
	Content   string    `json:"content"`
	Summary   string    `json:"summary"`
	Language  string    `gorm:"default:en" json:"language"`
	ImageURL  string    `json:"image_url"`

	// Enrichment-derived fields. Persisted as empty collections rather
	// than NULL so readers never see a null sentinel.
	Tags             pq.StringArray    `gorm:"type:text[]" json:"tags"`
	MainTags         pq.StringArray    `gorm:"type:text[]" json:"main_tags"`
	Authors          pq.StringArray    `gorm:"type:text[]" json:"authors"`
	KeyPoints        pq.StringArray    `gorm:"type:text[]" json:"key_points"`
	Entities         datatypes.JSONMap `gorm:"type:jsonb" json:"entities"`
	Sentiment        datatypes.JSONMap `gorm:"type:jsonb" json:"sentiment"`
	SummaryZH        string            `gorm:"column:summary_zh" json:"summary_zh"`
	TrendTag         string            `json:"trend_tag"`
	HeatScore        float64           `json:"heat_score"`
	ReadabilityScore float64           `json:"readability_score"`

	// User state, owned by the favorites API. The daily upsert never
	// touches these columns.
	IsFavorite       bool   `gorm:"default:false" json:"is_favorite"`
	FavoriteAnalysis string `json:"favorite_analysis"`
	PlainSummary     string `json:"plain_summary"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// PublishedGuessed flags articles whose published date could not be
	// parsed and was defaulted to the run time. Not persisted.
	PublishedGuessed bool `gorm:"-" json:"-"`
}

// TableName specifies the table name for the Article model.
func (Article) TableName() string {
	return "articles"
}

// Enriched reports whether the enrichment stage populated this article.
// Raw-fallback rows keep all enrichment fields empty.
func (a *Article) Enriched() bool {
	return len(a.Tags) > 0 || len(a.Entities) > 0 || a.SummaryZH != "" || len(a.KeyPoints) > 0
}

// EnsureDefaults replaces nil collection fields with empty ones so the
// storage schema never receives NULL for a list or object column.
func (a *Article) EnsureDefaults() {
	if a.Tags == nil {
		a.Tags = pq.StringArray{}
	}
	if a.MainTags == nil {
		a.MainTags = pq.StringArray{}
	}
	if a.Authors == nil {
		a.Authors = pq.StringArray{}
	}
	if a.KeyPoints == nil {
		a.KeyPoints = pq.StringArray{}
	}
	if a.Entities == nil {
		a.Entities = datatypes.JSONMap{}
	}
	if a.Sentiment == nil {
		a.Sentiment = datatypes.JSONMap{}
	}
}
