package normalizer

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"ai-news-feed/internal/entity"
	"ai-news-feed/pkg/logger"
	"ai-news-feed/pkg/utils"
)

// trackingParams are query parameters stripped during canonicalization.
// Two links differing only in these must canonicalize identically.
var trackingParams = map[string]bool{
	"fbclid":   true,
	"gclid":    true,
	"igshid":   true,
	"mc_cid":   true,
	"mc_eid":   true,
	"ref":      true,
	"ref_src":  true,
	"spm":      true,
	"yclid":    true,
	"_hsenc":   true,
	"_hsmi":    true,
	"mkt_tok":  true,
	"oly_enc_id": true,
}

// Normalizer canonicalizes links and timestamps and applies the recency
// window.
type Normalizer struct {
	logger *logger.Logger
	now    func() time.Time
}

// New creates a Normalizer. The clock is injectable for tests.
func New(log *logger.Logger) *Normalizer {
	return &Normalizer{logger: log, now: utils.TimeNowUTC}
}

// WithClock overrides the clock used for fallbacks and window math.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// CanonicalLink lower-cases scheme and host, strips tracking parameters
// and the trailing slash, and drops any fragment.
func CanonicalLink(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty link")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("unparsable link %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("link %q has no host", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	query := u.Query()
	for param := range query {
		if trackingParams[param] || strings.HasPrefix(strings.ToLower(param), "utm_") {
			query.Del(param)
		}
	}
	u.RawQuery = query.Encode()

	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String(), nil
}

// Normalize canonicalizes every article and drops those published before
// now() - daysAgo (window start inclusive). Articles with an unusable link
// are dropped; articles with an unusable published date fall back to now
// and stay in the run, flagged.
func (n *Normalizer) Normalize(articles []entity.Article, daysAgo int) []entity.Article {
	now := n.now()
	windowStart := now.AddDate(0, 0, -daysAgo)

	out := make([]entity.Article, 0, len(articles))
	for _, article := range articles {
		canonical, err := CanonicalLink(article.Link)
		if err != nil {
			n.logger.Warn("Dropping article with unusable link",
				logger.StringField("title", article.Title), logger.ErrorField(err))
			continue
		}
		article.Link = canonical

		if article.Published.IsZero() {
			article.Published = now
			article.PublishedGuessed = true
			n.logger.Warn("Article has no published date, using run time",
				logger.StringField("link", article.Link))
		} else {
			article.Published = article.Published.UTC()
		}

		if article.Published.Before(windowStart) {
			continue
		}

		out = append(out, article)
	}
	return out
}
