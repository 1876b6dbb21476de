package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ai-news-feed/internal/entity"
	"ai-news-feed/pkg/logger"
	"ai-news-feed/pkg/utils"
)

// Generator renders the run's articles into markdown reports: a markmap
// compatible mindmap, a timeline, and summary statistics.
type Generator struct {
	logger *logger.Logger
}

func NewGenerator(log *logger.Logger) *Generator {
	return &Generator{logger: log}
}

// WriteAll renders every report into dir, creating it when missing.
func (g *Generator) WriteAll(dir string, articles []entity.Article) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %s: %w", dir, err)
	}

	reports := map[string]string{
		"mindmap.md":    g.Mindmap(articles),
		"timeline.md":   g.Timeline(articles),
		"statistics.md": g.Statistics(articles),
	}
	for name, content := range reports {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	g.logger.Info("Reports written",
		logger.StringField("dir", dir), logger.IntField("articles", len(articles)))
	return nil
}

// Mindmap groups articles by source, newest first inside each source.
func (g *Generator) Mindmap(articles []entity.Article) string {
	if len(articles) == 0 {
		return "# No Articles Found"
	}

	bySource := make(map[entity.Source][]entity.Article)
	for _, article := range articles {
		bySource[article.Source] = append(bySource[article.Source], article)
	}
	sources := make([]entity.Source, 0, len(bySource))
	for source := range bySource {
		sources = append(sources, source)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	var b strings.Builder
	b.WriteString("# AI News Feed Overview\n")
	for _, source := range sources {
		group := bySource[source]
		sort.Slice(group, func(i, j int) bool { return group[i].Published.After(group[j].Published) })

		b.WriteString(fmt.Sprintf("## %s\n", source))
		for _, article := range group {
			b.WriteString(fmt.Sprintf("### %s\n", cleanTitle(article.Title)))
			b.WriteString(fmt.Sprintf("- **Summary**: %s\n", summaryOrDefault(article.Summary, 150)))
			if names := flattenEntities(article.Entities); len(names) > 0 {
				b.WriteString(fmt.Sprintf("- **Entities**: %s\n", strings.Join(names, ", ")))
			}
			if len(article.MainTags) > 0 {
				b.WriteString(fmt.Sprintf("- **Tags**: %s\n", strings.Join(article.MainTags, ", ")))
			}
			b.WriteString(fmt.Sprintf("- **Link**: [%s](%s)\n", displayLink(article.Link), article.Link))
		}
	}
	return b.String()
}

// Timeline orders all articles newest first under month and day headings.
func (g *Generator) Timeline(articles []entity.Article) string {
	if len(articles) == 0 {
		return "# No Articles Found"
	}

	sorted := make([]entity.Article, len(articles))
	copy(sorted, articles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Published.After(sorted[j].Published) })

	var b strings.Builder
	b.WriteString("# AI News Feed Timeline\n")

	currentMonth := ""
	currentDay := ""
	for _, article := range sorted {
		published := article.Published.UTC()
		month := published.Format("2006-01")
		day := published.Format("2006-01-02")

		if month != currentMonth {
			b.WriteString(fmt.Sprintf("\n## %s\n", month))
			currentMonth = month
			currentDay = ""
		}
		if day != currentDay {
			b.WriteString(fmt.Sprintf("\n### %s\n", day))
			currentDay = day
		}

		b.WriteString(fmt.Sprintf("- **[%s]** %s: %s\n",
			published.Format("15:04"), article.Source, cleanTitle(article.Title)))
		b.WriteString(fmt.Sprintf("  - %s\n", summaryOrDefault(article.Summary, 100)))

		var details []string
		if names := flattenEntities(article.Entities); len(names) > 0 {
			details = append(details, "**Entities**: "+strings.Join(names, ", "))
		}
		if len(article.MainTags) > 0 {
			details = append(details, "**Tags**: "+strings.Join(article.MainTags, ", "))
		}
		if len(details) > 0 {
			b.WriteString(fmt.Sprintf("  - %s\n", strings.Join(details, ", ")))
		}
		b.WriteString(fmt.Sprintf("  - [Read more](%s)\n\n", article.Link))
	}
	return b.String()
}

// Statistics counts articles per source, per main tag, and per entity.
func (g *Generator) Statistics(articles []entity.Article) string {
	if len(articles) == 0 {
		return "## Statistics\n- No articles found"
	}

	var b strings.Builder
	b.WriteString("## Statistics\n")
	b.WriteString(fmt.Sprintf("- **Total Articles**: %d\n", len(articles)))

	sourceCounts := make(map[string]int)
	tagCounts := make(map[string]int)
	entityCounts := make(map[string]int)
	enriched := 0
	for _, article := range articles {
		if article.Enriched() {
			enriched++
		}
		sourceCounts[string(article.Source)]++
		for _, tag := range article.MainTags {
			tagCounts[tag]++
		}
		for _, names := range article.Entities {
			for _, name := range asStrings(names) {
				entityCounts[name]++
			}
		}
	}

	b.WriteString(fmt.Sprintf("- **Enriched Articles**: %d\n", enriched))

	b.WriteString("\n### By Source\n")
	writeCounts(&b, sourceCounts, 0)
	if len(tagCounts) > 0 {
		b.WriteString("\n### By Tag\n")
		writeCounts(&b, tagCounts, 0)
	}
	if len(entityCounts) > 0 {
		b.WriteString("\n### Top Entities\n")
		writeCounts(&b, entityCounts, 10)
	}
	return b.String()
}

// writeCounts emits "- name: count" lines sorted by count descending,
// name ascending on ties. limit 0 means all.
func writeCounts(b *strings.Builder, counts map[string]int, limit int) {
	type pair struct {
		name  string
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for name, count := range counts {
		pairs = append(pairs, pair{name, count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].name < pairs[j].name
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	for _, p := range pairs {
		b.WriteString(fmt.Sprintf("- %s: %d\n", p.name, p.count))
	}
}

func cleanTitle(title string) string {
	replacer := strings.NewReplacer("[", "", "]", "", "(", "", ")", "")
	return replacer.Replace(title)
}

func summaryOrDefault(summary string, maxRunes int) string {
	if summary == "" {
		return "No summary"
	}
	return utils.Truncate(summary, maxRunes)
}

func displayLink(link string) string {
	if len(link) > 60 {
		return link[:30] + "..." + link[len(link)-20:]
	}
	return link
}

// flattenEntities takes up to two names per category, five total. The jsonb
// column round-trips as []interface{}, fresh enrichments carry []string.
func flattenEntities(entities map[string]interface{}) []string {
	if len(entities) == 0 {
		return nil
	}
	categories := make([]string, 0, len(entities))
	for category := range entities {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var names []string
	for _, category := range categories {
		values := asStrings(entities[category])
		if len(values) > 2 {
			values = values[:2]
		}
		names = append(names, values...)
		if len(names) >= 5 {
			break
		}
	}
	if len(names) > 5 {
		names = names[:5]
	}
	return names
}

func asStrings(value interface{}) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
