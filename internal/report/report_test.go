package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ai-news-feed/internal/entity"
	"ai-news-feed/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/datatypes"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	return log
}

func sampleArticles() []entity.Article {
	return []entity.Article{
		{
			Title:     "New [AI] model (beta)",
			Link:      "https://a.com/1",
			Published: time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC),
			Source:    entity.SourceRSS,
			Summary:   "A short summary.",
			MainTags:  []string{"llm"},
			Entities:  datatypes.JSONMap{"organizations": []string{"DeepMind", "OpenAI", "Meta"}},
		},
		{
			Title:     "Agent paper",
			Link:      "https://arxiv.org/abs/1",
			Published: time.Date(2025, 6, 9, 18, 0, 0, 0, time.UTC),
			Source:    entity.SourcePaperIndex,
			Summary:   strings.Repeat("long ", 60),
			MainTags:  []string{"llm", "agents"},
		},
	}
}

func TestMindmap(t *testing.T) {
	g := NewGenerator(testLogger(t))
	out := g.Mindmap(sampleArticles())

	assert.True(t, strings.HasPrefix(out, "# AI News Feed Overview"))
	assert.Contains(t, out, "## "+string(entity.SourcePaperIndex))
	assert.Contains(t, out, "## "+string(entity.SourceRSS))
	// Markdown control characters are stripped from titles.
	assert.Contains(t, out, "### New AI model beta")
	assert.Contains(t, out, "- **Entities**: DeepMind, OpenAI")
	assert.NotContains(t, out, "Meta")
	assert.Contains(t, out, "- **Tags**: llm")
}

func TestMindmapEmpty(t *testing.T) {
	g := NewGenerator(testLogger(t))
	assert.Equal(t, "# No Articles Found", g.Mindmap(nil))
}

func TestTimelineOrdering(t *testing.T) {
	g := NewGenerator(testLogger(t))
	out := g.Timeline(sampleArticles())

	assert.Contains(t, out, "## 2025-06")
	assert.Contains(t, out, "### 2025-06-10")
	assert.Contains(t, out, "### 2025-06-09")

	// Newest day heading appears first.
	assert.Less(t, strings.Index(out, "2025-06-10"), strings.Index(out, "2025-06-09"))
	assert.Contains(t, out, "**[09:30]** rss: New AI model beta")
	// Long summaries are truncated.
	assert.Contains(t, out, "...")
}

func TestStatistics(t *testing.T) {
	g := NewGenerator(testLogger(t))
	out := g.Statistics(sampleArticles())

	assert.Contains(t, out, "- **Total Articles**: 2")
	// Only the first sample carries enrichment output (entities).
	assert.Contains(t, out, "- **Enriched Articles**: 1")
	assert.Contains(t, out, "- rss: 1")
	assert.Contains(t, out, "- paper_index: 1")
	assert.Contains(t, out, "- llm: 2")
	assert.Contains(t, out, "- agents: 1")
	assert.Contains(t, out, "- OpenAI: 1")
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	g := NewGenerator(testLogger(t))

	require.NoError(t, g.WriteAll(dir, sampleArticles()))

	for _, name := range []string{"mindmap.md", "timeline.md", "statistics.md"} {
		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.NotEmpty(t, content)
	}
}
