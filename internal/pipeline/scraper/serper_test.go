package scraper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-news-feed/internal/entity"
	"ai-news-feed/internal/pipeline/config"
	"ai-news-feed/internal/pipeline/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerperScraperFetch(t *testing.T) {
	var gotKey string
	var gotReq dto.SerperNewsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := dto.SerperNewsResponse{News: []dto.SerperNewsItem{
			{
				Title:   "AI breakthrough",
				Link:    "https://news.example.com/ai",
				Snippet: "A model did a thing.",
				Date:    "2 hours ago",
				Source:  "Example News",
			},
			{
				// No link, must be skipped.
				Title: "Broken item",
				Date:  "1 hour ago",
			},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	s := NewSerperScraper(config.Serper{
		APIKey:     "secret",
		BaseURL:    server.URL,
		Queries:    []string{"artificial intelligence"},
		MaxResults: 5,
	}, testLogger(t))

	articles, err := s.Fetch(context.Background(), FetchWindow{Start: time.Now().UTC().Add(-24 * time.Hour)})
	require.NoError(t, err)

	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "artificial intelligence", gotReq.Query)
	assert.Equal(t, 5, gotReq.Num)

	require.Len(t, articles, 1)
	got := articles[0]
	assert.Equal(t, "AI breakthrough", got.Title)
	assert.Equal(t, entity.SourceNewsSearch, got.Source)
	assert.Equal(t, "A model did a thing.", got.Summary)
	assert.False(t, got.PublishedGuessed)
	assert.WithinDuration(t, time.Now().UTC().Add(-2*time.Hour), got.Published, time.Minute)
}

func TestSerperScraperStopsOnClientError(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	s := NewSerperScraper(config.Serper{
		APIKey:     "revoked",
		BaseURL:    server.URL,
		Queries:    []string{"llm", "agents", "robotics"},
		MaxResults: 5,
	}, testLogger(t))

	_, err := s.Fetch(context.Background(), FetchWindow{Start: time.Now().UTC().Add(-24 * time.Hour)})
	require.Error(t, err)

	// A rejected key fails every query the same way, so one attempt is enough.
	assert.Equal(t, 1, requests)
}

func TestSerperScraperSkipsToNextQueryOnServerError(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		resp := dto.SerperNewsResponse{News: []dto.SerperNewsItem{
			{Title: "Recovered", Link: "https://news.example.com/ok", Date: "1 hour ago"},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	s := NewSerperScraper(config.Serper{
		APIKey:     "secret",
		BaseURL:    server.URL,
		Queries:    []string{"llm", "agents"},
		MaxResults: 5,
	}, testLogger(t))

	articles, err := s.Fetch(context.Background(), FetchWindow{Start: time.Now().UTC().Add(-24 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
	require.Len(t, articles, 1)
	assert.Equal(t, "Recovered", articles[0].Title)
}

func TestSerperScraperRequiresAPIKey(t *testing.T) {
	s := NewSerperScraper(config.Serper{}, testLogger(t))
	_, err := s.Fetch(context.Background(), FetchWindow{})
	assert.Error(t, err)
}

func TestParseSerperDate(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		raw     string
		guessed bool
		within  time.Duration
		want    time.Time
	}{
		{"3 minutes ago", false, time.Minute, now.Add(-3 * time.Minute)},
		{"2 hours ago", false, time.Minute, now.Add(-2 * time.Hour)},
		{"1 day ago", false, time.Minute, now.AddDate(0, 0, -1)},
		{"2 weeks ago", false, time.Minute, now.AddDate(0, 0, -14)},
		{"1 month ago", false, time.Hour, now.AddDate(0, -1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, guessed := parseSerperDate(tt.raw)
			assert.Equal(t, tt.guessed, guessed)
			assert.WithinDuration(t, tt.want, got, tt.within)
		})
	}
}

func TestParseSerperDateAbsolute(t *testing.T) {
	got, guessed := parseSerperDate("2025-06-10")
	assert.False(t, guessed)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), got)

	got, guessed = parseSerperDate("Jun 10, 2025")
	assert.False(t, guessed)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestParseSerperDateFallsBackToNow(t *testing.T) {
	got, guessed := parseSerperDate("yesterday-ish")
	assert.True(t, guessed)
	assert.WithinDuration(t, time.Now().UTC(), got, time.Minute)

	_, guessed = parseSerperDate("")
	assert.True(t, guessed)
}
