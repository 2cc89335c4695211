package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

func newHackerNewsServer(t *testing.T, stories map[int64]hackerNewsStory, order []int64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/topstories.json":
			json.NewEncoder(w).Encode(order)
		case strings.HasPrefix(r.URL.Path, "/item/"):
			idStr := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/item/"), ".json")
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			story, ok := stories[id]
			if !ok {
				http.Error(w, "missing", http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(story)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestTrendsCollect(t *testing.T) {
	stories := map[int64]hackerNewsStory{
		1: {Title: "Rust 2.0 announced", URL: "https://example.com/rust", By: "alice", Score: 980, Descendants: 312},
		2: {Title: "Tiny database in 500 lines", URL: "https://example.com/db", By: "bob", Score: 420, Descendants: 88},
	}
	server := newHackerNewsServer(t, stories, []int64{1, 2})

	trends := &mockTrendRepository{}
	ing := NewIngestor(newMockNewsRepository(), &mockCollectionLogRepository{}, nil)
	c := NewTrendsCollector(trends, ing, server.Client(), server.URL, "TestAgent/1.0")

	collected := c.Collect(context.Background())
	if collected != 2 {
		t.Fatalf("Expected 2 collected trends, got %d", collected)
	}

	first := trends.trends[0]
	if first.Topic != "Rust 2.0 announced" {
		t.Errorf("Topic = %q", first.Topic)
	}
	if first.Source != "hackernews" {
		t.Errorf("Source = %q", first.Source)
	}
	if first.Rank == nil || *first.Rank != 1 {
		t.Errorf("Rank = %v, expected 1", first.Rank)
	}
	if first.Volume != 980 {
		t.Errorf("Volume = %d, expected 980", first.Volume)
	}
	if first.Metadata["by"].String() != "alice" {
		t.Errorf("Metadata by = %q", first.Metadata["by"].String())
	}
	if first.Metadata["comments"].Number() != 312 {
		t.Errorf("Metadata comments = %f", first.Metadata["comments"].Number())
	}

	second := trends.trends[1]
	if second.Rank == nil || *second.Rank != 2 {
		t.Errorf("Second rank = %v, expected 2", second.Rank)
	}
}

func TestTrendsCollect_CapsAtTwenty(t *testing.T) {
	stories := make(map[int64]hackerNewsStory)
	var order []int64
	for i := int64(1); i <= 30; i++ {
		stories[i] = hackerNewsStory{Title: fmt.Sprintf("Story %d", i), Score: int(i)}
		order = append(order, i)
	}
	server := newHackerNewsServer(t, stories, order)

	trends := &mockTrendRepository{}
	ing := NewIngestor(newMockNewsRepository(), &mockCollectionLogRepository{}, nil)
	c := NewTrendsCollector(trends, ing, server.Client(), server.URL, "TestAgent/1.0")

	if collected := c.Collect(context.Background()); collected != 20 {
		t.Errorf("Expected 20 collected trends, got %d", collected)
	}
}

func TestTrendsCollect_StoryFailureIsolated(t *testing.T) {
	stories := map[int64]hackerNewsStory{
		1: {Title: "Reachable story", Score: 50},
	}
	server := newHackerNewsServer(t, stories, []int64{1, 2})

	trends := &mockTrendRepository{}
	logs := &mockCollectionLogRepository{}
	ing := NewIngestor(newMockNewsRepository(), logs, nil)
	c := NewTrendsCollector(trends, ing, server.Client(), server.URL, "TestAgent/1.0")

	if collected := c.Collect(context.Background()); collected != 1 {
		t.Errorf("Expected 1 collected trend, got %d", collected)
	}
	if len(logs.runs) != 1 || logs.runs[0].Status != "success" {
		t.Errorf("Run should still succeed, got %+v", logs.runs)
	}
}

func TestTrendsCollect_ListingFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	trends := &mockTrendRepository{}
	logs := &mockCollectionLogRepository{}
	ing := NewIngestor(newMockNewsRepository(), logs, nil)
	c := NewTrendsCollector(trends, ing, server.Client(), server.URL, "TestAgent/1.0")

	if collected := c.Collect(context.Background()); collected != 0 {
		t.Errorf("Expected 0 collected on listing failure, got %d", collected)
	}
	if len(logs.runs) != 1 || logs.runs[0].Status != "error" {
		t.Errorf("Expected failed run logged, got %+v", logs.runs)
	}
}

func TestTrendsCollect_SkipsUntitled(t *testing.T) {
	stories := map[int64]hackerNewsStory{
		1: {Title: "", Score: 10},
		2: {Title: "Titled story", Score: 20},
	}
	server := newHackerNewsServer(t, stories, []int64{1, 2})

	trends := &mockTrendRepository{}
	ing := NewIngestor(newMockNewsRepository(), &mockCollectionLogRepository{}, nil)
	c := NewTrendsCollector(trends, ing, server.Client(), server.URL, "TestAgent/1.0")

	if collected := c.Collect(context.Background()); collected != 1 {
		t.Errorf("Expected 1 collected trend, got %d", collected)
	}
}
