package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openclaw/newsbrief/app/briefing"
	"github.com/openclaw/newsbrief/app/database"
	"github.com/openclaw/newsbrief/app/meta"
	"github.com/openclaw/newsbrief/app/tasks"
	"github.com/openclaw/newsbrief/app/vector"
)

type mockNewsRepository struct {
	items []database.NewsItem
}

var _ database.NewsRepository = (*mockNewsRepository)(nil)

func (m *mockNewsRepository) StoreItem(item database.NewsItem) (bool, error) {
	m.items = append(m.items, item)
	return true, nil
}

func (m *mockNewsRepository) GetRecentNews(hours int, category string, minImportance float64, limit int) ([]database.NewsItem, error) {
	var matched []database.NewsItem
	for _, item := range m.items {
		if category != "" && item.Category != category {
			continue
		}
		if minImportance > 0 && item.ImportanceScore < minImportance {
			continue
		}
		matched = append(matched, item)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].ImportanceScore > matched[j].ImportanceScore
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *mockNewsRepository) SearchNews(query, category string, days, limit int) ([]database.NewsItem, error) {
	return m.items, nil
}

func (m *mockNewsRepository) GetStats() (*database.Stats, error) {
	return &database.Stats{TotalNewsItems: len(m.items)}, nil
}

type mockTrendRepository struct {
	trends []database.Trend
}

var _ database.TrendRepository = (*mockTrendRepository)(nil)

func (m *mockTrendRepository) StoreTrend(topic, source string, rank *int, volume int, metadata meta.Map) error {
	m.trends = append(m.trends, database.Trend{Topic: topic, Source: source, Rank: rank, Volume: volume})
	return nil
}

func (m *mockTrendRepository) GetTrendingTopics(hours int, source string) ([]database.Trend, error) {
	return m.trends, nil
}

type mockScheduler struct {
	enqueued []tasks.TaskInterface
	err      error
}

var _ tasks.TaskSchedulerInterface = (*mockScheduler)(nil)

func (m *mockScheduler) Start() {}
func (m *mockScheduler) Stop()  {}

func (m *mockScheduler) EnqueueTask(task tasks.TaskInterface) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, task)
	return nil
}

func testItem(title, category string, importance float64) database.NewsItem {
	item := database.NewsItem{
		Title:           title,
		URL:             "https://example.com/" + category,
		Source:          "Reuters",
		Category:        category,
		PublishedAt:     time.Now().UTC().Add(-time.Hour),
		ImportanceScore: importance,
	}
	item.ContentHash = database.ContentHash(item.Title, item.URL, item.Source)
	return item
}

func newTestServer(t *testing.T, apiAccessKey string) (*gin.Engine, *mockNewsRepository, *mockScheduler, *vector.Index) {
	t.Helper()

	news := &mockNewsRepository{items: []database.NewsItem{
		testItem("Fed raises interest rates", "markets", 5.5),
		testItem("Bitcoin breaks record high", "crypto", 4.5),
	}}
	rank := 1
	trendRepo := &mockTrendRepository{trends: []database.Trend{
		{Topic: "Rust 2.0 announced", Source: "hackernews", Rank: &rank, Volume: 980, DetectedAt: time.Now().UTC()},
	}}

	enc, err := vector.NewHashingEncoder(32)
	if err != nil {
		t.Fatalf("NewHashingEncoder() error: %v", err)
	}
	index := vector.NewIndex(filepath.Join(t.TempDir(), "vectors.json"), enc, news)
	if _, err := index.IndexRecent(context.Background(), 24, false); err != nil {
		t.Fatalf("IndexRecent() error: %v", err)
	}

	scheduler := &mockScheduler{}
	handler := &Handler{
		newsRepo:         news,
		trendRepo:        trendRepo,
		index:            index,
		generator:        briefing.NewGenerator(news, trendRepo),
		scheduler:        scheduler,
		indexWindowHours: 24,
		retentionDays:    30,
	}

	return NewServer(handler, apiAccessKey), news, scheduler, index
}

func doRequest(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return body
}

func TestGetHealth(t *testing.T) {
	r, _, _, _ := newTestServer(t, "")

	w := doRequest(r, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
	if body["vectors"].(float64) != 2 {
		t.Errorf("vectors = %v, expected 2", body["vectors"])
	}
}

func TestGetStats(t *testing.T) {
	r, _, _, _ := newTestServer(t, "")

	w := doRequest(r, "GET", "/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d", w.Code)
	}

	body := decodeBody(t, w)
	store := body["store"].(map[string]interface{})
	if store["total_news_items"].(float64) != 2 {
		t.Errorf("total_news_items = %v", store["total_news_items"])
	}
	index := body["index"].(map[string]interface{})
	if index["total_vectors"].(float64) != 2 {
		t.Errorf("total_vectors = %v", index["total_vectors"])
	}
}

func TestGetRecentNews(t *testing.T) {
	r, _, _, _ := newTestServer(t, "")

	w := doRequest(r, "GET", "/news/recent?hours=24&category=markets", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["count"].(float64) != 1 {
		t.Errorf("count = %v, expected 1", body["count"])
	}
	items := body["items"].([]interface{})
	first := items[0].(map[string]interface{})
	if first["title"] != "Fed raises interest rates" {
		t.Errorf("title = %v", first["title"])
	}
}

func TestSearchNews_RequiresQuery(t *testing.T) {
	r, _, _, _ := newTestServer(t, "")

	if w := doRequest(r, "GET", "/news/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, expected 400", w.Code)
	}
}

func TestSemanticSearch(t *testing.T) {
	r, _, _, _ := newTestServer(t, "")

	w := doRequest(r, "GET", "/search?q=interest+rates&top_k=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["count"].(float64) != 1 {
		t.Errorf("count = %v, expected 1 (top_k)", body["count"])
	}
}

func TestSemanticSearch_RequiresQuery(t *testing.T) {
	r, _, _, _ := newTestServer(t, "")

	if w := doRequest(r, "GET", "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, expected 400", w.Code)
	}
}

func TestGetSimilar_UnknownHash(t *testing.T) {
	r, _, _, _ := newTestServer(t, "")

	w := doRequest(r, "GET", "/news/deadbeef/similar", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["count"].(float64) != 0 {
		t.Errorf("count = %v, expected 0 for unknown hash", body["count"])
	}
}

func TestGetSimilar(t *testing.T) {
	r, news, _, _ := newTestServer(t, "")

	w := doRequest(r, "GET", "/news/"+news.items[0].ContentHash+"/similar", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["count"].(float64) != 1 {
		t.Errorf("count = %v, expected 1", body["count"])
	}
}

func TestGetClusters(t *testing.T) {
	r, _, _, _ := newTestServer(t, "")

	w := doRequest(r, "GET", "/clusters?k=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["count"].(float64) == 0 {
		t.Error("Expected at least one cluster")
	}
}

func TestGetTrends(t *testing.T) {
	r, _, _, _ := newTestServer(t, "")

	w := doRequest(r, "GET", "/trends?hours=6", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d", w.Code)
	}

	body := decodeBody(t, w)
	trends := body["trends"].([]interface{})
	first := trends[0].(map[string]interface{})
	if first["topic"] != "Rust 2.0 announced" {
		t.Errorf("topic = %v", first["topic"])
	}
	if first["rank"].(float64) != 1 {
		t.Errorf("rank = %v", first["rank"])
	}
}

func TestGetBriefing_Morning(t *testing.T) {
	r, _, _, _ := newTestServer(t, "")

	w := doRequest(r, "GET", "/briefing/morning", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["title"] != "Morning News Briefing" {
		t.Errorf("title = %v", body["title"])
	}
}

func TestGetBriefing_TextFormat(t *testing.T) {
	r, _, _, _ := newTestServer(t, "")

	w := doRequest(r, "GET", "/briefing/morning?format=text", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d", w.Code)
	}
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		t.Error("Expected non-JSON response for text format")
	}
}

func TestGetBriefing_CategoryRequiresParam(t *testing.T) {
	r, _, _, _ := newTestServer(t, "")

	if w := doRequest(r, "GET", "/briefing/category", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, expected 400", w.Code)
	}
}

func TestGetBriefing_UnknownType(t *testing.T) {
	r, _, _, _ := newTestServer(t, "")

	if w := doRequest(r, "GET", "/briefing/hourly", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, expected 400", w.Code)
	}
}

func TestGetBriefing_Breaking(t *testing.T) {
	r, _, _, _ := newTestServer(t, "")

	w := doRequest(r, "GET", "/briefing/breaking?min_importance=5.0", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["has_breaking_news"] != true {
		t.Errorf("has_breaking_news = %v", body["has_breaking_news"])
	}
}

func TestAPIReindex_RequiresAuth(t *testing.T) {
	r, _, scheduler, _ := newTestServer(t, "secret")

	if w := doRequest(r, "POST", "/api/index", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, expected 401", w.Code)
	}
	if len(scheduler.enqueued) != 0 {
		t.Error("No task should be enqueued without auth")
	}
}

func TestAPIReindex_RejectsWrongKey(t *testing.T) {
	r, _, _, _ := newTestServer(t, "secret")

	w := doRequest(r, "POST", "/api/index", map[string]string{"X-API-Key": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, expected 401", w.Code)
	}
}

func TestAPIReindex(t *testing.T) {
	r, _, scheduler, _ := newTestServer(t, "secret")

	w := doRequest(r, "POST", "/api/index", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("Status = %d, expected 202", w.Code)
	}

	if len(scheduler.enqueued) != 1 {
		t.Fatalf("Expected 1 enqueued task, got %d", len(scheduler.enqueued))
	}
	if scheduler.enqueued[0].GetType() != tasks.TaskTypeIndexVectors {
		t.Errorf("Task type = %q", scheduler.enqueued[0].GetType())
	}
}

func TestAPICleanup_BearerAuth(t *testing.T) {
	r, _, scheduler, _ := newTestServer(t, "secret")

	w := doRequest(r, "POST", "/api/cleanup?days=7", map[string]string{"Authorization": "Bearer secret"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("Status = %d, expected 202", w.Code)
	}

	if len(scheduler.enqueued) != 1 {
		t.Fatalf("Expected 1 enqueued task, got %d", len(scheduler.enqueued))
	}
	if scheduler.enqueued[0].GetType() != tasks.TaskTypeCleanupVectors {
		t.Errorf("Task type = %q", scheduler.enqueued[0].GetType())
	}
}

func TestAPIEndpointsDisabledWithoutKey(t *testing.T) {
	r, _, _, _ := newTestServer(t, "")

	if w := doRequest(r, "POST", "/api/index", nil); w.Code != http.StatusNotFound {
		t.Errorf("Status = %d, expected 404 when API is disabled", w.Code)
	}
}
