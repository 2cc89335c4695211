package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/openclaw/newsbrief/app/meta"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func testItem(title, url, source string) NewsItem {
	now := time.Now().UTC()
	return NewsItem{
		Title:       title,
		URL:         url,
		Content:     "Test content for " + title,
		Source:      source,
		Category:    "tech",
		PublishedAt: now,
		CollectedAt: now,
		Keywords:    []string{"test"},
		Metadata:    meta.Map{"origin": meta.String("test")},
	}
}

func TestStoreItem_Idempotent(t *testing.T) {
	repo := NewNewsRepository(setupTestDB(t))

	item := testItem("Fed raises rates", "https://example.com/fed", "Reuters")

	inserted, err := repo.StoreItem(item)
	if err != nil {
		t.Fatalf("First store failed: %v", err)
	}
	if !inserted {
		t.Error("First store should report newly inserted")
	}

	inserted, err = repo.StoreItem(item)
	if err != nil {
		t.Fatalf("Second store failed: %v", err)
	}
	if inserted {
		t.Error("Second store of identical item should report not new")
	}

	stats, err := repo.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalNewsItems != 1 {
		t.Errorf("Expected exactly 1 stored item, got %d", stats.TotalNewsItems)
	}
}

func TestStoreItem_FirstWriteWins(t *testing.T) {
	repo := NewNewsRepository(setupTestDB(t))

	first := testItem("Same story", "https://example.com/story", "AP")
	first.Content = "original content"
	second := first
	second.Content = "revised content"

	if _, err := repo.StoreItem(first); err != nil {
		t.Fatalf("First store failed: %v", err)
	}

	inserted, err := repo.StoreItem(second)
	if err != nil {
		t.Fatalf("Second store failed: %v", err)
	}
	if inserted {
		t.Error("Second store with same title/url/source should report not new")
	}

	items, err := repo.GetRecentNews(24, "", 0, 10)
	if err != nil {
		t.Fatalf("GetRecentNews failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].Content != "original content" {
		t.Errorf("Expected first write to win, stored content: %q", items[0].Content)
	}
}

func TestGetRecentNews_Ordering(t *testing.T) {
	repo := NewNewsRepository(setupTestDB(t))
	now := time.Now().UTC()

	fixtures := []struct {
		title      string
		importance float64
		published  time.Time
	}{
		{"low importance", 1.0, now.Add(-1 * time.Hour)},
		{"high importance old", 9.0, now.Add(-5 * time.Hour)},
		{"high importance new", 9.0, now.Add(-1 * time.Hour)},
		{"mid importance", 5.0, now.Add(-2 * time.Hour)},
	}
	for _, f := range fixtures {
		item := testItem(f.title, "https://example.com/"+f.title, "Test")
		item.ImportanceScore = f.importance
		item.PublishedAt = f.published
		if _, err := repo.StoreItem(item); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}

	items, err := repo.GetRecentNews(24, "", 0, 10)
	if err != nil {
		t.Fatalf("GetRecentNews failed: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("Expected 4 items, got %d", len(items))
	}

	for i := 1; i < len(items); i++ {
		if items[i].ImportanceScore > items[i-1].ImportanceScore {
			t.Errorf("Importance not non-increasing at position %d", i)
		}
		if items[i].ImportanceScore == items[i-1].ImportanceScore &&
			items[i].PublishedAt.After(items[i-1].PublishedAt) {
			t.Errorf("Published time not non-increasing within equal importance at position %d", i)
		}
	}

	if items[0].Title != "high importance new" {
		t.Errorf("Expected newest high-importance item first, got %q", items[0].Title)
	}
}

func TestGetRecentNews_Filters(t *testing.T) {
	repo := NewNewsRepository(setupTestDB(t))

	techItem := testItem("Tech story", "https://example.com/tech", "Test")
	techItem.ImportanceScore = 2.0

	cryptoItem := testItem("Crypto story", "https://example.com/crypto", "Test")
	cryptoItem.Category = "crypto"
	cryptoItem.ImportanceScore = 8.0

	oldItem := testItem("Old story", "https://example.com/old", "Test")
	oldItem.PublishedAt = time.Now().UTC().Add(-48 * time.Hour)

	for _, item := range []NewsItem{techItem, cryptoItem, oldItem} {
		if _, err := repo.StoreItem(item); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}

	items, err := repo.GetRecentNews(24, "crypto", 0, 10)
	if err != nil {
		t.Fatalf("GetRecentNews failed: %v", err)
	}
	if len(items) != 1 || items[0].Category != "crypto" {
		t.Errorf("Category filter failed, got %d items", len(items))
	}

	items, err = repo.GetRecentNews(24, "", 5.0, 10)
	if err != nil {
		t.Fatalf("GetRecentNews failed: %v", err)
	}
	if len(items) != 1 || items[0].ImportanceScore < 5.0 {
		t.Errorf("Importance filter failed, got %d items", len(items))
	}

	items, err = repo.GetRecentNews(24, "", 0, 10)
	if err != nil {
		t.Fatalf("GetRecentNews failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("Window filter failed: expected 2 items within 24h, got %d", len(items))
	}
}

func TestGetRecentNews_Limit(t *testing.T) {
	repo := NewNewsRepository(setupTestDB(t))

	for i := 0; i < 5; i++ {
		item := testItem("Story", "https://example.com/"+string(rune('a'+i)), "Test")
		if _, err := repo.StoreItem(item); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}

	items, err := repo.GetRecentNews(24, "", 0, 3)
	if err != nil {
		t.Fatalf("GetRecentNews failed: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("Expected limit of 3 items, got %d", len(items))
	}
}

func TestSearchNews_CaseInsensitive(t *testing.T) {
	repo := NewNewsRepository(setupTestDB(t))

	item := testItem("Bitcoin Rally Continues", "https://example.com/btc", "CoinDesk")
	item.Content = "The cryptocurrency market saw gains today."
	if _, err := repo.StoreItem(item); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	for _, query := range []string{"bitcoin", "BITCOIN", "cryptocurrency"} {
		items, err := repo.SearchNews(query, "", 30, 10)
		if err != nil {
			t.Fatalf("SearchNews(%q) failed: %v", query, err)
		}
		if len(items) != 1 {
			t.Errorf("SearchNews(%q): expected 1 item, got %d", query, len(items))
		}
	}

	items, err := repo.SearchNews("ethereum", "", 30, 10)
	if err != nil {
		t.Fatalf("SearchNews failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected no matches for 'ethereum', got %d", len(items))
	}
}

func TestGetStats(t *testing.T) {
	db := setupTestDB(t)
	newsRepo := NewNewsRepository(db)
	trendRepo := NewTrendRepository(db)

	techItem := testItem("Tech", "https://example.com/1", "Test")
	cryptoItem := testItem("Crypto", "https://example.com/2", "Test")
	cryptoItem.Category = "crypto"
	for _, item := range []NewsItem{techItem, cryptoItem} {
		if _, err := newsRepo.StoreItem(item); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}

	if err := trendRepo.StoreTrend("AI", "hackernews", nil, 100, nil); err != nil {
		t.Fatalf("StoreTrend failed: %v", err)
	}

	stats, err := newsRepo.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}

	if stats.TotalNewsItems != 2 {
		t.Errorf("Expected 2 news items, got %d", stats.TotalNewsItems)
	}
	if stats.NewsItems24h != 2 {
		t.Errorf("Expected 2 recent news items, got %d", stats.NewsItems24h)
	}
	if stats.ByCategory["tech"] != 1 || stats.ByCategory["crypto"] != 1 {
		t.Errorf("Unexpected category breakdown: %v", stats.ByCategory)
	}
	if stats.TotalTrends != 1 || stats.Trends24h != 1 {
		t.Errorf("Expected 1 trend, got total=%d recent=%d", stats.TotalTrends, stats.Trends24h)
	}
}

func TestContentHash_Deterministic(t *testing.T) {
	a := ContentHash("Title", "https://example.com", "Reuters")
	b := ContentHash("Title", "https://example.com", "Reuters")
	if a != b {
		t.Error("ContentHash should be deterministic")
	}

	c := ContentHash("Other title", "https://example.com", "Reuters")
	if a == c {
		t.Error("Different titles should produce different hashes")
	}
}
