package database

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/openclaw/newsbrief/app/meta"
)

// NewsItem is one deduplicated news record. Items are immutable once
// stored; corrections arrive as new records with a different hash.
type NewsItem struct {
	ID              int64
	Title           string
	URL             string
	Content         string
	Source          string
	Category        string
	PublishedAt     time.Time
	CollectedAt     time.Time
	ImportanceScore float64
	Keywords        []string
	Metadata        meta.Map
	ContentHash     string
	CreatedAt       time.Time
}

// Trend is one observation of a trending topic. Trends carry no dedup
// key: the same topic detected repeatedly produces multiple records.
type Trend struct {
	ID         int64
	Topic      string
	Source     string
	Rank       *int
	Volume     int
	DetectedAt time.Time
	Metadata   meta.Map
	CreatedAt  time.Time
}

// CollectionLog is the audit record of one collection attempt.
type CollectionLog struct {
	ID             int64
	CollectionDate string
	SourceType     string
	SourceName     string
	ItemsCollected int
	Status         string
	ErrorMessage   string
	CreatedAt      time.Time
}

// Stats holds aggregate counts for operational dashboards.
type Stats struct {
	TotalNewsItems int            `json:"total_news_items"`
	NewsItems24h   int            `json:"news_items_24h"`
	ByCategory     map[string]int `json:"by_category"`
	TotalTrends    int            `json:"total_trends"`
	Trends24h      int            `json:"trends_24h"`
}

// ContentHash derives the dedup key from title, url, and source.
func ContentHash(title, url, source string) string {
	preimage := fmt.Sprintf("%s|%s|%s", title, url, source)
	hash := sha256.Sum256([]byte(preimage))
	return hex.EncodeToString(hash[:])
}

// timeLayout is a fixed-width UTC layout so stored timestamps compare
// correctly as strings in SQL.
const timeLayout = "2006-01-02 15:04:05.000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}
