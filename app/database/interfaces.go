package database

import (
	"github.com/openclaw/newsbrief/app/meta"
)

type NewsRepository interface {
	// StoreItem inserts the item unless its content hash is already
	// present. Returns whether the item was newly inserted.
	StoreItem(item NewsItem) (bool, error)

	// GetRecentNews returns items published within the trailing window,
	// ordered by importance score descending then published time
	// descending. category and minImportance are optional filters
	// (empty string / zero disables them).
	GetRecentNews(hours int, category string, minImportance float64, limit int) ([]NewsItem, error)

	// SearchNews performs case-insensitive substring search over title
	// and content within the trailing days window. Ordering matches
	// GetRecentNews.
	SearchNews(query, category string, days, limit int) ([]NewsItem, error)

	GetStats() (*Stats, error)
}

type TrendRepository interface {
	// StoreTrend always inserts; trends are observations, not entities.
	StoreTrend(topic, source string, rank *int, volume int, metadata meta.Map) error

	// GetTrendingTopics returns trends detected within the trailing
	// window, ordered by detected time descending then rank ascending
	// (unranked last). source is an optional filter.
	GetTrendingTopics(hours int, source string) ([]Trend, error)
}

type CollectionLogRepository interface {
	// LogRun appends one audit record. A non-nil runErr marks the run
	// as failed and records the message.
	LogRun(sourceType, sourceName string, itemsCollected int, runErr error) error

	GetRecentRuns(limit int) ([]CollectionLog, error)
}
