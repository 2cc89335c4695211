package briefing

import "time"

// Story is the briefing view of one news record.
type Story struct {
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	Source          string    `json:"source"`
	Category        string    `json:"category"`
	PublishedAt     time.Time `json:"published_at"`
	ImportanceScore float64   `json:"importance_score"`
	ContentHash     string    `json:"content_hash"`
}

// CategorySection aggregates one category of a briefing. Stats cover
// every fetched item, not only the top stories kept for display.
type CategorySection struct {
	TotalItems    int            `json:"total_items"`
	TopStories    []Story        `json:"top_stories"`
	AvgImportance float64        `json:"avg_importance"`
	MaxImportance float64        `json:"max_importance"`
	TopSources    map[string]int `json:"top_sources"`
}

// Summary holds briefing-wide statistics.
type Summary struct {
	TotalItemsAnalyzed        int    `json:"total_items_analyzed"`
	CategoriesWithNews        int    `json:"categories_with_news"`
	HighestImportanceCategory string `json:"highest_importance_category,omitempty"`
}

// TopTopic is one trending topic in the briefing trend summary.
type TopTopic struct {
	Topic  string `json:"topic"`
	Source string `json:"source"`
	Volume int    `json:"volume"`
}

// TrendingSummary aggregates recent trend observations.
type TrendingSummary struct {
	TotalTrends int            `json:"total_trends"`
	BySource    map[string]int `json:"by_source"`
	TopTopics   []TopTopic     `json:"top_topics"`
	PeriodHours int            `json:"period_hours"`
}

// Theme is one extracted key theme with its title frequency.
type Theme struct {
	Theme     string  `json:"theme"`
	Frequency int     `json:"frequency"`
	Relevance float64 `json:"relevance"`
}

// Briefing is a point-in-time digest across the requested categories.
// CategoryOrder preserves the requested category order for rendering;
// the JSON shape stays a map.
type Briefing struct {
	Title         string                     `json:"title"`
	GeneratedAt   time.Time                  `json:"generated_at"`
	PeriodHours   int                        `json:"period_hours"`
	Categories    map[string]CategorySection `json:"categories"`
	CategoryOrder []string                   `json:"-"`
	Summary       Summary                    `json:"summary"`
	Trends        *TrendingSummary           `json:"trends,omitempty"`
	KeyThemes     []Theme                    `json:"key_themes"`
}

// Options parameterizes Generate. The presets are thin wrappers that
// fill these in.
type Options struct {
	Title               string
	Hours               int
	Categories          []string
	MaxItemsPerCategory int
	MinImportance       float64
	IncludeTrends       bool
}

// Alert is the breaking-news variant: no categorization, just the
// highest-importance items above a threshold within a short window.
type Alert struct {
	Type                   string         `json:"type"`
	HasBreakingNews        bool           `json:"has_breaking_news"`
	TotalBreakingItems     int            `json:"total_breaking_items,omitempty"`
	Categories             map[string]int `json:"categories,omitempty"`
	TopStories             []Story        `json:"top_stories,omitempty"`
	GeneratedAt            time.Time      `json:"generated_at"`
	PeriodHours            int            `json:"period_hours,omitempty"`
	MinImportanceThreshold float64        `json:"min_importance_threshold,omitempty"`
}
