// Package briefing composes the record store and trend queries into
// multi-category news digests with summary statistics, trending topics,
// and extracted key themes.
package briefing

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/openclaw/newsbrief/app/database"
)

const (
	// oversampleFactor fetches extra items per category so the stats
	// cover more than the stories kept for display.
	oversampleFactor = 2

	topSourceCount = 3
	topTopicCount  = 10
	alertStoryCap  = 5
)

// Generator builds briefings from the news and trend repositories.
type Generator struct {
	news   database.NewsRepository
	trends database.TrendRepository
}

func NewGenerator(news database.NewsRepository, trends database.TrendRepository) *Generator {
	return &Generator{news: news, trends: trends}
}

// Morning covers the overnight window with the core categories and a
// high importance floor.
func (g *Generator) Morning(hours int) (*Briefing, error) {
	if hours <= 0 {
		hours = 18
	}
	return g.Generate(Options{
		Title:               "Morning News Briefing",
		Hours:               hours,
		Categories:          []string{"markets", "crypto", "politics", "tech"},
		MaxItemsPerCategory: 3,
		MinImportance:       3.0,
		IncludeTrends:       true,
	})
}

// Evening covers the daytime window, adds security, and lowers the
// importance floor.
func (g *Generator) Evening(hours int) (*Briefing, error) {
	if hours <= 0 {
		hours = 12
	}
	return g.Generate(Options{
		Title:               "Evening News Briefing",
		Hours:               hours,
		Categories:          []string{"markets", "crypto", "politics", "tech", "security"},
		MaxItemsPerCategory: 3,
		MinImportance:       2.0,
		IncludeTrends:       true,
	})
}

// Category builds a single-category deep dive.
func (g *Generator) Category(category string, hours int) (*Briefing, error) {
	if hours <= 0 {
		hours = 24
	}
	return g.Generate(Options{
		Title:               fmt.Sprintf("%s News Briefing", titleCase(category)),
		Hours:               hours,
		Categories:          []string{category},
		MaxItemsPerCategory: 10,
		MinImportance:       1.0,
		IncludeTrends:       true,
	})
}

// Generate builds a briefing per the given options.
func (g *Generator) Generate(opts Options) (*Briefing, error) {
	b := &Briefing{
		Title:       opts.Title,
		GeneratedAt: time.Now().UTC(),
		PeriodHours: opts.Hours,
		Categories:  make(map[string]CategorySection),
	}

	totalItems := 0
	var titles []string

	for _, category := range opts.Categories {
		items, err := g.news.GetRecentNews(opts.Hours, category, opts.MinImportance, opts.MaxItemsPerCategory*oversampleFactor)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s news: %w", category, err)
		}
		if len(items) == 0 {
			continue
		}

		topCount := opts.MaxItemsPerCategory
		if topCount > len(items) {
			topCount = len(items)
		}

		section := CategorySection{
			TotalItems: len(items),
			TopStories: make([]Story, 0, topCount),
			TopSources: topSources(items, topSourceCount),
		}

		var sum float64
		for _, item := range items {
			sum += item.ImportanceScore
			if item.ImportanceScore > section.MaxImportance {
				section.MaxImportance = item.ImportanceScore
			}
		}
		section.AvgImportance = sum / float64(len(items))

		for _, item := range items[:topCount] {
			section.TopStories = append(section.TopStories, toStory(item))
			titles = append(titles, item.Title)
		}

		b.Categories[category] = section
		b.CategoryOrder = append(b.CategoryOrder, category)
		totalItems += len(items)
	}

	b.Summary = Summary{
		TotalItemsAnalyzed:        totalItems,
		CategoriesWithNews:        len(b.CategoryOrder),
		HighestImportanceCategory: g.highestImportanceCategory(b),
	}

	if opts.IncludeTrends {
		trends, err := g.TrendingSummary(opts.Hours)
		if err != nil {
			// A briefing without trends is still useful.
			slog.Warn("Failed to build trending summary", "error", err)
		} else {
			b.Trends = trends
		}
	}

	b.KeyThemes = ExtractKeyThemes(titles)

	return b, nil
}

// BreakingNews returns the highest-importance items above the threshold
// within a short window, flagged when anything qualifies.
func (g *Generator) BreakingNews(minImportance float64, hours int) (*Alert, error) {
	if hours <= 0 {
		hours = 2
	}
	if minImportance <= 0 {
		minImportance = 8.0
	}

	items, err := g.news.GetRecentNews(hours, "", minImportance, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch breaking news: %w", err)
	}

	alert := &Alert{
		Type:        "breaking_news_alert",
		GeneratedAt: time.Now().UTC(),
	}

	if len(items) == 0 {
		return alert, nil
	}

	byCategory := make(map[string]int)
	for _, item := range items {
		byCategory[item.Category]++
	}

	topCount := alertStoryCap
	if topCount > len(items) {
		topCount = len(items)
	}
	stories := make([]Story, 0, topCount)
	for _, item := range items[:topCount] {
		stories = append(stories, toStory(item))
	}

	alert.HasBreakingNews = true
	alert.TotalBreakingItems = len(items)
	alert.Categories = byCategory
	alert.TopStories = stories
	alert.PeriodHours = hours
	alert.MinImportanceThreshold = minImportance

	return alert, nil
}

// TrendingSummary aggregates trend observations within the window:
// total count, per-source counts, and the top topics by volume.
func (g *Generator) TrendingSummary(hours int) (*TrendingSummary, error) {
	trends, err := g.trends.GetTrendingTopics(hours, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trending topics: %w", err)
	}

	bySource := make(map[string]int)
	for _, t := range trends {
		bySource[t.Source]++
	}

	sorted := make([]database.Trend, len(trends))
	copy(sorted, trends)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Volume > sorted[j].Volume
	})

	topCount := topTopicCount
	if topCount > len(sorted) {
		topCount = len(sorted)
	}
	topTopics := make([]TopTopic, 0, topCount)
	for _, t := range sorted[:topCount] {
		topTopics = append(topTopics, TopTopic{Topic: t.Topic, Source: t.Source, Volume: t.Volume})
	}

	return &TrendingSummary{
		TotalTrends: len(trends),
		BySource:    bySource,
		TopTopics:   topTopics,
		PeriodHours: hours,
	}, nil
}

// highestImportanceCategory picks the category holding the single
// highest-importance item. Request order breaks ties.
func (g *Generator) highestImportanceCategory(b *Briefing) string {
	best := ""
	bestScore := -1.0
	for _, category := range b.CategoryOrder {
		if section := b.Categories[category]; section.MaxImportance > bestScore {
			best = category
			bestScore = section.MaxImportance
		}
	}
	return best
}

func toStory(item database.NewsItem) Story {
	return Story{
		Title:           item.Title,
		URL:             item.URL,
		Source:          item.Source,
		Category:        item.Category,
		PublishedAt:     item.PublishedAt,
		ImportanceScore: item.ImportanceScore,
		ContentHash:     item.ContentHash,
	}
}

// topSources counts items per source and keeps the top n. Source name
// breaks ties so the result is stable.
func topSources(items []database.NewsItem, n int) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		counts[item.Source]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	if n > len(names) {
		n = len(names)
	}
	top := make(map[string]int, n)
	for _, name := range names[:n] {
		top[name] = counts[name]
	}
	return top
}
