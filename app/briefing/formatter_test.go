package briefing

import (
	"strings"
	"testing"
	"time"
)

func sampleBriefing() *Briefing {
	return &Briefing{
		Title:       "Morning News Briefing",
		GeneratedAt: time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC),
		PeriodHours: 18,
		Categories: map[string]CategorySection{
			"markets": {
				TotalItems: 2,
				TopStories: []Story{
					{
						Title:           "Fed raises interest rates again",
						URL:             "https://example.com/fed",
						Source:          "Reuters",
						PublishedAt:     time.Date(2025, 6, 1, 5, 30, 0, 0, time.UTC),
						ImportanceScore: 5.5,
					},
				},
				AvgImportance: 4.8,
				MaxImportance: 5.5,
				TopSources:    map[string]int{"Reuters": 2},
			},
		},
		CategoryOrder: []string{"markets"},
		Summary: Summary{
			TotalItemsAnalyzed:        2,
			CategoriesWithNews:        1,
			HighestImportanceCategory: "markets",
		},
		Trends: &TrendingSummary{
			TotalTrends: 1,
			BySource:    map[string]int{"hackernews": 1},
			TopTopics:   []TopTopic{{Topic: "Rust 2.0 announced", Source: "hackernews", Volume: 980}},
			PeriodHours: 18,
		},
		KeyThemes: []Theme{{Theme: "rates", Frequency: 2, Relevance: 1.0}},
	}
}

func TestFormatText(t *testing.T) {
	out := FormatText(sampleBriefing())

	for _, want := range []string{
		"Morning News Briefing",
		"Generated: 2025-06-01 07:00 UTC",
		"Period: Last 18 hours",
		"2 news items analyzed",
		"MARKETS (2 items)",
		"Fed raises interest rates again",
		"Top sources: Reuters",
		"Rates (2 mentions)",
		"Rust 2.0 announced [hackernews] (980 pts)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Text output missing %q", want)
		}
	}
}

func TestFormatMarkdown(t *testing.T) {
	out := FormatMarkdown(sampleBriefing())

	for _, want := range []string{
		"# Morning News Briefing",
		"## Overview",
		"## Key Themes",
		"## Markets (2 items)",
		"### 1. Fed raises interest rates again",
		"**Source:** Reuters",
		"## Trending Topics",
		"- **Rust 2.0 announced** [hackernews] (980 pts)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Markdown output missing %q", want)
		}
	}
}

func TestFormatAlertText(t *testing.T) {
	alert := &Alert{
		Type:               "breaking_news_alert",
		HasBreakingNews:    true,
		TotalBreakingItems: 1,
		TopStories: []Story{{
			Title:           "Major exchange halts withdrawals",
			Source:          "Reuters",
			ImportanceScore: 9.0,
		}},
		PeriodHours: 2,
	}

	out := FormatAlertText(alert)
	if !strings.Contains(out, "BREAKING NEWS ALERT") {
		t.Error("Expected alert header")
	}
	if !strings.Contains(out, "Major exchange halts withdrawals") {
		t.Error("Expected story title")
	}
}

func TestFormatAlertText_Quiet(t *testing.T) {
	out := FormatAlertText(&Alert{Type: "breaking_news_alert"})
	if !strings.Contains(out, "No breaking news") {
		t.Errorf("Expected quiet message, got %q", out)
	}
}
