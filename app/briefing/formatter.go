package briefing

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	generatedLayout = "2006-01-02 15:04 UTC"
	storyTimeLayout = "01/02 15:04"
)

var titleCaser = cases.Title(language.English)

func titleCase(s string) string {
	return titleCaser.String(s)
}

// FormatText renders a briefing as plain text.
func FormatText(b *Briefing) string {
	var sb strings.Builder

	sb.WriteString(b.Title + "\n")
	sb.WriteString(strings.Repeat("=", len(b.Title)) + "\n")
	fmt.Fprintf(&sb, "Generated: %s\n", b.GeneratedAt.Format(generatedLayout))
	fmt.Fprintf(&sb, "Period: Last %d hours\n\n", b.PeriodHours)

	sb.WriteString("OVERVIEW\n")
	sb.WriteString(strings.Repeat("-", 20) + "\n")
	fmt.Fprintf(&sb, "* %d news items analyzed\n", b.Summary.TotalItemsAnalyzed)
	fmt.Fprintf(&sb, "* %d categories with news\n", b.Summary.CategoriesWithNews)
	if b.Summary.HighestImportanceCategory != "" {
		fmt.Fprintf(&sb, "* Highest activity: %s\n", b.Summary.HighestImportanceCategory)
	}
	sb.WriteString("\n")

	if len(b.KeyThemes) > 0 {
		sb.WriteString("KEY THEMES\n")
		sb.WriteString(strings.Repeat("-", 20) + "\n")
		for _, theme := range capThemes(b.KeyThemes, 5) {
			fmt.Fprintf(&sb, "* %s (%d mentions)\n", titleCase(theme.Theme), theme.Frequency)
		}
		sb.WriteString("\n")
	}

	for _, category := range b.CategoryOrder {
		section := b.Categories[category]
		if section.TotalItems == 0 {
			continue
		}

		fmt.Fprintf(&sb, "%s (%d items)\n", strings.ToUpper(category), section.TotalItems)
		sb.WriteString(strings.Repeat("-", len(category)+15) + "\n")
		fmt.Fprintf(&sb, "Top sources: %s\n", strings.Join(sourceNames(section.TopSources), ", "))
		fmt.Fprintf(&sb, "Avg importance: %.1f\n\n", section.AvgImportance)

		for i, story := range section.TopStories {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, story.Title)
			fmt.Fprintf(&sb, "   %s | %s | Importance: %.1f\n",
				story.Source, story.PublishedAt.Format(storyTimeLayout), story.ImportanceScore)
			if story.URL != "" {
				fmt.Fprintf(&sb, "   %s\n", story.URL)
			}
			sb.WriteString("\n")
		}
	}

	if b.Trends != nil && b.Trends.TotalTrends > 0 {
		sb.WriteString("TRENDING TOPICS\n")
		sb.WriteString(strings.Repeat("-", 20) + "\n")
		for _, topic := range capTopics(b.Trends.TopTopics, 8) {
			fmt.Fprintf(&sb, "* %s [%s]%s\n", topic.Topic, topic.Source, volumeSuffix(topic.Volume))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatMarkdown renders a briefing as Markdown.
func FormatMarkdown(b *Briefing) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", b.Title)
	fmt.Fprintf(&sb, "**Generated:** %s  \n", b.GeneratedAt.Format(generatedLayout))
	fmt.Fprintf(&sb, "**Period:** Last %d hours  \n\n", b.PeriodHours)

	sb.WriteString("## Overview\n\n")
	fmt.Fprintf(&sb, "- **%d** news items analyzed\n", b.Summary.TotalItemsAnalyzed)
	fmt.Fprintf(&sb, "- **%d** categories with news\n", b.Summary.CategoriesWithNews)
	if b.Summary.HighestImportanceCategory != "" {
		fmt.Fprintf(&sb, "- **Highest activity:** %s\n", b.Summary.HighestImportanceCategory)
	}
	sb.WriteString("\n")

	if len(b.KeyThemes) > 0 {
		sb.WriteString("## Key Themes\n\n")
		for _, theme := range capThemes(b.KeyThemes, 5) {
			fmt.Fprintf(&sb, "- **%s** (%d mentions)\n", titleCase(theme.Theme), theme.Frequency)
		}
		sb.WriteString("\n")
	}

	for _, category := range b.CategoryOrder {
		section := b.Categories[category]
		if section.TotalItems == 0 {
			continue
		}

		fmt.Fprintf(&sb, "## %s (%d items)\n\n", titleCase(category), section.TotalItems)
		fmt.Fprintf(&sb, "**Top sources:** %s  \n", strings.Join(sourceNames(section.TopSources), ", "))
		fmt.Fprintf(&sb, "**Avg importance:** %.1f  \n\n", section.AvgImportance)

		for i, story := range section.TopStories {
			fmt.Fprintf(&sb, "### %d. %s\n\n", i+1, story.Title)
			fmt.Fprintf(&sb, "**Source:** %s | **Time:** %s | **Importance:** %.1f\n",
				story.Source, story.PublishedAt.Format(storyTimeLayout), story.ImportanceScore)
			if story.URL != "" {
				fmt.Fprintf(&sb, "**URL:** %s\n", story.URL)
			}
			sb.WriteString("\n")
		}
	}

	if b.Trends != nil && b.Trends.TotalTrends > 0 {
		sb.WriteString("## Trending Topics\n\n")
		for _, topic := range capTopics(b.Trends.TopTopics, 8) {
			fmt.Fprintf(&sb, "- **%s** [%s]%s\n", topic.Topic, topic.Source, volumeSuffix(topic.Volume))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatAlertText renders a breaking-news alert as plain text.
func FormatAlertText(a *Alert) string {
	if !a.HasBreakingNews {
		return "No breaking news at this time.\n"
	}

	var sb strings.Builder
	sb.WriteString("BREAKING NEWS ALERT\n\n")
	fmt.Fprintf(&sb, "%d high-importance items in last %d hours\n\n", a.TotalBreakingItems, a.PeriodHours)

	for i, story := range a.TopStories {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, story.Title)
		fmt.Fprintf(&sb, "   %s | Importance: %.1f\n", story.Source, story.ImportanceScore)
		if story.URL != "" {
			fmt.Fprintf(&sb, "   %s\n", story.URL)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func capThemes(themes []Theme, n int) []Theme {
	if len(themes) > n {
		return themes[:n]
	}
	return themes
}

func capTopics(topics []TopTopic, n int) []TopTopic {
	if len(topics) > n {
		return topics[:n]
	}
	return topics
}

func volumeSuffix(volume int) string {
	if volume > 0 {
		return fmt.Sprintf(" (%d pts)", volume)
	}
	return ""
}

// sourceNames orders top-source names by count descending for display.
func sourceNames(sources map[string]int) []string {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if sources[names[i]] != sources[names[j]] {
			return sources[names[i]] > sources[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
