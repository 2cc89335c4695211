package api

import (
	"time"

	"github.com/openclaw/newsbrief/app/briefing"
	"github.com/openclaw/newsbrief/app/database"
	"github.com/openclaw/newsbrief/app/meta"
	"github.com/openclaw/newsbrief/app/tasks"
	"github.com/openclaw/newsbrief/app/vector"
)

type Handler struct {
	newsRepo         database.NewsRepository
	trendRepo        database.TrendRepository
	index            *vector.Index
	generator        *briefing.Generator
	scheduler        tasks.TaskSchedulerInterface
	indexWindowHours int
	retentionDays    int
}

type newsItemResponse struct {
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	Content         string    `json:"content,omitempty"`
	Source          string    `json:"source"`
	Category        string    `json:"category"`
	PublishedAt     time.Time `json:"published_at"`
	CollectedAt     time.Time `json:"collected_at"`
	ImportanceScore float64   `json:"importance_score"`
	Keywords        []string  `json:"keywords,omitempty"`
	Metadata        meta.Map  `json:"metadata,omitempty"`
	ContentHash     string    `json:"content_hash"`
}

type trendResponse struct {
	Topic      string    `json:"topic"`
	Source     string    `json:"source"`
	Rank       *int      `json:"rank"`
	Volume     int       `json:"volume"`
	DetectedAt time.Time `json:"detected_at"`
	Metadata   meta.Map  `json:"metadata,omitempty"`
}

func toNewsItemResponse(item database.NewsItem) newsItemResponse {
	return newsItemResponse{
		Title:           item.Title,
		URL:             item.URL,
		Content:         item.Content,
		Source:          item.Source,
		Category:        item.Category,
		PublishedAt:     item.PublishedAt,
		CollectedAt:     item.CollectedAt,
		ImportanceScore: item.ImportanceScore,
		Keywords:        item.Keywords,
		Metadata:        item.Metadata,
		ContentHash:     item.ContentHash,
	}
}

func toNewsItemResponses(items []database.NewsItem) []newsItemResponse {
	out := make([]newsItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toNewsItemResponse(item))
	}
	return out
}

func toTrendResponses(trends []database.Trend) []trendResponse {
	out := make([]trendResponse, 0, len(trends))
	for _, t := range trends {
		out = append(out, trendResponse{
			Topic:      t.Topic,
			Source:     t.Source,
			Rank:       t.Rank,
			Volume:     t.Volume,
			DetectedAt: t.DetectedAt,
			Metadata:   t.Metadata,
		})
	}
	return out
}
