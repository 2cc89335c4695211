package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/openclaw/newsbrief/app/database"
	"github.com/openclaw/newsbrief/app/errs"
	"github.com/openclaw/newsbrief/app/meta"
)

const (
	// DefaultHackerNewsURL is the public Hacker News API base.
	DefaultHackerNewsURL = "https://hacker-news.firebaseio.com/v0"

	topStoryCount = 20
)

type hackerNewsStory struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	By          string `json:"by"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
}

// TrendsCollector samples the Hacker News front page into trend
// observations: rank is the front-page position, volume the points.
type TrendsCollector struct {
	trends    database.TrendRepository
	ingestor  *Ingestor
	client    *http.Client
	baseURL   string
	userAgent string
}

func NewTrendsCollector(trends database.TrendRepository, ingestor *Ingestor, client *http.Client, baseURL, userAgent string) *TrendsCollector {
	if baseURL == "" {
		baseURL = DefaultHackerNewsURL
	}
	return &TrendsCollector{
		trends:    trends,
		ingestor:  ingestor,
		client:    client,
		baseURL:   baseURL,
		userAgent: userAgent,
	}
}

// Collect fetches the current top stories and stores one trend record
// per story. A failing story is skipped; a failing listing fails the
// run.
func (c *TrendsCollector) Collect(ctx context.Context) int {
	ids, err := c.topStoryIDs(ctx)
	if err != nil {
		slog.Error("Trend collection failed", "source", "hackernews", "kind", errs.KindOf(err), "error", err)
		c.ingestor.RecordFailure("trends", "hackernews", err)
		return 0
	}

	if len(ids) > topStoryCount {
		ids = ids[:topStoryCount]
	}

	collected := 0
	for i, id := range ids {
		story, err := c.fetchStory(ctx, id)
		if err != nil {
			slog.Error("Failed to fetch story", "id", id, "error", err)
			continue
		}
		if story.Title == "" {
			continue
		}

		rank := i + 1
		err = c.trends.StoreTrend(story.Title, "hackernews", &rank, story.Score, meta.Map{
			"url":         meta.String(story.URL),
			"by":          meta.String(story.By),
			"comments":    meta.Number(float64(story.Descendants)),
			"source_type": meta.String("tech_news"),
		})
		if err != nil {
			slog.Error("Failed to store trend", "topic", story.Title, "error", err)
			continue
		}
		collected++
	}

	c.ingestor.logRun("trends", "hackernews", collected, nil)
	slog.Info("Trends collected", "source", "hackernews", "count", collected)
	return collected
}

func (c *TrendsCollector) topStoryIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := c.getJSON(ctx, c.baseURL+"/topstories.json", &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *TrendsCollector) fetchStory(ctx context.Context, id int64) (*hackerNewsStory, error) {
	var story hackerNewsStory
	if err := c.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", c.baseURL, id), &story); err != nil {
		return nil, err
	}
	return &story, nil
}

func (c *TrendsCollector) getJSON(ctx context.Context, url string, out interface{}) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return errs.Wrap(errs.KindNetwork, err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return errs.Wrap(errs.KindNetwork, err, fmt.Sprintf("failed to fetch %s", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errs.New(errs.KindNetwork, fmt.Sprintf("HTTP error: %d %s", resp.StatusCode, resp.Status))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Wrap(errs.KindParse, err, fmt.Sprintf("failed to decode %s", url))
	}
	return nil
}
