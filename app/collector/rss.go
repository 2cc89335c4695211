package collector

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"github.com/openclaw/newsbrief/app/errs"
	"github.com/openclaw/newsbrief/app/meta"
)

const fetchTimeout = 30 * time.Second

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// RSSCollector fetches configured RSS/Atom feeds and turns their
// entries into ingestion candidates.
type RSSCollector struct {
	sources   *SourcesConfig
	ingestor  *Ingestor
	client    *http.Client
	parser    *gofeed.Parser
	userAgent string
}

func NewRSSCollector(sources *SourcesConfig, ingestor *Ingestor, client *http.Client, userAgent string) *RSSCollector {
	return &RSSCollector{
		sources:   sources,
		ingestor:  ingestor,
		client:    client,
		parser:    gofeed.NewParser(),
		userAgent: userAgent,
	}
}

// CollectAll processes every configured feed. Feed failures are
// isolated: one unreachable source never stops the others.
func (c *RSSCollector) CollectAll(ctx context.Context) map[string]int {
	results := make(map[string]int)
	for _, source := range c.sources.Feeds() {
		results[source.Name] = c.CollectFeed(ctx, source)
	}

	total := 0
	for _, count := range results {
		total += count
	}
	slog.Info("Feed collection finished", "feeds", len(results), "new_items", total)

	return results
}

// CollectFeed fetches and ingests one feed, returning the count of
// newly stored items.
func (c *RSSCollector) CollectFeed(ctx context.Context, source FeedSource) int {
	candidates, err := c.fetchCandidates(ctx, source)
	if err != nil {
		slog.Error("Feed collection failed", "feed", source.Name, "kind", errs.KindOf(err), "error", err)
		c.ingestor.RecordFailure("rss", source.Name, err)
		return 0
	}

	collected := c.ingestor.Ingest("rss", source.Name, candidates)
	slog.Info("Feed collected", "feed", source.Name, "entries", len(candidates), "new", collected)
	return collected
}

func (c *RSSCollector) fetchCandidates(ctx context.Context, source FeedSource) ([]Candidate, error) {
	data, err := c.fetch(ctx, source.URL)
	if err != nil {
		return nil, err
	}

	feed, err := c.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Wrap(errs.KindParse, err, fmt.Sprintf("failed to parse feed %s", source.Name))
	}

	candidates := make([]Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		candidates = append(candidates, c.toCandidate(item, source))
	}
	return candidates, nil
}

func (c *RSSCollector) fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindNetwork, err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.KindNetwork, err, fmt.Sprintf("failed to fetch %s", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.New(errs.KindNetwork, fmt.Sprintf("HTTP error: %d %s", resp.StatusCode, resp.Status))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.KindNetwork, err, "failed to read response body")
	}
	return data, nil
}

func (c *RSSCollector) toCandidate(item *gofeed.Item, source FeedSource) Candidate {
	content := item.Content
	if content == "" {
		content = item.Description
	}

	candidate := Candidate{
		Title:    item.Title,
		URL:      item.Link,
		Content:  cleanContent(content),
		Source:   source.Name,
		Category: source.Category,
		Keywords: item.Categories,
		Metadata: meta.Map{
			"rss_id":     meta.String(feedEntryID(item)),
			"author":     meta.String(feedAuthor(item)),
			"source_url": meta.String(item.Link),
		},
	}

	if item.PublishedParsed != nil {
		candidate.PublishedAt = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		candidate.PublishedAt = item.UpdatedParsed.UTC()
	}

	return candidate
}

// cleanContent turns feed HTML into plain text. Substantial fragments
// go through readability; anything it cannot handle falls back to tag
// stripping.
func cleanContent(raw string) string {
	if raw == "" {
		return ""
	}

	if strings.Contains(raw, "<") {
		if article, err := readability.FromReader(strings.NewReader(raw), nil); err == nil && article.TextContent != "" {
			return normalizeWhitespace(article.TextContent)
		}
		raw = htmlTagPattern.ReplaceAllString(raw, " ")
	}

	return normalizeWhitespace(html.UnescapeString(raw))
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func feedEntryID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	return item.Link
}

func feedAuthor(item *gofeed.Item) string {
	if item.Author != nil {
		return item.Author.Name
	}
	return ""
}
