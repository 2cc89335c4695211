package collector

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openclaw/newsbrief/app/errs"
	"github.com/openclaw/newsbrief/app/meta"
)

// Candidate is one collected item before ingestion. Collectors fill
// these in; the ingestor owns the derived fields (collected time,
// importance score, content hash).
type Candidate struct {
	Title       string
	URL         string
	Content     string
	Source      string
	Category    string
	PublishedAt time.Time
	Keywords    []string
	Metadata    meta.Map
}

// FeedSource is one configured RSS feed.
type FeedSource struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

// SourcesConfig is the external feed list, grouped by category.
type SourcesConfig struct {
	RSSFeeds map[string][]FeedSource `yaml:"rss_feeds"`
}

// LoadSources reads the feed configuration file. Feeds missing an
// explicit category inherit their group key.
func LoadSources(path string) (*SourcesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, err, fmt.Sprintf("failed to read sources file %s", path))
	}

	var config SourcesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errs.Wrap(errs.KindParse, err, fmt.Sprintf("failed to parse sources file %s", path))
	}

	for category, feeds := range config.RSSFeeds {
		for i := range feeds {
			if feeds[i].Category == "" {
				feeds[i].Category = category
			}
		}
		config.RSSFeeds[category] = feeds
	}

	return &config, nil
}

// Feeds flattens the configured feeds across all categories.
func (c *SourcesConfig) Feeds() []FeedSource {
	var feeds []FeedSource
	for _, group := range c.RSSFeeds {
		feeds = append(feeds, group...)
	}
	return feeds
}

// CategoryFeeds returns the feeds configured under one category.
func (c *SourcesConfig) CategoryFeeds(category string) []FeedSource {
	return c.RSSFeeds[category]
}
