// Package collector gathers news candidates from external sources and
// feeds them into the record store through a single ingestion boundary.
package collector

import (
	"log/slog"
	"time"

	"github.com/openclaw/newsbrief/app/database"
	"github.com/openclaw/newsbrief/app/scoring"
)

// Ingestor is the sole writer of derived record fields: collected time,
// importance score, and content hash. Collectors hand over raw
// candidates and never touch these.
type Ingestor struct {
	news    database.NewsRepository
	logs    database.CollectionLogRepository
	scoring *scoring.Config
}

func NewIngestor(news database.NewsRepository, logs database.CollectionLogRepository, scoringConfig *scoring.Config) *Ingestor {
	return &Ingestor{news: news, logs: logs, scoring: scoringConfig}
}

// Ingest scores and stores the candidates, logs the run, and returns
// the count of newly inserted items. A failing candidate is logged and
// skipped; one bad item never aborts the batch.
func (ing *Ingestor) Ingest(sourceType, sourceName string, candidates []Candidate) int {
	now := time.Now().UTC()

	collected := 0
	for _, candidate := range candidates {
		item := database.NewsItem{
			Title:       candidate.Title,
			URL:         candidate.URL,
			Content:     candidate.Content,
			Source:      candidate.Source,
			Category:    candidate.Category,
			PublishedAt: candidate.PublishedAt,
			Keywords:    candidate.Keywords,
			Metadata:    candidate.Metadata,
			CollectedAt: now,
		}
		if item.PublishedAt.IsZero() {
			item.PublishedAt = now
		}
		item.ImportanceScore = scoring.Score(scoring.Input{
			Title:    candidate.Title,
			Content:  candidate.Content,
			Keywords: candidate.Keywords,
			Source:   candidate.Source,
		}, ing.scoring)
		item.ContentHash = database.ContentHash(item.Title, item.URL, item.Source)

		inserted, err := ing.news.StoreItem(item)
		if err != nil {
			slog.Error("Failed to store news item", "source", sourceName, "title", candidate.Title, "error", err)
			continue
		}
		if inserted {
			collected++
		}
	}

	ing.logRun(sourceType, sourceName, collected, nil)
	return collected
}

// RecordFailure logs a failed collection run. Collectors call this when
// a source cannot be fetched or parsed at all.
func (ing *Ingestor) RecordFailure(sourceType, sourceName string, err error) {
	ing.logRun(sourceType, sourceName, 0, err)
}

// logRun appends to the collection audit trail. Audit failures are
// logged and swallowed so bookkeeping never fails a batch.
func (ing *Ingestor) logRun(sourceType, sourceName string, collected int, runErr error) {
	if err := ing.logs.LogRun(sourceType, sourceName, collected, runErr); err != nil {
		slog.Warn("Failed to log collection run", "source", sourceName, "error", err)
	}
}
