package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/openclaw/newsbrief/app/database"
	"github.com/openclaw/newsbrief/app/errs"
)

// indexFetchLimit bounds how many recent records one indexing pass
// considers.
const indexFetchLimit = 1000

// ItemMeta is the denormalized record snapshot captured at indexing
// time, kept beside each vector so queries need no store round trip.
type ItemMeta struct {
	ContentHash     string    `json:"content_hash"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	Source          string    `json:"source"`
	Category        string    `json:"category"`
	PublishedAt     time.Time `json:"published_at"`
	ImportanceScore float64   `json:"importance_score"`
}

// Result is one similarity hit.
type Result struct {
	Similarity float64 `json:"similarity"`
	ItemMeta
}

// ClusterItem is one member of a topic cluster.
type ClusterItem struct {
	ContentHash     string  `json:"content_hash"`
	Title           string  `json:"title"`
	Source          string  `json:"source"`
	Category        string  `json:"category"`
	ImportanceScore float64 `json:"importance_score"`
}

// Stats describes the current index state.
type Stats struct {
	TotalVectors        int    `json:"total_vectors"`
	Model               string `json:"model"`
	Dimension           int    `json:"dimension"`
	ClusteringAvailable bool   `json:"clustering_available"`
}

type snapshotFile struct {
	Model     string               `json:"model"`
	Dimension int                  `json:"dimension"`
	Vectors   map[string][]float32 `json:"vectors"`
	Metadata  map[string]ItemMeta  `json:"metadata"`
}

// Index is the embedding index: contentHash -> vector plus a metadata
// snapshot, fully in memory, persisted to one snapshot file on every
// mutation. The internal mutex is the serialization strategy for index
// mutation; readers may run concurrently with each other.
type Index struct {
	mu      sync.RWMutex
	path    string
	encoder Encoder
	news    database.NewsRepository

	vectors  map[string][]float32
	metadata map[string]ItemMeta
}

func NewIndex(path string, encoder Encoder, news database.NewsRepository) *Index {
	return &Index{
		path:     path,
		encoder:  encoder,
		news:     news,
		vectors:  make(map[string][]float32),
		metadata: make(map[string]ItemMeta),
	}
}

// Load reads the snapshot file. A missing file starts an empty index.
// A snapshot written by a different encoder model or dimension is
// discarded: the vectors are not comparable, so the index starts empty
// and a forced reindex rebuilds it.
func (x *Index) Load() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	data, err := os.ReadFile(x.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errs.Wrap(errs.KindStorage, err, "failed to read index snapshot")
	}

	var snapshot snapshotFile
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return errs.Wrap(errs.KindParse, err, "failed to parse index snapshot")
	}

	if snapshot.Model != x.encoder.Model() || snapshot.Dimension != x.encoder.Dimension() {
		slog.Warn("Index snapshot model mismatch, starting empty",
			"snapshot_model", snapshot.Model,
			"encoder_model", x.encoder.Model())
		return nil
	}

	if snapshot.Vectors != nil {
		x.vectors = snapshot.Vectors
	}
	if snapshot.Metadata != nil {
		x.metadata = snapshot.Metadata
	}

	slog.Info("Loaded index snapshot", "vectors", len(x.vectors), "path", x.path)
	return nil
}

// save persists the whole index atomically. Callers hold the write lock.
func (x *Index) save() error {
	snapshot := snapshotFile{
		Model:     x.encoder.Model(),
		Dimension: x.encoder.Dimension(),
		Vectors:   x.vectors,
		Metadata:  x.metadata,
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return errs.Wrap(errs.KindStorage, err, "failed to encode index snapshot")
	}

	if dir := filepath.Dir(x.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Wrap(errs.KindStorage, err, "failed to create snapshot directory")
		}
	}

	tmp := x.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errs.Wrap(errs.KindStorage, err, "failed to write index snapshot")
	}
	if err := os.Rename(tmp, x.path); err != nil {
		return errs.Wrap(errs.KindStorage, err, "failed to replace index snapshot")
	}

	return nil
}

// IndexRecent pulls recent news records from the store, embeds the ones
// without a vector (all of them when force is set), and persists the
// grown index. Returns the count of newly indexed items. An encode
// failure aborts only this batch; already committed vectors stay.
func (x *Index) IndexRecent(ctx context.Context, hours int, force bool) (int, error) {
	items, err := x.news.GetRecentNews(hours, "", 0, indexFetchLimit)
	if err != nil {
		return 0, errs.Wrap(errs.KindStorage, err, "failed to fetch recent news for indexing")
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	var texts []string
	var pending []ItemMeta
	for _, item := range items {
		hash := item.ContentHash
		if hash == "" {
			hash = database.ContentHash(item.Title, item.URL, item.Source)
		}
		if _, exists := x.vectors[hash]; exists && !force {
			continue
		}

		texts = append(texts, item.Title+" "+item.Content)
		pending = append(pending, ItemMeta{
			ContentHash:     hash,
			Title:           item.Title,
			URL:             item.URL,
			Source:          item.Source,
			Category:        item.Category,
			PublishedAt:     item.PublishedAt,
			ImportanceScore: item.ImportanceScore,
		})
	}

	if len(texts) == 0 {
		slog.Debug("No new items to index")
		return 0, nil
	}

	vectors, err := x.encoder.Encode(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to encode batch of %d texts: %w", len(texts), err)
	}

	for i, vector := range vectors {
		x.vectors[pending[i].ContentHash] = vector
		x.metadata[pending[i].ContentHash] = pending[i]
	}

	if err := x.save(); err != nil {
		return 0, err
	}

	slog.Info("Indexed news items", "new", len(vectors), "total", len(x.vectors))
	return len(vectors), nil
}

// Search embeds the query once and scans every stored vector. Results
// below minScore or outside the requested category are dropped; the top
// topK remain, sorted by similarity descending. Ordering is
// deterministic at fixed index state (hash breaks ties).
func (x *Index) Search(ctx context.Context, query string, topK int, category string, minScore float64) ([]Result, error) {
	queryVectors, err := x.encoder.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	queryVector := queryVectors[0]

	x.mu.RLock()
	defer x.mu.RUnlock()

	var results []Result
	for hash, vector := range x.vectors {
		m, ok := x.metadata[hash]
		if !ok {
			continue
		}
		if category != "" && m.Category != category {
			continue
		}

		similarity := Cosine(queryVector, vector)
		if similarity < minScore {
			continue
		}

		results = append(results, Result{Similarity: similarity, ItemMeta: m})
	}

	sortResults(results)
	if topK >= 0 && len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// FindSimilar returns the topK nearest neighbors of an already indexed
// item. An unknown hash is an empty result, not an error: callers probe
// for existence.
func (x *Index) FindSimilar(contentHash string, topK int) []Result {
	x.mu.RLock()
	defer x.mu.RUnlock()

	target, ok := x.vectors[contentHash]
	if !ok {
		slog.Debug("Content hash not indexed", "hash", contentHash)
		return nil
	}

	var results []Result
	for hash, vector := range x.vectors {
		if hash == contentHash {
			continue
		}
		m, ok := x.metadata[hash]
		if !ok {
			continue
		}
		results = append(results, Result{
			Similarity: Cosine(target, vector),
			ItemMeta:   m,
		})
	}

	sortResults(results)
	if topK >= 0 && len(results) > topK {
		results = results[:topK]
	}

	return results
}

// CleanupOlderThan removes vectors whose denormalized published time
// predates the cutoff (midnight UTC, days back) and persists the pruned
// index. Returns the removed count.
func (x *Index) CleanupOlderThan(days int) (int, error) {
	cutoff := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -days)

	x.mu.Lock()
	defer x.mu.Unlock()

	var toRemove []string
	for hash, m := range x.metadata {
		if m.PublishedAt.Before(cutoff) {
			toRemove = append(toRemove, hash)
		}
	}

	for _, hash := range toRemove {
		delete(x.vectors, hash)
		delete(x.metadata, hash)
	}

	if len(toRemove) > 0 {
		if err := x.save(); err != nil {
			return 0, err
		}
		slog.Info("Removed old vectors", "removed", len(toRemove), "cutoff", cutoff)
	}

	return len(toRemove), nil
}

// Size returns the number of indexed vectors.
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

// Stats returns the current index state for dashboards.
func (x *Index) Stats() Stats {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return Stats{
		TotalVectors:        len(x.vectors),
		Model:               x.encoder.Model(),
		Dimension:           x.encoder.Dimension(),
		ClusteringAvailable: true,
	}
}

func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ContentHash < results[j].ContentHash
	})
}
