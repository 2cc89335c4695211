package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/openclaw/newsbrief/app/meta"
)

var _ NewsRepository = (*SQLNewsRepository)(nil)

// SQLNewsRepository handles database operations for news items
type SQLNewsRepository struct {
	db *DB
}

func NewNewsRepository(db *DB) *SQLNewsRepository {
	return &SQLNewsRepository{db: db}
}

func (r *SQLNewsRepository) StoreItem(item NewsItem) (bool, error) {
	if item.ContentHash == "" {
		item.ContentHash = ContentHash(item.Title, item.URL, item.Source)
	}

	keywords, err := json.Marshal(item.Keywords)
	if err != nil {
		return false, fmt.Errorf("failed to encode keywords: %w", err)
	}
	metadata, err := item.Metadata.Encode()
	if err != nil {
		return false, fmt.Errorf("failed to encode metadata: %w", err)
	}

	// The unique constraint on content_hash, not application locking,
	// decides "already seen": concurrent inserts of the same item leave
	// exactly one row.
	result, err := r.db.Exec(`
		INSERT OR IGNORE INTO news_items (
			title, url, content, source, category, published_at,
			collected_at, importance_score, keywords, metadata, content_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.Title, item.URL, item.Content, item.Source, item.Category,
		formatTime(item.PublishedAt), formatTime(item.CollectedAt),
		item.ImportanceScore, string(keywords), metadata, item.ContentHash)
	if err != nil {
		return false, fmt.Errorf("failed to store news item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *SQLNewsRepository) GetRecentNews(hours int, category string, minImportance float64, limit int) ([]NewsItem, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	query := `
		SELECT id, title, url, content, source, category, published_at,
		       collected_at, importance_score, keywords, metadata,
		       content_hash, created_at
		FROM news_items
		WHERE published_at > ?`
	args := []interface{}{formatTime(cutoff)}

	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	if minImportance > 0 {
		query += " AND importance_score >= ?"
		args = append(args, minImportance)
	}

	query += " ORDER BY importance_score DESC, published_at DESC LIMIT ?"
	args = append(args, limit)

	return r.queryItems(query, args...)
}

func (r *SQLNewsRepository) SearchNews(query, category string, days, limit int) ([]NewsItem, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	pattern := "%" + query + "%"

	// LIKE on TEXT columns is case-insensitive for ASCII in sqlite.
	sqlQuery := `
		SELECT id, title, url, content, source, category, published_at,
		       collected_at, importance_score, keywords, metadata,
		       content_hash, created_at
		FROM news_items
		WHERE (title LIKE ? OR content LIKE ?)
		  AND published_at > ?`
	args := []interface{}{pattern, pattern, formatTime(cutoff)}

	if category != "" {
		sqlQuery += " AND category = ?"
		args = append(args, category)
	}

	sqlQuery += " ORDER BY importance_score DESC, published_at DESC LIMIT ?"
	args = append(args, limit)

	return r.queryItems(sqlQuery, args...)
}

func (r *SQLNewsRepository) GetStats() (*Stats, error) {
	stats := &Stats{ByCategory: make(map[string]int)}
	cutoff := formatTime(time.Now().UTC().Add(-24 * time.Hour))

	err := r.db.QueryRow("SELECT COUNT(*) FROM news_items").Scan(&stats.TotalNewsItems)
	if err != nil {
		return nil, fmt.Errorf("failed to count news items: %w", err)
	}

	err = r.db.QueryRow("SELECT COUNT(*) FROM news_items WHERE published_at > ?", cutoff).Scan(&stats.NewsItems24h)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent news items: %w", err)
	}

	rows, err := r.db.Query("SELECT category, COUNT(*) FROM news_items GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to count by category: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		stats.ByCategory[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category counts: %w", err)
	}

	err = r.db.QueryRow("SELECT COUNT(*) FROM trends").Scan(&stats.TotalTrends)
	if err != nil {
		return nil, fmt.Errorf("failed to count trends: %w", err)
	}

	err = r.db.QueryRow("SELECT COUNT(*) FROM trends WHERE detected_at > ?", cutoff).Scan(&stats.Trends24h)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent trends: %w", err)
	}

	return stats, nil
}

func (r *SQLNewsRepository) queryItems(query string, args ...interface{}) ([]NewsItem, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query news items: %w", err)
	}
	defer rows.Close()

	var items []NewsItem
	for rows.Next() {
		var item NewsItem
		var publishedAt, collectedAt, createdAt, keywords, metadata string

		err := rows.Scan(
			&item.ID, &item.Title, &item.URL, &item.Content, &item.Source,
			&item.Category, &publishedAt, &collectedAt,
			&item.ImportanceScore, &keywords, &metadata,
			&item.ContentHash, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan news item row: %w", err)
		}

		if item.PublishedAt, err = parseTime(publishedAt); err != nil {
			return nil, err
		}
		if item.CollectedAt, err = parseTime(collectedAt); err != nil {
			return nil, err
		}
		if item.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(keywords), &item.Keywords); err != nil {
			return nil, fmt.Errorf("failed to decode keywords: %w", err)
		}
		if item.Metadata, err = meta.Decode(metadata); err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating news item rows: %w", err)
	}

	return items, nil
}
