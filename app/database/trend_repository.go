package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/openclaw/newsbrief/app/meta"
)

var _ TrendRepository = (*SQLTrendRepository)(nil)

// SQLTrendRepository handles database operations for trending topics
type SQLTrendRepository struct {
	db *DB
}

func NewTrendRepository(db *DB) *SQLTrendRepository {
	return &SQLTrendRepository{db: db}
}

func (r *SQLTrendRepository) StoreTrend(topic, source string, rank *int, volume int, metadata meta.Map) error {
	encoded, err := metadata.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode trend metadata: %w", err)
	}

	var rankValue interface{}
	if rank != nil {
		rankValue = *rank
	}

	_, err = r.db.Exec(`
		INSERT INTO trends (topic, source, rank, volume, detected_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
	`, topic, source, rankValue, volume, formatTime(time.Now().UTC()), encoded)
	if err != nil {
		return fmt.Errorf("failed to store trend: %w", err)
	}

	return nil
}

func (r *SQLTrendRepository) GetTrendingTopics(hours int, source string) ([]Trend, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	query := `
		SELECT id, topic, source, rank, volume, detected_at, metadata, created_at
		FROM trends
		WHERE detected_at > ?`
	args := []interface{}{formatTime(cutoff)}

	if source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}

	// Unranked trends sort after ranked ones within the same timestamp.
	query += " ORDER BY detected_at DESC, rank IS NULL, rank ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trends: %w", err)
	}
	defer rows.Close()

	var trends []Trend
	for rows.Next() {
		var trend Trend
		var rank sql.NullInt64
		var detectedAt, createdAt, metadata string

		err := rows.Scan(&trend.ID, &trend.Topic, &trend.Source, &rank,
			&trend.Volume, &detectedAt, &metadata, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trend row: %w", err)
		}

		if rank.Valid {
			value := int(rank.Int64)
			trend.Rank = &value
		}
		if trend.DetectedAt, err = parseTime(detectedAt); err != nil {
			return nil, err
		}
		if trend.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if trend.Metadata, err = meta.Decode(metadata); err != nil {
			return nil, err
		}

		trends = append(trends, trend)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trend rows: %w", err)
	}

	return trends, nil
}
