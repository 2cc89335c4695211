package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ CollectionLogRepository = (*SQLCollectionLogRepository)(nil)

// SQLCollectionLogRepository handles the append-only audit log of
// collection runs.
type SQLCollectionLogRepository struct {
	db *DB
}

func NewCollectionLogRepository(db *DB) *SQLCollectionLogRepository {
	return &SQLCollectionLogRepository{db: db}
}

func (r *SQLCollectionLogRepository) LogRun(sourceType, sourceName string, itemsCollected int, runErr error) error {
	status := "success"
	var errorMessage interface{}
	if runErr != nil {
		status = "error"
		errorMessage = runErr.Error()
	}

	_, err := r.db.Exec(`
		INSERT INTO collections
		(collection_date, source_type, source_name, items_collected, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?)
	`, time.Now().UTC().Format("2006-01-02"), sourceType, sourceName,
		itemsCollected, status, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to log collection run: %w", err)
	}

	return nil
}

func (r *SQLCollectionLogRepository) GetRecentRuns(limit int) ([]CollectionLog, error) {
	rows, err := r.db.Query(`
		SELECT id, collection_date, source_type, source_name,
		       items_collected, status, error_message, created_at
		FROM collections
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection runs: %w", err)
	}
	defer rows.Close()

	var logs []CollectionLog
	for rows.Next() {
		var entry CollectionLog
		var errorMessage sql.NullString
		var createdAt string

		err := rows.Scan(&entry.ID, &entry.CollectionDate, &entry.SourceType,
			&entry.SourceName, &entry.ItemsCollected, &entry.Status,
			&errorMessage, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection run row: %w", err)
		}

		entry.ErrorMessage = errorMessage.String
		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}

		logs = append(logs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection run rows: %w", err)
	}

	return logs, nil
}
