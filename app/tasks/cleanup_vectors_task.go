package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openclaw/newsbrief/app/vector"
)

type CleanupVectorsTask struct {
	Task
	index *vector.Index
	days  int
}

func NewCleanupVectorsTask(index *vector.Index, days int) *CleanupVectorsTask {
	return &CleanupVectorsTask{
		Task:  NewTask(TaskTypeCleanupVectors),
		index: index,
		days:  days,
	}
}

func (t *CleanupVectorsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	removed, err := t.index.CleanupOlderThan(t.days)
	if err != nil {
		return fmt.Errorf("failed to clean up vectors: %w", err)
	}

	slog.Info("Task completed",
		"type", string(TaskTypeCleanupVectors),
		"duration", t.GetDuration(),
		"removed", removed,
		"retention_days", t.days)

	return nil
}
