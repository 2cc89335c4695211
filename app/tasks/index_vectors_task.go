package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openclaw/newsbrief/app/vector"
)

type IndexVectorsTask struct {
	Task
	index *vector.Index
	hours int
	force bool
}

func NewIndexVectorsTask(index *vector.Index, hours int, force bool) *IndexVectorsTask {
	return &IndexVectorsTask{
		Task:  NewTask(TaskTypeIndexVectors),
		index: index,
		hours: hours,
		force: force,
	}
}

func (t *IndexVectorsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	indexed, err := t.index.IndexRecent(ctx, t.hours, t.force)
	if err != nil {
		return fmt.Errorf("failed to index recent news: %w", err)
	}

	slog.Info("Task completed",
		"type", string(TaskTypeIndexVectors),
		"duration", t.GetDuration(),
		"indexed", indexed,
		"force", t.force)

	return nil
}
