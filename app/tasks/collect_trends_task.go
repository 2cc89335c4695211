package tasks

import (
	"context"
	"log/slog"

	"github.com/openclaw/newsbrief/app/collector"
)

type CollectTrendsTask struct {
	Task
	trendsCollector *collector.TrendsCollector
}

func NewCollectTrendsTask(trendsCollector *collector.TrendsCollector) *CollectTrendsTask {
	return &CollectTrendsTask{
		Task:            NewTask(TaskTypeCollectTrends),
		trendsCollector: trendsCollector,
	}
}

func (t *CollectTrendsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	collected := t.trendsCollector.Collect(ctx)

	slog.Info("Task completed",
		"type", string(TaskTypeCollectTrends),
		"duration", t.GetDuration(),
		"new", collected)

	return nil
}
