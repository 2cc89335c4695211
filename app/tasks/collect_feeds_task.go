package tasks

import (
	"context"
	"log/slog"

	"github.com/openclaw/newsbrief/app/collector"
)

type CollectFeedsTask struct {
	Task
	rssCollector *collector.RSSCollector
}

func NewCollectFeedsTask(rssCollector *collector.RSSCollector) *CollectFeedsTask {
	return &CollectFeedsTask{
		Task:         NewTask(TaskTypeCollectFeeds),
		rssCollector: rssCollector,
	}
}

func (t *CollectFeedsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	results := t.rssCollector.CollectAll(ctx)

	total := 0
	for _, count := range results {
		total += count
	}

	slog.Info("Task completed",
		"type", string(TaskTypeCollectFeeds),
		"duration", t.GetDuration(),
		"feeds", len(results),
		"new", total)

	return nil
}
