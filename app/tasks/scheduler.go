package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/openclaw/newsbrief/app/cfg"
	"github.com/openclaw/newsbrief/app/collector"
	"github.com/openclaw/newsbrief/app/vector"
)

const cleanupInterval = 24 * time.Hour

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs the background pipeline on a worker pool: periodic
// feed and trend collection, vector indexing, and daily vector cleanup.
// All index mutation flows through the queue, so one forced reindex
// never races a periodic pass.
type Scheduler struct {
	rssCollector    *collector.RSSCollector
	trendsCollector *collector.TrendsCollector
	index           *vector.Index
	interval        time.Duration
	workerCount     int
	indexWindow     int
	retentionDays   int
	lastCleanup     time.Time
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	taskQueue       chan TaskInterface
}

func NewScheduler(rssCollector *collector.RSSCollector, trendsCollector *collector.TrendsCollector,
	index *vector.Index) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		rssCollector:    rssCollector,
		trendsCollector: trendsCollector,
		index:           index,
		interval:        time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:     cfg.WorkerCount,
		indexWindow:     cfg.IndexWindowHours,
		retentionDays:   cfg.RetentionDays,
		ctx:             ctx,
		cancel:          cancel,
		taskQueue:       make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// enqueueTasks submits one collection and indexing round, plus a
// cleanup pass at most once per day.
func (s *Scheduler) enqueueTasks() {
	if err := s.EnqueueTask(NewCollectFeedsTask(s.rssCollector)); err != nil {
		slog.Warn("Failed to enqueue CollectFeedsTask", "error", err)
	}
	if err := s.EnqueueTask(NewCollectTrendsTask(s.trendsCollector)); err != nil {
		slog.Warn("Failed to enqueue CollectTrendsTask", "error", err)
	}
	if err := s.EnqueueTask(NewIndexVectorsTask(s.index, s.indexWindow, false)); err != nil {
		slog.Warn("Failed to enqueue IndexVectorsTask", "error", err)
	}

	now := time.Now().UTC()
	if now.Sub(s.lastCleanup) >= cleanupInterval {
		if err := s.EnqueueTask(NewCleanupVectorsTask(s.index, s.retentionDays)); err != nil {
			slog.Warn("Failed to enqueue CleanupVectorsTask", "error", err)
		} else {
			s.lastCleanup = now
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
