package queue

import (
	"context"
	"errors"
	"time"

	"cfp-api/core/config"
	"cfp-api/core/logger"
	"cfp-api/core/metrics"

	"github.com/hibiken/asynq"
)

// Dispatcher submits background work. Enqueue returns once the task is
// stored; callers never wait for the result.
type Dispatcher interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error
}

type AsynqDispatcher struct {
	client   *asynq.Client
	maxRetry int
}

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}

func NewDispatcher(cfg *config.Config) *AsynqDispatcher {
	return &AsynqDispatcher{
		client:   asynq.NewClient(RedisOpt(cfg.Redis)),
		maxRetry: cfg.Queue.MaxRetry,
	}
}

func (d *AsynqDispatcher) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	opts = append([]asynq.Option{asynq.MaxRetry(d.maxRetry), asynq.Timeout(10 * time.Minute)}, opts...)
	info, err := d.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		logger.Error("Queue:Enqueue", "type", task.Type(), "error", err)
		metrics.TaskEnqueueErrors.WithLabelValues(task.Type()).Inc()
		return err
	}
	logger.Debug("Queue:Enqueue", "type", task.Type(), "id", info.ID, "queue", info.Queue)
	metrics.TasksEnqueued.WithLabelValues(task.Type()).Inc()
	return nil
}

func (d *AsynqDispatcher) Close() error {
	return d.client.Close()
}

// EnqueueAfterCommit is the fire-and-forget call used by services once
// their transaction is committed. Failures are logged, never returned.
func EnqueueAfterCommit(ctx context.Context, d Dispatcher, task *asynq.Task, buildErr error) {
	if buildErr != nil {
		logger.Error("Queue:EnqueueAfterCommit:Build", buildErr)
		return
	}
	if d == nil {
		return
	}
	if err := d.Enqueue(ctx, task); err != nil {
		logger.Warn("Queue:EnqueueAfterCommit", "type", task.Type(), "error", err)
	}
}

func NewServer(cfg *config.Config) *asynq.Server {
	return asynq.NewServer(RedisOpt(cfg.Redis), asynq.Config{
		Concurrency: cfg.Queue.Concurrency,
		Queues: map[string]int{
			"default": 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Error("Queue:TaskFailed",
				"type", task.Type(),
				"retry", retried,
				"max_retry", maxRetry,
				"skip_retry", errors.Is(err, asynq.SkipRetry),
				"error", err,
			)
		}),
	})
}

func NewServeMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(instrument)
	return mux
}

func instrument(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		start := time.Now()
		err := next.ProcessTask(ctx, t)
		status := "success"
		if err != nil {
			status = "failure"
		}
		metrics.TasksProcessed.WithLabelValues(t.Type(), status).Inc()
		metrics.TaskDuration.WithLabelValues(t.Type()).Observe(time.Since(start).Seconds())
		return err
	})
}

// NewScheduler registers the periodic tasks.
func NewScheduler(cfg *config.Config) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(RedisOpt(cfg.Redis), &asynq.SchedulerOpts{
		Location: time.UTC,
	})
	if cfg.Queue.MetricsSnapshotCron != "" {
		if _, err := scheduler.Register(cfg.Queue.MetricsSnapshotCron, NewSnapshotMetricsTask()); err != nil {
			return nil, err
		}
	}
	return scheduler, nil
}
