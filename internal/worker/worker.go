package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"news_ingest/internal/logger"
	"news_ingest/internal/models"
)

// Pipeline — операции оркестратора, которые выполняет воркер.
type Pipeline interface {
	AggregateFromSource(ctx context.Context, sourceName string) error
	SyncCategoriesFromSource(ctx context.Context, sourceName string) error
}

// Leaser — single-flight лизинг в общем хранилище.
type Leaser interface {
	AcquireLease(ctx context.Context, kind, sourceName string, ttl time.Duration) (bool, error)
	ReleaseLease(ctx context.Context, kind, sourceName string) error
}

// Worker обрабатывает задачи из очереди: fetch-задачи под лизингом и
// с жёстким таймаутом, sync-задачи без лизинга.
type Worker struct {
	pipeline   Pipeline
	leaser     Leaser
	jobTimeout time.Duration
	leaseTTL   time.Duration
}

func NewWorker(pipeline Pipeline, leaser Leaser, jobTimeout, leaseTTL time.Duration) *Worker {
	return &Worker{
		pipeline:   pipeline,
		leaser:     leaser,
		jobTimeout: jobTimeout,
		leaseTTL:   leaseTTL,
	}
}

func (w *Worker) HandleTask(body []byte) error {
	var task models.Task
	if err := json.Unmarshal(body, &task); err != nil {
		return fmt.Errorf("decode task: %w", err)
	}

	log := logger.WithSource(task.Source).WithField("kind", task.Kind)

	switch task.Kind {
	case models.TaskFetch:
		return w.handleFetch(task, log)
	case models.TaskSyncCategories:
		return w.handleSync(task, log)
	default:
		return fmt.Errorf("unknown task kind: %s", task.Kind)
	}
}

func (w *Worker) handleFetch(task models.Task, log *logger.Entry) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.jobTimeout)
	defer cancel()

	acquired, err := w.leaser.AcquireLease(ctx, task.Kind, task.Source, w.leaseTTL)
	if err != nil {
		return fmt.Errorf("acquire lease: %w", err)
	}
	if !acquired {
		// Прогон для этого источника ещё не завершился — задача схлопывается.
		log.Info("Fetch already in flight, task dropped")
		return nil
	}
	defer func() {
		releaseCtx, releaseCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer releaseCancel()
		if err := w.leaser.ReleaseLease(releaseCtx, task.Kind, task.Source); err != nil {
			log.Errorf("Release lease failed: %v", err)
		}
	}()

	log.Info("Task started")
	return w.pipeline.AggregateFromSource(ctx, task.Source)
}

func (w *Worker) handleSync(task models.Task, log *logger.Entry) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.jobTimeout)
	defer cancel()

	log.Info("Task started")
	return w.pipeline.SyncCategoriesFromSource(ctx, task.Source)
}
