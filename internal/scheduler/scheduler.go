package scheduler

import (
	"context"
	"time"

	"news_ingest/internal/logger"
	"news_ingest/internal/models"
)

// SourceLister перечисляет имена источников из хранилища.
type SourceLister interface {
	ListSourceNames(ctx context.Context) ([]string, error)
}

// Publisher публикует задачи в очередь.
type Publisher interface {
	PublishTask(queueName string, task models.Task) error
}

// Scheduler периодически ставит в очередь по одной задаче на источник:
// частый триггер — fetch, редкий — синхронизация категорий.
// Дедупликацию одновременных прогонов обеспечивает лизинг на стороне
// воркера, а не планировщик.
type Scheduler struct {
	store     SourceLister
	producer  Publisher
	queueName string
	fetchTick time.Duration
	syncTick  time.Duration
}

func New(store SourceLister, producer Publisher, queueName string, fetchTick, syncTick time.Duration) *Scheduler {
	return &Scheduler{
		store:     store,
		producer:  producer,
		queueName: queueName,
		fetchTick: fetchTick,
		syncTick:  syncTick,
	}
}

// Run блокируется до отмены ctx. На старте один раз прогоняется
// синхронизация категорий, чтобы у новых источников появились секции
// до первого fetch-тика.
func (s *Scheduler) Run(ctx context.Context) {
	log := logger.Log.WithFields(map[string]interface{}{
		"service":        "scheduler",
		"fetch_interval": s.fetchTick.String(),
		"sync_interval":  s.syncTick.String(),
	})

	s.EnqueueSyncAll(ctx)

	fetchTicker := time.NewTicker(s.fetchTick)
	defer fetchTicker.Stop()
	syncTicker := time.NewTicker(s.syncTick)
	defer syncTicker.Stop()

	for {
		select {
		case <-fetchTicker.C:
			log.Info("Dispatching fetch cycle")
			s.EnqueueFetchAll(ctx)

		case <-syncTicker.C:
			log.Info("Dispatching category sync cycle")
			s.EnqueueSyncAll(ctx)

		case <-ctx.Done():
			log.Info("Stopping scheduler by context")
			return
		}
	}
}

// EnqueueFetchAll ставит fetch-задачу для каждого источника.
func (s *Scheduler) EnqueueFetchAll(ctx context.Context) {
	s.enqueueAll(ctx, models.TaskFetch)
}

// EnqueueSyncAll ставит задачу синхронизации категорий для каждого источника.
func (s *Scheduler) EnqueueSyncAll(ctx context.Context) {
	s.enqueueAll(ctx, models.TaskSyncCategories)
}

func (s *Scheduler) enqueueAll(ctx context.Context, kind string) {
	names, err := s.store.ListSourceNames(ctx)
	if err != nil {
		logger.Log.Errorf("Failed to list sources: %v", err)
		return
	}

	for _, name := range names {
		task := models.Task{Kind: kind, Source: name}
		if err := s.producer.PublishTask(s.queueName, task); err != nil {
			logger.WithSource(name).Errorf("Failed to publish %s task: %v", kind, err)
			continue
		}
		logger.WithSource(name).Debugf("Dispatched %s task", kind)
	}
}
