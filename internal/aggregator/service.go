// Package aggregator управляет одним циклом обхода источника: перебор
// категорий, маппинг и сохранение элементов, отметка времени обхода.
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"news_ingest/internal/adapters"
	"news_ingest/internal/logger"
	"news_ingest/internal/metrics"
	"news_ingest/internal/models"
)

// ConfigError — фатальная ошибка конфигурации прогона: неизвестный или
// неактивный источник. Единственный класс ошибок, прерывающий весь прогон.
type ConfigError struct {
	Source string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("source %q: %s", e.Source, e.Reason)
}

// Store — операции хранения, нужные оркестратору.
type Store interface {
	GetSourceByName(ctx context.Context, name string) (models.Source, error)
	ListCategoriesBySource(ctx context.Context, sourceID int64) ([]models.Category, error)
	UpsertArticle(ctx context.Context, attrs models.ArticleAttrs) (models.Article, error)
	StampLastFetched(ctx context.Context, sourceID int64) error
}

// AdapterResolver разрешает имя источника в адаптер провайдера.
type AdapterResolver interface {
	Make(name string) (adapters.Adapter, error)
}

// Service — оркестратор ингестии.
type Service struct {
	registry AdapterResolver
	store    Store
}

func NewService(registry AdapterResolver, store Store) *Service {
	return &Service{registry: registry, store: store}
}

// AggregateFromSource выполняет один цикл обхода источника.
// Сбой категории или отдельного элемента логируется и пропускается;
// отметка last_fetched_at ставится безусловно — отсутствие данных не ошибка.
func (s *Service) AggregateFromSource(ctx context.Context, sourceName string) error {
	adapter, err := s.registry.Make(sourceName)
	if err != nil {
		metrics.FetchRuns.WithLabelValues(sourceName, "failed").Inc()
		return &ConfigError{Source: sourceName, Reason: "unknown source"}
	}

	src, err := s.store.GetSourceByName(ctx, sourceName)
	if err != nil {
		metrics.FetchRuns.WithLabelValues(sourceName, "failed").Inc()
		return &ConfigError{Source: sourceName, Reason: fmt.Sprintf("not found: %v", err)}
	}
	if !src.IsActive {
		metrics.FetchRuns.WithLabelValues(sourceName, "failed").Inc()
		return &ConfigError{Source: sourceName, Reason: "source is not active"}
	}

	log := logger.WithSource(sourceName)
	log.Info("Fetch run started")

	categories, err := s.store.ListCategoriesBySource(ctx, src.ID)
	if err != nil {
		metrics.FetchRuns.WithLabelValues(sourceName, "failed").Inc()
		return fmt.Errorf("list categories for %s: %w", sourceName, err)
	}

	total := 0
	for _, category := range categories {
		items, err := adapter.FetchData(ctx, src, category.Name)
		if err != nil {
			// Сбой одной категории не прерывает прогон.
			log.WithField("section", category.Name).
				Errorf("Failed to fetch articles: %v", err)
			continue
		}

		log.WithFields(logrus.Fields{
			"section": category.Name,
			"count":   len(items),
		}).Info("Persisting fetched articles")

		for _, raw := range items {
			if err := s.processItem(ctx, adapter, src, raw); err != nil {
				id, title := itemIdentity(raw)
				log.WithFields(logrus.Fields{
					"article_id":    id,
					"article_title": title,
				}).Warnf("Failed to save article: %v", err)
				metrics.ItemFailures.WithLabelValues(sourceName).Inc()
				continue
			}
			total++
		}
	}

	// Безусловная отметка времени обхода, даже при нуле элементов.
	if err := s.store.StampLastFetched(ctx, src.ID); err != nil {
		metrics.FetchRuns.WithLabelValues(sourceName, "failed").Inc()
		return fmt.Errorf("stamp last fetched for %s: %w", sourceName, err)
	}

	metrics.FetchRuns.WithLabelValues(sourceName, "ok").Inc()
	log.WithField("count", total).Info("Fetch run completed")
	return nil
}

func (s *Service) processItem(ctx context.Context, adapter adapters.Adapter, src models.Source, raw json.RawMessage) error {
	attrs, err := adapter.MapData(ctx, src.ID, raw)
	if err != nil {
		return err
	}
	if _, err := s.store.UpsertArticle(ctx, attrs); err != nil {
		return err
	}
	metrics.ArticlesUpserted.WithLabelValues(src.Name).Inc()
	return nil
}

// SyncCategoriesFromSource синхронизирует список категорий провайдера.
// Неизвестный источник фатален; провайдерские сбои адаптер гасит сам.
func (s *Service) SyncCategoriesFromSource(ctx context.Context, sourceName string) error {
	adapter, err := s.registry.Make(sourceName)
	if err != nil {
		return &ConfigError{Source: sourceName, Reason: "unknown source"}
	}

	src, err := s.store.GetSourceByName(ctx, sourceName)
	if err != nil {
		return &ConfigError{Source: sourceName, Reason: fmt.Sprintf("not found: %v", err)}
	}

	logger.WithSource(sourceName).Info("Category sync started")
	return adapter.SyncCategories(ctx, src)
}

// itemIdentity извлекает из сырого элемента идентификатор и заголовок
// для контекста в логах — поля best-effort, у провайдеров они разные.
func itemIdentity(raw json.RawMessage) (string, string) {
	var probe struct {
		ID       string `json:"id"`
		URI      string `json:"uri"`
		URL      string `json:"url"`
		Title    string `json:"title"`
		WebTitle string `json:"webTitle"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "unknown", "unknown"
	}

	id := probe.ID
	if id == "" {
		id = probe.URI
	}
	if id == "" {
		id = probe.URL
	}
	if id == "" {
		id = "unknown"
	}

	title := probe.Title
	if title == "" {
		title = probe.WebTitle
	}
	if title == "" {
		title = "unknown"
	}
	return id, title
}
