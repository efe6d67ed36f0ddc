// Package adapters содержит подключаемые коннекторы к провайдерам новостей.
// Каждый вариант переводит канонический запрос в вызов конкретного API,
// приводит сырые элементы к канонической форме статьи и синхронизирует
// список категорий провайдера.
package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"news_ingest/internal/logger"
	"news_ingest/internal/metrics"
	"news_ingest/internal/models"
	"news_ingest/internal/rest"
)

// Fetcher — транспортный клиент провайдерских API.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string, query url.Values) (json.RawMessage, error)
}

// Store — операции хранения, нужные адаптерам.
type Store interface {
	GetSourceByName(ctx context.Context, name string) (models.Source, error)
	FindOrCreateCategory(ctx context.Context, name string, sourceID int64) (models.Category, error)
	UpsertSourceCategoryMap(ctx context.Context, m models.SourceCategoryMap) error
	CategoryByProviderSourceID(ctx context.Context, sourceID int64, providerSourceID string) (models.Category, bool, error)
}

// Adapter — общий контракт варианта провайдера.
// FetchData при недоступности секции возвращает пустой список, а не ошибку:
// одна недоступная секция не должна блокировать соседние.
type Adapter interface {
	FetchData(ctx context.Context, src models.Source, section string) ([]json.RawMessage, error)
	MapData(ctx context.Context, sourceID int64, raw json.RawMessage) (models.ArticleAttrs, error)
	SyncCategories(ctx context.Context, src models.Source) error
}

// Deps — зависимости, передаваемые конструкторам адаптеров.
type Deps struct {
	Client          Fetcher
	Store           Store
	DefaultCategory string
}

// Constructor создаёт адаптер из зависимостей.
type Constructor func(d Deps) Adapter

// Registry — явное соответствие имени источника конструктору адаптера,
// заполняется на старте процесса.
type Registry struct {
	deps         Deps
	constructors map[string]Constructor
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:         deps,
		constructors: make(map[string]Constructor),
	}
}

// Register добавляет конструктор для имени источника.
func (r *Registry) Register(name string, c Constructor) {
	r.constructors[name] = c
}

// Make возвращает адаптер для источника; неизвестное имя — ошибка.
func (r *Registry) Make(name string) (Adapter, error) {
	c, ok := r.constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown source: %s", name)
	}
	return c(r.deps), nil
}

// DefaultRegistry регистрирует все три встроенных провайдера.
func DefaultRegistry(deps Deps) *Registry {
	r := NewRegistry(deps)
	r.Register("guardian", NewGuardian)
	r.Register("nytimes", NewYorkTimes)
	r.Register("newsapi", NewNewsAPI)
	return r
}

// fetchWithFallback выполняет запрос с основным ключом; на ErrRateLimited
// повторяет ровно один раз с резервным. Ошибка второй попытки возвращается
// вызывающему без дальнейших повторов.
func fetchWithFallback(ctx context.Context, src models.Source, fn func(ctx context.Context, apiKey string) (json.RawMessage, error)) (json.RawMessage, error) {
	body, err := fn(ctx, src.APIKey)
	if err == nil || !errors.Is(err, rest.ErrRateLimited) {
		return body, err
	}

	metrics.RateLimitEvents.WithLabelValues(src.Name).Inc()
	if src.FallbackAPIKey == "" {
		return nil, err
	}

	logger.WithSource(src.Name).Info("Retrying request with fallback credential")
	body, err = fn(ctx, src.FallbackAPIKey)
	if errors.Is(err, rest.ErrRateLimited) {
		metrics.RateLimitEvents.WithLabelValues(src.Name).Inc()
	}
	return body, err
}

// logFetchFailure переводит ошибку выборки в деградацию до пустого списка.
func logFetchFailure(src models.Source, section string, err error) {
	logger.WithSource(src.Name).WithField("section", section).
		Warnf("Fetch degraded to empty result: %v", err)
}
