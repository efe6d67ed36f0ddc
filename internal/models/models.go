package models

import (
	"encoding/json"
	"time"
)

// Source описывает одного поставщика новостей (провайдера API).
type Source struct {
	ID             int64
	Name           string
	APIURL         string
	APIKey         string
	FallbackAPIKey string
	IsActive       bool
	LastFetchedAt  *time.Time
}

// Category — запись таксономии, привязанная к источнику.
// Пара (Name, SourceID) уникальна; NormalizedName — производное поле для нечёткого поиска.
type Category struct {
	ID             int64
	Name           string
	NormalizedName string
	SourceID       int64
}

// Article — каноническая форма статьи после маппинга адаптером.
type Article struct {
	ID            int64
	ExternalID    string
	SourceID      int64
	CategoryID    *int64
	Title         string
	Slug          string
	Description   string
	Content       string
	URL           string
	ImageURL      string
	Author        string
	ArticleSource string
	Keywords      []string
	PublishedAt   time.Time
	FetchedAt     time.Time
}

// ArticleAttrs — атрибуты статьи для идемпотентного upsert по (ExternalID, SourceID).
type ArticleAttrs struct {
	ExternalID    string
	SourceID      int64
	CategoryID    *int64
	Title         string
	Slug          string
	Description   string
	Content       string
	URL           string
	ImageURL      string
	Author        string
	ArticleSource string
	Keywords      []string
	PublishedAt   time.Time
	RawData       json.RawMessage
}

// SourceCategoryMap связывает идентификатор под-источника провайдера с категорией.
// Нужна провайдеру newsapi: его статьи приходят с source.id вместо имени секции.
type SourceCategoryMap struct {
	ID               int64
	SourceID         int64
	CategoryID       int64
	ProviderSourceID string
	ProviderName     string
	URL              string
}

// Виды задач в очереди.
const (
	TaskFetch          = "fetch"
	TaskSyncCategories = "sync_categories"
)

// Task — единица работы, публикуемая планировщиком в очередь.
type Task struct {
	Kind   string `json:"kind"`
	Source string `json:"source"`
}
