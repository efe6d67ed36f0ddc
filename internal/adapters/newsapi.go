package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"news_ingest/internal/logger"
	"news_ingest/internal/metrics"
	"news_ingest/internal/models"
	"news_ingest/internal/normalize"
)

// NewsAPIAdapter — адаптер NewsAPI.org.
// Статьи приходят с идентификатором под-источника вместо имени секции,
// поэтому категория разрешается через таблицу соответствий, которую
// наполняет SyncCategories по эндпоинту /top-headlines/sources.
type NewsAPIAdapter struct {
	client          Fetcher
	store           Store
	defaultCategory string
}

func NewNewsAPI(d Deps) Adapter {
	return &NewsAPIAdapter{
		client:          d.Client,
		store:           d.Store,
		defaultCategory: d.DefaultCategory,
	}
}

type newsAPIItem struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

func (n *NewsAPIAdapter) FetchData(ctx context.Context, src models.Source, section string) ([]json.RawMessage, error) {
	body, err := fetchWithFallback(ctx, src, func(ctx context.Context, apiKey string) (json.RawMessage, error) {
		return n.client.Fetch(ctx, src.APIURL+"/everything", url.Values{
			"q":      {section},
			"apiKey": {apiKey},
		})
	})
	if err != nil {
		logFetchFailure(src, section, err)
		return nil, nil
	}

	var envelope struct {
		Articles []json.RawMessage `json:"articles"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Articles == nil {
		logger.WithSource(src.Name).WithField("section", section).
			Warn("Invalid NewsAPI response structure")
		return nil, nil
	}
	return envelope.Articles, nil
}

func (n *NewsAPIAdapter) MapData(ctx context.Context, sourceID int64, raw json.RawMessage) (models.ArticleAttrs, error) {
	var item newsAPIItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return models.ArticleAttrs{}, fmt.Errorf("decode newsapi item: %w", err)
	}
	if item.URL == "" {
		return models.ArticleAttrs{}, errors.New("newsapi item has no url")
	}

	src, err := n.store.GetSourceByName(ctx, "newsapi")
	if err != nil {
		return models.ArticleAttrs{}, fmt.Errorf("resolve newsapi source: %w", err)
	}

	// Категория по карте под-источников; без соответствия — явная
	// категория по умолчанию, а не первая попавшаяся строка таблицы.
	category, ok, err := n.store.CategoryByProviderSourceID(ctx, sourceID, item.Source.ID)
	if err != nil {
		return models.ArticleAttrs{}, fmt.Errorf("resolve provider source %q: %w", item.Source.ID, err)
	}
	if !ok {
		category, err = n.store.FindOrCreateCategory(ctx, n.defaultCategory, sourceID)
		if err != nil {
			return models.ArticleAttrs{}, fmt.Errorf("resolve default category: %w", err)
		}
	}
	categoryID := category.ID

	title := item.Title
	slug := normalize.Slug(title)
	if title == "" {
		title = "Untitled"
		slug = normalize.UntitledSlug()
	}

	author := item.Author
	if author == "" {
		author = "Unknown"
	}

	publishedAt := time.Now().UTC()
	if item.PublishedAt != "" {
		if t, err := time.Parse(time.RFC3339, item.PublishedAt); err == nil {
			publishedAt = t
		}
	}

	return models.ArticleAttrs{
		ExternalID:    item.URL,
		SourceID:      src.ID,
		CategoryID:    &categoryID,
		Title:         title,
		Slug:          slug,
		Description:   item.Description,
		Content:       item.Content,
		URL:           item.URL,
		ImageURL:      item.URLToImage,
		Author:        author,
		ArticleSource: item.Source.Name,
		PublishedAt:   publishedAt,
		RawData:       raw,
	}, nil
}

func (n *NewsAPIAdapter) SyncCategories(ctx context.Context, src models.Source) error {
	body, err := fetchWithFallback(ctx, src, func(ctx context.Context, apiKey string) (json.RawMessage, error) {
		return n.client.Fetch(ctx, src.APIURL+"/top-headlines/sources", url.Values{
			"apiKey": {apiKey},
		})
	})
	if err != nil {
		logger.WithSource(src.Name).Warnf("Category sync degraded: %v", err)
		return nil
	}

	var envelope struct {
		Sources []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Category string `json:"category"`
			URL      string `json:"url"`
		} `json:"sources"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Sources == nil {
		logger.WithSource(src.Name).Warn("Invalid NewsAPI sources response structure")
		return nil
	}

	for _, provider := range envelope.Sources {
		if provider.ID == "" || provider.Category == "" {
			continue
		}
		category, err := n.store.FindOrCreateCategory(ctx, provider.Category, src.ID)
		if err != nil {
			return fmt.Errorf("sync category %q: %w", provider.Category, err)
		}
		err = n.store.UpsertSourceCategoryMap(ctx, models.SourceCategoryMap{
			SourceID:         src.ID,
			CategoryID:       category.ID,
			ProviderSourceID: provider.ID,
			ProviderName:     provider.Name,
			URL:              provider.URL,
		})
		if err != nil {
			return fmt.Errorf("map provider source %q: %w", provider.ID, err)
		}
		metrics.CategoriesSynced.WithLabelValues(src.Name).Inc()
	}
	return nil
}
