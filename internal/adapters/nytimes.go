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

// Секции Top Stories. Эндпоинты NYT не отдают метаданные категорий,
// поэтому список фиксированный.
var nytSections = []string{
	"home", "arts", "automobiles", "books", "business", "fashion",
	"food", "health", "insider", "movies", "nyregion",
	"obituaries", "opinion", "politics", "realestate", "science",
	"sports", "sundayreview", "technology", "theater", "t-magazine",
	"travel", "upshot", "us", "world",
}

// NewYorkTimesAdapter — адаптер NYT Top Stories API.
type NewYorkTimesAdapter struct {
	client Fetcher
	store  Store
}

func NewYorkTimes(d Deps) Adapter {
	return &NewYorkTimesAdapter{client: d.Client, store: d.Store}
}

type nytItem struct {
	Section       string `json:"section"`
	Title         string `json:"title"`
	Abstract      string `json:"abstract"`
	LeadParagraph string `json:"lead_paragraph"`
	URI           string `json:"uri"`
	URL           string `json:"url"`
	Byline        string `json:"byline"`
	PublishedDate string `json:"published_date"`
	Multimedia    []struct {
		URL string `json:"url"`
	} `json:"multimedia"`
}

func (n *NewYorkTimesAdapter) FetchData(ctx context.Context, src models.Source, section string) ([]json.RawMessage, error) {
	body, err := fetchWithFallback(ctx, src, func(ctx context.Context, apiKey string) (json.RawMessage, error) {
		endpoint := fmt.Sprintf("%s/svc/topstories/v2/%s.json", src.APIURL, section)
		return n.client.Fetch(ctx, endpoint, url.Values{
			"api-key": {apiKey},
		})
	})
	if err != nil {
		logFetchFailure(src, section, err)
		return nil, nil
	}

	var envelope struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		logger.WithSource(src.Name).WithField("section", section).
			Warn("Invalid NYTimes API response structure")
		return nil, nil
	}
	return envelope.Results, nil
}

func (n *NewYorkTimesAdapter) MapData(ctx context.Context, sourceID int64, raw json.RawMessage) (models.ArticleAttrs, error) {
	var item nytItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return models.ArticleAttrs{}, fmt.Errorf("decode nytimes item: %w", err)
	}
	if item.URI == "" {
		return models.ArticleAttrs{}, errors.New("nytimes item has no uri")
	}

	src, err := n.store.GetSourceByName(ctx, "nytimes")
	if err != nil {
		return models.ArticleAttrs{}, fmt.Errorf("resolve nytimes source: %w", err)
	}

	var categoryID *int64
	if item.Section != "" {
		category, err := n.store.FindOrCreateCategory(ctx, item.Section, sourceID)
		if err != nil {
			return models.ArticleAttrs{}, fmt.Errorf("resolve category %q: %w", item.Section, err)
		}
		categoryID = &category.ID
	}

	title := item.Title
	slug := normalize.Slug(title)
	if title == "" {
		title = "Untitled"
		slug = normalize.UntitledSlug()
	}

	content := item.LeadParagraph
	if content == "" {
		content = item.Abstract
	}

	var imageURL string
	if len(item.Multimedia) > 0 {
		imageURL = item.Multimedia[0].URL
	}

	publishedAt := time.Now().UTC()
	if item.PublishedDate != "" {
		if t, err := time.Parse(time.RFC3339, item.PublishedDate); err == nil {
			publishedAt = t
		}
	}

	return models.ArticleAttrs{
		ExternalID:    item.URI,
		SourceID:      src.ID,
		CategoryID:    categoryID,
		Title:         title,
		Slug:          slug,
		Description:   item.Abstract,
		Content:       content,
		URL:           item.URL,
		ImageURL:      imageURL,
		Author:        item.Byline,
		ArticleSource: "New York Times",
		PublishedAt:   publishedAt,
		RawData:       raw,
	}, nil
}

func (n *NewYorkTimesAdapter) SyncCategories(ctx context.Context, src models.Source) error {
	for _, section := range nytSections {
		if _, err := n.store.FindOrCreateCategory(ctx, section, src.ID); err != nil {
			return fmt.Errorf("sync category %q: %w", section, err)
		}
		metrics.CategoriesSynced.WithLabelValues(src.Name).Inc()
	}
	return nil
}
