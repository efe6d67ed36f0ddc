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

// Guardian — адаптер Guardian Content API.
type Guardian struct {
	client Fetcher
	store  Store
}

func NewGuardian(d Deps) Adapter {
	return &Guardian{client: d.Client, store: d.Store}
}

type guardianEnvelope struct {
	Response *struct {
		Results []json.RawMessage `json:"results"`
	} `json:"response"`
}

type guardianItem struct {
	ID          string `json:"id"`
	SectionName string `json:"sectionName"`
	WebTitle    string `json:"webTitle"`
	WebURL      string `json:"webUrl"`
	Fields      struct {
		Headline             string `json:"headline"`
		Body                 string `json:"body"`
		Thumbnail            string `json:"thumbnail"`
		Byline               string `json:"byline"`
		FirstPublicationDate string `json:"firstPublicationDate"`
	} `json:"fields"`
	Tags []struct {
		Type     string `json:"type"`
		WebTitle string `json:"webTitle"`
	} `json:"tags"`
}

func (g *Guardian) FetchData(ctx context.Context, src models.Source, section string) ([]json.RawMessage, error) {
	body, err := fetchWithFallback(ctx, src, func(ctx context.Context, apiKey string) (json.RawMessage, error) {
		return g.client.Fetch(ctx, src.APIURL+"/search", url.Values{
			"show-fields": {"all"},
			"show-tags":   {"all"},
			"page-size":   {"200"},
			"section":     {section},
			"api-key":     {apiKey},
		})
	})
	if err != nil {
		logFetchFailure(src, section, err)
		return nil, nil
	}

	var envelope guardianEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Response == nil {
		logger.WithSource(src.Name).WithField("section", section).
			Warn("Invalid Guardian API response structure")
		return nil, nil
	}
	return envelope.Response.Results, nil
}

func (g *Guardian) MapData(ctx context.Context, sourceID int64, raw json.RawMessage) (models.ArticleAttrs, error) {
	var item guardianItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return models.ArticleAttrs{}, fmt.Errorf("decode guardian item: %w", err)
	}
	if item.ID == "" {
		return models.ArticleAttrs{}, errors.New("guardian item has no id")
	}

	// Ссылка на источник берётся по имени, а не из аргументов вызова.
	src, err := g.store.GetSourceByName(ctx, "guardian")
	if err != nil {
		return models.ArticleAttrs{}, fmt.Errorf("resolve guardian source: %w", err)
	}

	var categoryID *int64
	if item.SectionName != "" {
		category, err := g.store.FindOrCreateCategory(ctx, item.SectionName, sourceID)
		if err != nil {
			return models.ArticleAttrs{}, fmt.Errorf("resolve category %q: %w", item.SectionName, err)
		}
		categoryID = &category.ID
	}

	var keywords []string
	for _, tag := range item.Tags {
		if tag.Type == "keyword" && tag.WebTitle != "" {
			keywords = append(keywords, tag.WebTitle)
		}
	}

	title := item.WebTitle
	slug := normalize.Slug(title)
	if title == "" {
		title = "Untitled"
		slug = normalize.UntitledSlug()
	}

	author := item.Fields.Byline
	articleSource := item.Fields.Byline
	if articleSource == "" {
		articleSource = "Unknown"
	}

	publishedAt := time.Now().UTC()
	if item.Fields.FirstPublicationDate != "" {
		if t, err := time.Parse(time.RFC3339, item.Fields.FirstPublicationDate); err == nil {
			publishedAt = t
		}
	}

	return models.ArticleAttrs{
		ExternalID:    item.ID,
		SourceID:      src.ID,
		CategoryID:    categoryID,
		Title:         title,
		Slug:          slug,
		Description:   item.Fields.Headline,
		Content:       item.Fields.Body,
		URL:           item.WebURL,
		ImageURL:      item.Fields.Thumbnail,
		Author:        author,
		ArticleSource: articleSource,
		Keywords:      keywords,
		PublishedAt:   publishedAt,
		RawData:       raw,
	}, nil
}

func (g *Guardian) SyncCategories(ctx context.Context, src models.Source) error {
	body, err := fetchWithFallback(ctx, src, func(ctx context.Context, apiKey string) (json.RawMessage, error) {
		return g.client.Fetch(ctx, src.APIURL+"/sections", url.Values{
			"api-key": {apiKey},
		})
	})
	if err != nil {
		// Провайдерский сбой не фатален: логируем и выходим.
		logger.WithSource(src.Name).Warnf("Category sync degraded: %v", err)
		return nil
	}

	var envelope struct {
		Response *struct {
			Results []struct {
				ID string `json:"id"`
			} `json:"results"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Response == nil {
		logger.WithSource(src.Name).Warn("Invalid Guardian sections response structure")
		return nil
	}

	for _, section := range envelope.Response.Results {
		if section.ID == "" {
			continue
		}
		if _, err := g.store.FindOrCreateCategory(ctx, section.ID, src.ID); err != nil {
			return fmt.Errorf("sync category %q: %w", section.ID, err)
		}
		metrics.CategoriesSynced.WithLabelValues(src.Name).Inc()
	}
	return nil
}
