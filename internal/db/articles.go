package db

import (
	"context"
	"encoding/json"
	"fmt"

	"news_ingest/internal/models"
)

// UpsertArticle выполняет идемпотентный upsert статьи по ключу (external_id, source_id).
// Повторный прогон с теми же данными обновляет изменяемые поля существующей
// строки и не создаёт дубликатов. Другой уникальности на этом уровне нет.
func (db *Database) UpsertArticle(ctx context.Context, attrs models.ArticleAttrs) (models.Article, error) {
	keywords, err := json.Marshal(attrs.Keywords)
	if err != nil {
		return models.Article{}, fmt.Errorf("marshal keywords: %w", err)
	}

	var (
		a            models.Article
		keywordsJSON []byte
	)
	err = db.Pool.QueryRow(ctx, `
        INSERT INTO articles (
            external_id, source_id, category_id, title, slug, description,
            content, url, image_url, author, article_source, keywords,
            published_at, raw_data
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (external_id, source_id) DO UPDATE SET
            category_id = EXCLUDED.category_id,
            title = EXCLUDED.title,
            slug = EXCLUDED.slug,
            description = EXCLUDED.description,
            content = EXCLUDED.content,
            url = EXCLUDED.url,
            image_url = EXCLUDED.image_url,
            author = EXCLUDED.author,
            article_source = EXCLUDED.article_source,
            keywords = EXCLUDED.keywords,
            published_at = EXCLUDED.published_at,
            raw_data = EXCLUDED.raw_data,
            fetched_at = now(),
            updated_at = now()
        RETURNING id, external_id, source_id, category_id, title, slug,
            COALESCE(description, ''), COALESCE(content, ''), url,
            COALESCE(image_url, ''), COALESCE(author, ''),
            COALESCE(article_source, ''), keywords, published_at, fetched_at
    `,
		attrs.ExternalID, attrs.SourceID, attrs.CategoryID, attrs.Title,
		attrs.Slug, attrs.Description, attrs.Content, attrs.URL,
		attrs.ImageURL, attrs.Author, attrs.ArticleSource, keywords,
		attrs.PublishedAt, []byte(attrs.RawData),
	).Scan(
		&a.ID, &a.ExternalID, &a.SourceID, &a.CategoryID, &a.Title, &a.Slug,
		&a.Description, &a.Content, &a.URL, &a.ImageURL, &a.Author,
		&a.ArticleSource, &keywordsJSON, &a.PublishedAt, &a.FetchedAt,
	)
	if err != nil {
		return models.Article{}, err
	}

	if len(keywordsJSON) > 0 {
		if err := json.Unmarshal(keywordsJSON, &a.Keywords); err != nil {
			return models.Article{}, fmt.Errorf("unmarshal keywords: %w", err)
		}
	}
	return a, nil
}

// CountArticlesBySource возвращает количество статей источника.
func (db *Database) CountArticlesBySource(ctx context.Context, sourceID int64) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM articles WHERE source_id = $1
    `, sourceID).Scan(&count)
	return count, err
}
