package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"news_ingest/internal/models"
)

// UpsertSourceCategoryMap сохраняет связь "под-источник провайдера → категория".
// Ключ уникальности — (source_id, provider_source_id).
func (db *Database) UpsertSourceCategoryMap(ctx context.Context, m models.SourceCategoryMap) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO source_category_map (source_id, category_id, provider_source_id, provider_source_name, url)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (source_id, provider_source_id) DO UPDATE SET
            category_id = EXCLUDED.category_id,
            provider_source_name = EXCLUDED.provider_source_name,
            url = EXCLUDED.url
    `, m.SourceID, m.CategoryID, m.ProviderSourceID, m.ProviderName, m.URL)
	return err
}

// CategoryByProviderSourceID возвращает категорию, на которую отображён
// под-источник провайдера. Второе значение — false, если связи нет.
func (db *Database) CategoryByProviderSourceID(ctx context.Context, sourceID int64, providerSourceID string) (models.Category, bool, error) {
	var c models.Category
	err := db.Pool.QueryRow(ctx, `
        SELECT c.id, c.name, c.normalized_name, c.source_id
        FROM source_category_map m
        JOIN categories c ON c.id = m.category_id
        WHERE m.source_id = $1 AND m.provider_source_id = $2
    `, sourceID, providerSourceID).Scan(&c.ID, &c.Name, &c.NormalizedName, &c.SourceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Category{}, false, nil
	}
	if err != nil {
		return models.Category{}, false, err
	}
	return c, true, nil
}
