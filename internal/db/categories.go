package db

import (
	"context"

	"news_ingest/internal/models"
	"news_ingest/internal/normalize"
)

// FindOrCreateCategory находит или создаёт категорию по уникальной паре (name, source_id).
// Нормализованная форма вычисляется только при создании и дальше не пересчитывается;
// при смене правил нормализации существующие строки правит корректирующая миграция.
// Гонка одновременного первого появления категории разрешается уникальным
// ограничением, а не блокировкой в приложении.
func (db *Database) FindOrCreateCategory(ctx context.Context, name string, sourceID int64) (models.Category, error) {
	var c models.Category
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO categories (name, normalized_name, source_id)
        VALUES ($1, $2, $3)
        ON CONFLICT (name, source_id) DO UPDATE SET name = EXCLUDED.name
        RETURNING id, name, normalized_name, source_id
    `, name, normalize.Normalize(name), sourceID).Scan(&c.ID, &c.Name, &c.NormalizedName, &c.SourceID)
	return c, err
}

// ListCategoriesBySource возвращает категории источника в стабильном порядке.
func (db *Database) ListCategoriesBySource(ctx context.Context, sourceID int64) ([]models.Category, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, name, normalized_name, source_id
        FROM categories
        WHERE source_id = $1
        ORDER BY name
    `, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.NormalizedName, &c.SourceID); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// FindByNormalized ищет категории всех источников по нормализованной форме запроса.
func (db *Database) FindByNormalized(ctx context.Context, search string) ([]models.Category, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, name, normalized_name, source_id
        FROM categories
        WHERE normalized_name = $1
        ORDER BY source_id, name
    `, normalize.Normalize(search))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.NormalizedName, &c.SourceID); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
