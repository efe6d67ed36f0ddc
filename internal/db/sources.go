package db

import (
	"context"

	"news_ingest/internal/models"
)

// UpsertSource сохраняет источник по уникальному имени и возвращает его id.
// При конфликте обновляются URL, ключи и флаг активности — сид конфигурации
// можно применять на каждом старте.
func (db *Database) UpsertSource(ctx context.Context, s models.Source) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO sources (name, api_url, api_key, fallback_api_key, is_active)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (name) DO UPDATE SET
            api_url = EXCLUDED.api_url,
            api_key = EXCLUDED.api_key,
            fallback_api_key = EXCLUDED.fallback_api_key,
            is_active = EXCLUDED.is_active,
            updated_at = now()
        RETURNING id
    `, s.Name, s.APIURL, s.APIKey, s.FallbackAPIKey, s.IsActive).Scan(&id)
	return id, err
}

// GetSourceByName возвращает источник по имени (включая неактивные).
func (db *Database) GetSourceByName(ctx context.Context, name string) (models.Source, error) {
	var s models.Source
	err := db.Pool.QueryRow(ctx, `
        SELECT id, name, api_url, api_key, COALESCE(fallback_api_key, ''), is_active, last_fetched_at
        FROM sources
        WHERE name = $1
    `, name).Scan(&s.ID, &s.Name, &s.APIURL, &s.APIKey, &s.FallbackAPIKey, &s.IsActive, &s.LastFetchedAt)
	return s, err
}

// ListSourceNames возвращает имена всех источников в стабильном порядке.
func (db *Database) ListSourceNames(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `SELECT name FROM sources ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// StampLastFetched обновляет отметку последнего обхода источника.
func (db *Database) StampLastFetched(ctx context.Context, sourceID int64) error {
	_, err := db.Pool.Exec(ctx, `
        UPDATE sources SET last_fetched_at = now(), updated_at = now() WHERE id = $1
    `, sourceID)
	return err
}
