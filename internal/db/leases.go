package db

import (
	"context"
	"time"
)

// AcquireLease пытается захватить лизинг single-flight для пары (kind, sourceName).
// Возвращает true, если лизинг взят. Захват не удаётся, пока чужой лизинг
// не истёк — повторный триггер для того же источника схлопывается, а не
// ставится в очередь второй раз. Лизинг живёт в общей БД, поэтому работает
// и между несколькими процессами-воркерами.
func (db *Database) AcquireLease(ctx context.Context, kind, sourceName string, ttl time.Duration) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `
        INSERT INTO job_leases (kind, source_name, acquired_at, expires_at)
        VALUES ($1, $2, now(), now() + ($3 * interval '1 second'))
        ON CONFLICT (kind, source_name) DO UPDATE SET
            acquired_at = now(),
            expires_at = now() + ($3 * interval '1 second')
        WHERE job_leases.expires_at < now()
    `, kind, sourceName, ttl.Seconds())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseLease снимает лизинг по завершении работы.
func (db *Database) ReleaseLease(ctx context.Context, kind, sourceName string) error {
	_, err := db.Pool.Exec(ctx, `
        DELETE FROM job_leases WHERE kind = $1 AND source_name = $2
    `, kind, sourceName)
	return err
}
