// Package storage содержит миграции SQLite журнала.
package storage

// migrations содержит SQL-миграции в порядке выполнения.
var migrations = []string{
	// Миграция 1: Таблица журнала конвертаций
	`CREATE TABLE IF NOT EXISTS conversions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		src_path TEXT NOT NULL,
		rel_path TEXT NOT NULL,
		src_size INTEGER NOT NULL,
		src_mtime INTEGER NOT NULL,
		dst_path TEXT NOT NULL DEFAULT '',
		dst_size INTEGER NOT NULL DEFAULT 0,
		quality INTEGER NOT NULL DEFAULT 0,
		params_hash TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		finished_at INTEGER NOT NULL
	);`,

	// Миграция 2: Индекс для выборок по статусу
	`CREATE INDEX IF NOT EXISTS ix_conversions_status ON conversions (status);`,

	// Миграция 3: Индекс для поиска истории конкретного файла
	`CREATE INDEX IF NOT EXISTS ix_conversions_rel_path ON conversions (rel_path);`,

	// Миграция 4: Таблица метаданных для версионирования схемы
	`CREATE TABLE IF NOT EXISTS schema_info (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`,

	// Миграция 5: Запись версии схемы
	`INSERT OR REPLACE INTO schema_info (key, value) VALUES ('version', '1');`,
}

// GetMigrations возвращает список SQL-миграций.
func GetMigrations() []string {
	return migrations
}
