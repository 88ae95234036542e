// Package storage содержит логику работы с SQLite журналом результатов.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Storage предоставляет методы для работы с журналом конвертаций.
type Storage struct {
	db *sql.DB
}

// New создаёт новое подключение к SQLite и выполняет миграции.
func New(dbPath string) (*Storage, error) {
	// Создаём директорию для БД, если не существует
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию для БД: %w", err)
	}

	// Открываем/создаём БД с параметрами для concurrent доступа
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть БД: %w", err)
	}

	// Проверяем подключение
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	// Настраиваем пул соединений
	db.SetMaxOpenConns(1) // SQLite не поддерживает concurrent writes
	db.SetMaxIdleConns(1)

	s := &Storage{db: db}

	// Выполняем миграции
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("не удалось выполнить миграции: %w", err)
	}

	return s, nil
}

// migrate выполняет все SQL-миграции.
func (s *Storage) migrate() error {
	for i, m := range GetMigrations() {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("миграция %d: %w", i+1, err)
		}
	}
	return nil
}

// Close закрывает подключение к БД.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Record добавляет запись о завершённой обработке файла.
// Запись всегда новая: журнал ведётся в append-only режиме.
func (s *Storage) Record(rec *Record) error {
	query := `
		INSERT INTO conversions (src_path, rel_path, src_size, src_mtime,
		                         dst_path, dst_size, quality, params_hash,
		                         status, error, duration_ms, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		rec.SrcPath, rec.RelPath, rec.SrcSize, rec.SrcMtime,
		rec.DstPath, rec.DstSize, rec.Quality, rec.ParamsHash,
		rec.Status, rec.Error, rec.DurationMS, rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("не удалось записать результат: %w", err)
	}

	rec.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("не удалось получить ID записи: %w", err)
	}

	return nil
}

// GetStats возвращает агрегированную статистику журнала.
func (s *Storage) GetStats() (*JournalStats, error) {
	stats := &JournalStats{}

	err := s.db.QueryRow("SELECT COUNT(*) FROM conversions").Scan(&stats.Total)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить статистику: %w", err)
	}

	_ = s.db.QueryRow("SELECT COUNT(*) FROM conversions WHERE status = ?", StatusOK).
		Scan(&stats.OK)
	_ = s.db.QueryRow("SELECT COUNT(*) FROM conversions WHERE status = ?", StatusFailed).
		Scan(&stats.Failed)
	_ = s.db.QueryRow(
		"SELECT COALESCE(SUM(src_size), 0), COALESCE(SUM(dst_size), 0) FROM conversions WHERE status = ?",
		StatusOK,
	).Scan(&stats.InputBytes, &stats.OutputBytes)

	return stats, nil
}

// RecentFailures возвращает последние записи с ошибками (не больше limit).
func (s *Storage) RecentFailures(limit int) ([]Record, error) {
	query := `
		SELECT id, src_path, rel_path, src_size, src_mtime,
		       dst_path, dst_size, quality, params_hash,
		       status, error, duration_ms, finished_at
		FROM conversions
		WHERE status = ?
		ORDER BY finished_at DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, StatusFailed, limit)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить ошибки: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.SrcPath, &rec.RelPath, &rec.SrcSize, &rec.SrcMtime,
			&rec.DstPath, &rec.DstSize, &rec.Quality, &rec.ParamsHash,
			&rec.Status, &rec.Error, &rec.DurationMS, &rec.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("не удалось прочитать запись: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

/*
Возможные расширения:
- Добавить метод для экспорта журнала в JSON
- Добавить метод для очистки старых записей
- Добавить поддержку транзакций для batch-записи
*/
