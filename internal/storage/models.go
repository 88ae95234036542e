// Package storage содержит модели и логику работы с SQLite журналом результатов.
package storage

// Status определяет исход конвертации одного файла.
type Status string

const (
	// StatusOK - файл успешно конвертирован.
	StatusOK Status = "ok"
	// StatusFailed - конвертация завершилась с ошибкой.
	StatusFailed Status = "failed"
)

// Record представляет запись журнала об одном обработанном файле.
// Журнал пишется только после завершения обработки: это отчётность,
// а не состояние для возобновления.
type Record struct {
	// ID - уникальный идентификатор записи.
	ID int64 `db:"id"`

	// SrcPath - абсолютный путь к исходному файлу.
	SrcPath string `db:"src_path"`

	// RelPath - относительный путь от входной директории.
	RelPath string `db:"rel_path"`

	// SrcSize - размер исходного файла в байтах.
	SrcSize int64 `db:"src_size"`

	// SrcMtime - время модификации исходного файла (unix timestamp).
	SrcMtime int64 `db:"src_mtime"`

	// DstPath - путь к выходному файлу (пустой при ошибке).
	DstPath string `db:"dst_path"`

	// DstSize - размер выходного файла в байтах.
	DstSize int64 `db:"dst_size"`

	// Quality - уровень качества JPEG, выбранный подбором.
	Quality int `db:"quality"`

	// ParamsHash - sha256 хэш параметров конвертации.
	ParamsHash string `db:"params_hash"`

	// Status - исход обработки.
	Status Status `db:"status"`

	// Error - сообщение об ошибке (пустое при успехе).
	Error string `db:"error"`

	// DurationMS - время обработки в миллисекундах.
	DurationMS int64 `db:"duration_ms"`

	// FinishedAt - время завершения обработки (unix timestamp).
	FinishedAt int64 `db:"finished_at"`
}

// JournalStats содержит агрегированную статистику журнала.
type JournalStats struct {
	// Total - всего записей.
	Total int64

	// OK - успешных конвертаций.
	OK int64

	// Failed - конвертаций с ошибками.
	Failed int64

	// InputBytes - суммарный размер исходных файлов (успешные записи).
	InputBytes int64

	// OutputBytes - суммарный размер выходных файлов.
	OutputBytes int64
}

// SavedBytes возвращает количество сэкономленных байт.
func (s *JournalStats) SavedBytes() int64 {
	return s.InputBytes - s.OutputBytes
}

/*
Возможные расширения:
- Добавить номер запуска для группировки записей по сессиям
- Добавить гистограмму выбранных уровней качества
*/
