// Package worker содержит пул воркеров для параллельной обработки.
package worker

import (
	"context"
	"sync"
	"time"
)

// decodeFactor - оценка: декодированный растр с промежуточными буферами
// занимает примерно в шесть раз больше памяти, чем сжатый файл на диске.
const decodeFactor = 6

// MemoryLimiter ограничивает суммарный объём изображений,
// одновременно находящихся в обработке.
type MemoryLimiter struct {
	// maxBytes - максимальный резерв памяти в байтах.
	maxBytes uint64

	// mu защищает currentUsage.
	mu sync.Mutex

	// currentUsage - текущий зарезервированный объём.
	currentUsage uint64

	// enabled - включено ли ограничение.
	enabled bool
}

// NewMemoryLimiter создаёт новый MemoryLimiter.
// maxMemoryMB - ограничение в мегабайтах (0 = без ограничения).
func NewMemoryLimiter(maxMemoryMB int) *MemoryLimiter {
	if maxMemoryMB <= 0 {
		return &MemoryLimiter{enabled: false}
	}

	return &MemoryLimiter{
		maxBytes: uint64(maxMemoryMB) * 1024 * 1024,
		enabled:  true,
	}
}

// Acquire резервирует память под обработку файла и блокируется,
// пока резерв не поместится в лимит. Возвращает функцию освобождения.
func (ml *MemoryLimiter) Acquire(ctx context.Context, fileSize int64) (release func(), err error) {
	if !ml.enabled {
		return func() {}, nil
	}

	need := uint64(fileSize) * decodeFactor
	if need > ml.maxBytes {
		// Одиночный файл крупнее лимита не должен ждать вечно:
		// пропускаем его, когда обработка остальных завершится
		need = ml.maxBytes
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		ml.mu.Lock()
		if ml.currentUsage+need <= ml.maxBytes {
			ml.currentUsage += need
			ml.mu.Unlock()

			return func() {
				ml.mu.Lock()
				ml.currentUsage -= need
				ml.mu.Unlock()
			}, nil
		}
		ml.mu.Unlock()

		// Ждём освобождения резерва
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// IsEnabled возвращает true если ограничение включено.
func (ml *MemoryLimiter) IsEnabled() bool {
	return ml.enabled
}

// CurrentUsage возвращает текущий зарезервированный объём памяти.
func (ml *MemoryLimiter) CurrentUsage() uint64 {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return ml.currentUsage
}

/*
Возможные расширения:
- Заменить опрос на sync.Cond с отдельной горутиной для отмены
- Добавить адаптивную оценку по фактическим размерам растров
*/
