// Package worker содержит пул воркеров для параллельной обработки.
package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiver-90/converter-photo/internal/config"
	"github.com/faiver-90/converter-photo/internal/converter"
	"github.com/faiver-90/converter-photo/internal/scanner"
)

// Outcome - результат обработки одного файла. На каждый файл
// ровно один Outcome, порядок выдачи - порядок завершения.
type Outcome struct {
	// SrcPath - абсолютный путь исходного файла.
	SrcPath string

	// RelPath - относительный путь исходного файла.
	RelPath string

	// DstRelPath - относительный путь результата (при успехе).
	DstRelPath string

	// SrcSize - размер исходного файла в байтах.
	SrcSize int64

	// SrcMtime - время модификации исходного файла (unix timestamp).
	SrcMtime int64

	// DstSize - размер выходного файла в байтах.
	DstSize int64

	// Quality - уровень качества JPEG, выбранный подбором.
	Quality int

	// Duration - время обработки.
	Duration time.Duration

	// Err - ошибка (nil при успехе).
	Err error
}

// OK возвращает true, если файл обработан успешно.
func (o *Outcome) OK() bool {
	return o.Err == nil
}

// Stats содержит статистику обработки.
type Stats struct {
	// Processed - количество успешно обработанных файлов.
	Processed int64

	// Failed - количество файлов с ошибками.
	Failed int64

	// Total - общее количество файлов.
	Total int64

	// InputBytes - общий размер входных файлов (обработанных).
	InputBytes int64

	// OutputBytes - общий размер выходных файлов.
	OutputBytes int64
}

// SavedBytes возвращает количество сэкономленных байт.
func (s *Stats) SavedBytes() int64 {
	return s.InputBytes - s.OutputBytes
}

// SavedPercent возвращает процент экономии.
func (s *Stats) SavedPercent() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.SavedBytes()) / float64(s.InputBytes) * 100
}

// FormatBytes форматирует байты в человекочитаемый формат.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// Pool управляет пулом воркеров для обработки файлов.
// Каждый файл целиком (чтение, преобразование, запись) обрабатывается
// одним воркером; общего изменяемого состояния между воркерами нет.
type Pool struct {
	cfg           *config.Config
	engine        converter.Engine
	stats         Stats
	memoryLimiter *MemoryLimiter
}

// New создаёт новый пул воркеров.
func New(cfg *config.Config, engine converter.Engine) *Pool {
	return &Pool{
		cfg:           cfg,
		engine:        engine,
		memoryLimiter: NewMemoryLimiter(cfg.MaxMemoryMB),
	}
}

// Run запускает воркеров и возвращает канал результатов.
// Канал закрывается, когда обработаны все файлы из входного канала.
func (p *Pool) Run(ctx context.Context, files <-chan scanner.File) <-chan Outcome {
	out := make(chan Outcome, p.cfg.Workers)

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, files, out)
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// worker обрабатывает файлы из канала до его закрытия или отмены контекста.
func (p *Pool) worker(ctx context.Context, files <-chan scanner.File, out chan<- Outcome) {
	for {
		select {
		case <-ctx.Done():
			return
		case file, ok := <-files:
			if !ok {
				return
			}

			outcome := p.processFile(ctx, file)

			select {
			case out <- outcome:
			case <-ctx.Done():
				return
			}
		}
	}
}

// processFile обрабатывает один файл: чтение, преобразование, запись.
// Любая ошибка изолируется в Outcome и не влияет на соседние файлы.
func (p *Pool) processFile(ctx context.Context, file scanner.File) Outcome {
	start := time.Now()
	atomic.AddInt64(&p.stats.Total, 1)

	outcome := Outcome{
		SrcPath:  file.Path,
		RelPath:  file.RelPath,
		SrcSize:  file.Size,
		SrcMtime: file.Mtime,
	}

	dstPath := p.buildDstPath(file)
	if rel, err := filepath.Rel(p.cfg.OutputDir, dstPath); err == nil {
		outcome.DstRelPath = rel
	} else {
		outcome.DstRelPath = dstPath
	}

	// Dry run: только маршрут, без чтения и записи
	if p.cfg.DryRun {
		atomic.AddInt64(&p.stats.Processed, 1)
		outcome.Duration = time.Since(start)
		return outcome
	}

	// Ограничение памяти: ждём, если превышен лимит
	if p.memoryLimiter.IsEnabled() {
		release, err := p.memoryLimiter.Acquire(ctx, file.Size)
		if err != nil {
			return p.fail(outcome, start, fmt.Errorf("memory limiter: %w", err))
		}
		defer release()
	}

	raw, err := os.ReadFile(file.Path)
	if err != nil {
		return p.fail(outcome, start, fmt.Errorf("не удалось прочитать файл: %w", err))
	}

	res, err := p.engine.Transform(ctx, raw)
	if err != nil {
		return p.fail(outcome, start, err)
	}

	if err := writeAtomic(dstPath, res.Data); err != nil {
		return p.fail(outcome, start, err)
	}

	outcome.DstSize = int64(len(res.Data))
	outcome.Quality = res.Quality
	outcome.Duration = time.Since(start)

	atomic.AddInt64(&p.stats.Processed, 1)
	atomic.AddInt64(&p.stats.InputBytes, file.Size)
	atomic.AddInt64(&p.stats.OutputBytes, outcome.DstSize)

	return outcome
}

// fail заполняет Outcome ошибкой и обновляет статистику.
func (p *Pool) fail(outcome Outcome, start time.Time, err error) Outcome {
	outcome.Err = err
	outcome.Duration = time.Since(start)
	atomic.AddInt64(&p.stats.Failed, 1)
	return outcome
}

// buildDstPath строит путь к выходному файлу: относительный путь источника
// под выходной директорией, расширение принудительно .jpg.
func (p *Pool) buildDstPath(file scanner.File) string {
	rel := file.RelPath
	if !p.cfg.KeepTree {
		// Плоская структура: только имя файла
		rel = filepath.Base(rel)
	}

	ext := filepath.Ext(rel)
	rel = strings.TrimSuffix(rel, ext) + ".jpg"

	return filepath.Join(p.cfg.OutputDir, rel)
}

// writeAtomic записывает данные через временный файл с переименованием,
// чтобы при ошибке не оставался частично записанный результат.
func writeAtomic(dstPath string, data []byte) error {
	dstDir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("не удалось создать директорию %s: %w", dstDir, err)
	}

	ext := filepath.Ext(dstPath)
	tmpPath := strings.TrimSuffix(dstPath, ext) + ".converting" + ext

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("не удалось записать %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("не удалось переименовать %s -> %s: %w", tmpPath, dstPath, err)
	}

	return nil
}

// GetStats возвращает текущую статистику.
func (p *Pool) GetStats() Stats {
	return Stats{
		Processed:   atomic.LoadInt64(&p.stats.Processed),
		Failed:      atomic.LoadInt64(&p.stats.Failed),
		Total:       atomic.LoadInt64(&p.stats.Total),
		InputBytes:  atomic.LoadInt64(&p.stats.InputBytes),
		OutputBytes: atomic.LoadInt64(&p.stats.OutputBytes),
	}
}

/*
Возможные расширения:
- Добавить retry логику для временных ошибок ввода-вывода
- Добавить graceful shutdown с дообработкой взятых файлов
- Добавить приоритеты (маленькие файлы вперёд)
*/
