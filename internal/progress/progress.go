// Package progress предоставляет прогресс-бар с ETA для отображения хода конвертации.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Bar представляет прогресс-бар с поддержкой ETA.
type Bar struct {
	// bar - внутренний progressbar.
	bar *progressbar.ProgressBar

	// mu защищает доступ к bar.
	mu sync.Mutex

	// disabled - флаг отключения прогресс-бара.
	disabled bool

	// startTime - время начала обработки.
	startTime time.Time

	// writer - куда выводить (по умолчанию os.Stderr).
	writer io.Writer
}

// Options содержит настройки для прогресс-бара.
type Options struct {
	// Total - общее количество файлов для обработки.
	Total int64

	// Description - описание задачи.
	Description string

	// Disabled - отключить прогресс-бар (только текстовый вывод).
	Disabled bool

	// Writer - куда выводить (по умолчанию os.Stderr).
	Writer io.Writer
}

// New создаёт новый прогресс-бар. При Total <= 0 (например, в режиме
// слежения количество заранее неизвестно) бар не рисуется.
func New(opts Options) *Bar {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	b := &Bar{
		disabled:  opts.Disabled || opts.Total <= 0,
		startTime: time.Now(),
		writer:    writer,
	}

	if !b.disabled {
		description := opts.Description
		if description == "" {
			description = "Конвертация"
		}

		b.bar = progressbar.NewOptions64(
			opts.Total,
			progressbar.OptionSetWriter(writer),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowBytes(false),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("фото"),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]█[reset]",
				SaucerHead:    "[green]▓[reset]",
				SaucerPadding: "░",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(writer)
			}),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	return b
}

// Increment увеличивает счётчик на 1 (файл обработан, успешно или нет).
func (b *Bar) Increment() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Add(1)
	}
}

// Finish завершает прогресс-бар.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Finish()
	}
}

// Duration возвращает время с начала обработки.
func (b *Bar) Duration() time.Duration {
	return time.Since(b.startTime)
}

// IsDisabled возвращает true, если прогресс-бар отключён.
func (b *Bar) IsDisabled() bool {
	return b.disabled
}

// WriteMessage выводит сообщение, временно скрывая прогресс-бар,
// чтобы строки результатов не рвали отрисовку.
func (b *Bar) WriteMessage(format string, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Clear()
	}

	fmt.Fprintf(b.writer, format, args...)

	if b.bar != nil {
		_ = b.bar.RenderBlank()
	}
}

/*
Возможные расширения:
- Добавить отображение сэкономленных байт прямо в баре
- Добавить вывод в файл лога параллельно с прогресс-баром
*/
