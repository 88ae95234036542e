// Package scanner отвечает за сканирование директорий с изображениями.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/faiver-90/converter-photo/internal/config"
)

// File представляет файл для обработки.
type File struct {
	// Path - абсолютный путь к файлу.
	Path string

	// RelPath - относительный путь от входной директории.
	RelPath string

	// Size - размер файла в байтах.
	Size int64

	// Mtime - время модификации (unix timestamp).
	Mtime int64
}

// Scanner сканирует директории с изображениями.
type Scanner struct {
	cfg *config.Config
}

// New создаёт новый Scanner.
func New(cfg *config.Config) *Scanner {
	return &Scanner{cfg: cfg}
}

// Scan запускает сканирование и отправляет найденные файлы в канал.
// Канал закрывается после завершения сканирования.
func (s *Scanner) Scan(ctx context.Context) (<-chan File, <-chan error) {
	files := make(chan File, 100) // Буферизированный канал
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(errs)

		err := filepath.WalkDir(s.cfg.InputDir, func(path string, d os.DirEntry, err error) error {
			// Проверяем контекст
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err != nil {
				// Логируем ошибку, но продолжаем
				fmt.Fprintf(os.Stderr, "Предупреждение: не удалось прочитать %s: %v\n", path, err)
				return nil
			}

			if d.IsDir() {
				// Пропускаем скрытые директории (включая директорию журнала)
				name := d.Name()
				if path != s.cfg.InputDir && len(name) > 0 && name[0] == '.' {
					return filepath.SkipDir
				}
				return nil
			}

			// Пропускаем macOS metadata файлы (начинаются с ._*)
			baseName := filepath.Base(path)
			if len(baseName) >= 2 && baseName[0] == '.' && baseName[1] == '_' {
				return nil
			}

			// Проверяем расширение
			if !s.cfg.HasInputExtension(filepath.Ext(path)) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Предупреждение: не удалось получить info %s: %v\n", path, err)
				return nil
			}

			relPath, err := filepath.Rel(s.cfg.InputDir, path)
			if err != nil {
				relPath = filepath.Base(path)
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				absPath = path
			}

			file := File{
				Path:    absPath,
				RelPath: relPath,
				Size:    info.Size(),
				Mtime:   info.ModTime().Unix(),
			}

			// Отправляем в канал
			select {
			case files <- file:
			case <-ctx.Done():
				return ctx.Err()
			}

			return nil
		})

		if err != nil {
			errs <- err
		}
	}()

	return files, errs
}

// CountFiles возвращает количество файлов для обработки (для progress bar).
func (s *Scanner) CountFiles() (int64, error) {
	var count int64

	err := filepath.WalkDir(s.cfg.InputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Игнорируем ошибки
		}

		if d.IsDir() {
			name := d.Name()
			if path != s.cfg.InputDir && len(name) > 0 && name[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}

		baseName := filepath.Base(path)
		if len(baseName) >= 2 && baseName[0] == '.' && baseName[1] == '_' {
			return nil
		}

		if s.cfg.HasInputExtension(filepath.Ext(path)) {
			count++
		}

		return nil
	})

	return count, err
}

/*
Возможные расширения:
- Добавить поддержку glob-паттернов для фильтрации
- Добавить поддержку exclude-паттернов
- Добавить поддержку symlinks
*/
