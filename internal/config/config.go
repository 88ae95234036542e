// Package config содержит конфигурацию приложения.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Config содержит все настройки для пакетной конвертации.
type Config struct {
	// InputDir - директория с исходными изображениями.
	InputDir string

	// OutputDir - директория для сохранения результатов.
	OutputDir string

	// InputExtensions - список расширений входных файлов (без точки, lowercase).
	InputExtensions []string

	// MaxSide - максимальная сторона изображения в пикселях.
	// Изображение вписывается в квадрат MaxSide x MaxSide с сохранением пропорций.
	MaxSide int

	// MaxMB - максимальный размер выходного файла в мегабайтах.
	MaxMB int

	// Workers - количество параллельных воркеров.
	Workers int

	// KeepTree - сохранять структуру директорий.
	KeepTree bool

	// DryRun - режим симуляции без реальной конвертации.
	DryRun bool

	// Watch - режим слежения за директорией.
	Watch bool

	// Verbose - подробный вывод (строка на каждый файл).
	Verbose bool

	// NoProgress - отключить прогресс-бар.
	NoProgress bool

	// MaxMemoryMB - ограничение использования памяти в мегабайтах (0 = без ограничения).
	MaxMemoryMB int

	// JournalPath - путь к SQLite журналу результатов.
	JournalPath string

	// NoJournal - не вести журнал результатов.
	NoJournal bool

	// Preset - встроенный профиль (web, social, print, thumbnail).
	Preset string
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() *Config {
	return &Config{
		InputExtensions: []string{"jpg", "jpeg", "png", "webp", "tif", "tiff", "bmp"},
		MaxSide:         2990,
		MaxMB:           10,
		Workers:         runtime.NumCPU(),
		KeepTree:        true,
	}
}

// Validate проверяет корректность конфигурации.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("входная директория не указана (--in)")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("выходная директория не указана (--out)")
	}
	if len(c.InputExtensions) == 0 {
		return fmt.Errorf("не указаны расширения входных файлов (--in-ext)")
	}
	if c.MaxSide < 1 {
		return fmt.Errorf("максимальная сторона должна быть >= 1, получено: %d", c.MaxSide)
	}
	if c.MaxMB < 1 {
		return fmt.Errorf("лимит размера должен быть >= 1 МБ, получено: %d", c.MaxMB)
	}
	if c.Workers < 1 {
		return fmt.Errorf("количество воркеров должно быть >= 1, получено: %d", c.Workers)
	}

	// Устанавливаем путь к журналу по умолчанию
	if !c.NoJournal && c.JournalPath == "" {
		c.JournalPath = filepath.Join(c.OutputDir, ".converter-photo", "journal.sqlite")
	}

	return nil
}

// MaxBytes возвращает лимит размера выходного файла в байтах.
func (c *Config) MaxBytes() int64 {
	return int64(c.MaxMB) * 1024 * 1024
}

// OutputParams возвращает параметры конвертации в виде JSON.
func (c *Config) OutputParams() string {
	params := map[string]interface{}{
		"format":   "jpg",
		"max_side": c.MaxSide,
		"max_mb":   c.MaxMB,
	}
	b, _ := json.Marshal(params)
	return string(b)
}

// OutputParamsHash возвращает sha256 хэш параметров конвертации.
func (c *Config) OutputParamsHash() string {
	h := sha256.Sum256([]byte(c.OutputParams()))
	return hex.EncodeToString(h[:])
}

// HasInputExtension проверяет, поддерживается ли расширение файла.
func (c *Config) HasInputExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, e := range c.InputExtensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

/*
Возможные расширения:
- Добавить настройку лестницы качества (старт/шаг/минимум)
- Добавить exclude-паттерны для сканера
- Добавить выбор фона при сведении прозрачности
*/
