// Package config содержит конфигурацию приложения.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig представляет структуру конфигурационного файла YAML.
// Все поля опциональны - если не указаны, используются значения по умолчанию.
type FileConfig struct {
	// Input - настройки входных данных.
	Input *InputConfig `yaml:"input,omitempty"`

	// Output - настройки выходных данных.
	Output *OutputConfig `yaml:"output,omitempty"`

	// Limits - ограничения размеров.
	Limits *LimitsConfig `yaml:"limits,omitempty"`

	// Processing - настройки обработки.
	Processing *ProcessingConfig `yaml:"processing,omitempty"`

	// Paths - настройки путей.
	Paths *PathsConfig `yaml:"paths,omitempty"`
}

// InputConfig содержит настройки входных данных.
type InputConfig struct {
	// Dir - директория с исходными изображениями.
	Dir string `yaml:"dir,omitempty"`

	// Extensions - список расширений входных файлов.
	Extensions []string `yaml:"extensions,omitempty"`
}

// OutputConfig содержит настройки выходных данных.
type OutputConfig struct {
	// Dir - директория для сохранения результатов.
	Dir string `yaml:"dir,omitempty"`

	// KeepTree - сохранять структуру директорий.
	KeepTree *bool `yaml:"keep_tree,omitempty"`
}

// LimitsConfig содержит ограничения размеров выходных изображений.
type LimitsConfig struct {
	// MaxSide - максимальная сторона изображения в пикселях.
	MaxSide int `yaml:"max_side,omitempty"`

	// MaxMB - максимальный размер файла в мегабайтах.
	MaxMB int `yaml:"max_mb,omitempty"`

	// Preset - встроенный профиль (web, social, print, thumbnail).
	Preset string `yaml:"preset,omitempty"`
}

// ProcessingConfig содержит настройки обработки.
type ProcessingConfig struct {
	// Workers - количество параллельных воркеров.
	Workers int `yaml:"workers,omitempty"`

	// DryRun - режим симуляции.
	DryRun bool `yaml:"dry_run,omitempty"`

	// Watch - режим слежения за директорией.
	Watch bool `yaml:"watch,omitempty"`

	// Verbose - подробный вывод.
	Verbose bool `yaml:"verbose,omitempty"`

	// NoProgress - отключить прогресс-бар.
	NoProgress bool `yaml:"no_progress,omitempty"`

	// MaxMemoryMB - ограничение памяти в мегабайтах.
	MaxMemoryMB int `yaml:"max_memory_mb,omitempty"`
}

// PathsConfig содержит настройки путей.
type PathsConfig struct {
	// Journal - путь к SQLite журналу результатов.
	Journal string `yaml:"journal,omitempty"`
}

// LoadFromFile загружает конфигурацию из YAML файла.
func LoadFromFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл конфигурации: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("не удалось разобрать YAML: %w", err)
	}

	return &fc, nil
}

// SaveToFile сохраняет конфигурацию в YAML файл.
func (fc *FileConfig) SaveToFile(path string) error {
	data, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать конфигурацию: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("не удалось создать директорию: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("не удалось записать файл: %w", err)
	}

	return nil
}

// Apply применяет значения из файла к конфигурации.
// Значения из файла применяются только если заданы (не перекрывают флаги нулями).
func (fc *FileConfig) Apply(cfg *Config) {
	if fc.Input != nil {
		if fc.Input.Dir != "" {
			cfg.InputDir = fc.Input.Dir
		}
		if len(fc.Input.Extensions) > 0 {
			cfg.InputExtensions = fc.Input.Extensions
		}
	}

	if fc.Output != nil {
		if fc.Output.Dir != "" {
			cfg.OutputDir = fc.Output.Dir
		}
		if fc.Output.KeepTree != nil {
			cfg.KeepTree = *fc.Output.KeepTree
		}
	}

	if fc.Limits != nil {
		if fc.Limits.Preset != "" {
			cfg.ApplyPreset(fc.Limits.Preset)
		}
		if fc.Limits.MaxSide > 0 {
			cfg.MaxSide = fc.Limits.MaxSide
		}
		if fc.Limits.MaxMB > 0 {
			cfg.MaxMB = fc.Limits.MaxMB
		}
	}

	if fc.Processing != nil {
		if fc.Processing.Workers > 0 {
			cfg.Workers = fc.Processing.Workers
		}
		if fc.Processing.DryRun {
			cfg.DryRun = true
		}
		if fc.Processing.Watch {
			cfg.Watch = true
		}
		if fc.Processing.Verbose {
			cfg.Verbose = true
		}
		if fc.Processing.NoProgress {
			cfg.NoProgress = true
		}
		if fc.Processing.MaxMemoryMB > 0 {
			cfg.MaxMemoryMB = fc.Processing.MaxMemoryMB
		}
	}

	if fc.Paths != nil {
		if fc.Paths.Journal != "" {
			cfg.JournalPath = fc.Paths.Journal
		}
	}
}

// FromConfig создаёт FileConfig из текущей конфигурации.
// Используется для сохранения именованных пресетов.
func FromConfig(cfg *Config) *FileConfig {
	keepTree := cfg.KeepTree

	return &FileConfig{
		Input: &InputConfig{
			Extensions: cfg.InputExtensions,
		},
		Output: &OutputConfig{
			KeepTree: &keepTree,
		},
		Limits: &LimitsConfig{
			MaxSide: cfg.MaxSide,
			MaxMB:   cfg.MaxMB,
			Preset:  cfg.Preset,
		},
		Processing: &ProcessingConfig{
			Workers:     cfg.Workers,
			MaxMemoryMB: cfg.MaxMemoryMB,
		},
	}
}

/*
Возможные расширения:
- Добавить поиск конфигурации в стандартных местах (~/.config, текущая директория)
- Добавить переменные окружения как ещё один источник
*/
