// Package config содержит конфигурацию приложения.
package config

// Preset определяет встроенный профиль ограничений.
type Preset string

const (
	// PresetWeb - оптимизация для веба: сторона до 1920, файл до 2 МБ.
	PresetWeb Preset = "web"
	// PresetSocial - для соцсетей и мессенджеров: сторона до 2048, файл до 5 МБ.
	PresetSocial Preset = "social"
	// PresetPrint - для печати: сторона до 4960 (A3 при 300 DPI), файл до 25 МБ.
	PresetPrint Preset = "print"
	// PresetThumbnail - превью: сторона до 400, файл до 1 МБ.
	PresetThumbnail Preset = "thumbnail"
)

// PresetConfig содержит ограничения для пресета.
type PresetConfig struct {
	// MaxSide - максимальная сторона в пикселях.
	MaxSide int
	// MaxMB - максимальный размер файла в мегабайтах.
	MaxMB int
}

// Presets содержит все доступные пресеты.
var Presets = map[Preset]PresetConfig{
	PresetWeb: {
		MaxSide: 1920,
		MaxMB:   2,
	},
	PresetSocial: {
		MaxSide: 2048,
		MaxMB:   5,
	},
	PresetPrint: {
		MaxSide: 4960,
		MaxMB:   25,
	},
	PresetThumbnail: {
		MaxSide: 400,
		MaxMB:   1,
	},
}

// ApplyPreset применяет пресет к конфигурации.
// Возвращает true, если пресет был применён.
func (c *Config) ApplyPreset(preset string) bool {
	p, ok := Presets[Preset(preset)]
	if !ok {
		return false
	}

	c.MaxSide = p.MaxSide
	c.MaxMB = p.MaxMB
	c.Preset = preset

	return true
}
