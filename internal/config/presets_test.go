package config

import (
	"testing"
)

func TestApplyPreset(t *testing.T) {
	tests := []struct {
		name     string
		preset   string
		wantOK   bool
		wantSide int
		wantMB   int
	}{
		{
			name:     "web preset",
			preset:   "web",
			wantOK:   true,
			wantSide: 1920,
			wantMB:   2,
		},
		{
			name:     "social preset",
			preset:   "social",
			wantOK:   true,
			wantSide: 2048,
			wantMB:   5,
		},
		{
			name:     "print preset",
			preset:   "print",
			wantOK:   true,
			wantSide: 4960,
			wantMB:   25,
		},
		{
			name:     "thumbnail preset",
			preset:   "thumbnail",
			wantOK:   true,
			wantSide: 400,
			wantMB:   1,
		},
		{
			name:   "unknown preset",
			preset: "cinema",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()

			ok := cfg.ApplyPreset(tt.preset)
			if ok != tt.wantOK {
				t.Fatalf("ApplyPreset(%q) = %v, want %v", tt.preset, ok, tt.wantOK)
			}

			if !tt.wantOK {
				// Конфигурация не должна измениться
				if cfg.MaxSide != 2990 || cfg.MaxMB != 10 {
					t.Errorf("unknown preset changed config: MaxSide=%d MaxMB=%d", cfg.MaxSide, cfg.MaxMB)
				}
				return
			}

			if cfg.MaxSide != tt.wantSide {
				t.Errorf("MaxSide = %d, want %d", cfg.MaxSide, tt.wantSide)
			}
			if cfg.MaxMB != tt.wantMB {
				t.Errorf("MaxMB = %d, want %d", cfg.MaxMB, tt.wantMB)
			}
			if cfg.Preset != tt.preset {
				t.Errorf("Preset = %q, want %q", cfg.Preset, tt.preset)
			}
		})
	}
}

func TestPresetsAreValid(t *testing.T) {
	// Все встроенные пресеты должны давать валидную конфигурацию
	for name := range Presets {
		t.Run(string(name), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.InputDir = "/input"
			cfg.OutputDir = "/output"

			if !cfg.ApplyPreset(string(name)) {
				t.Fatalf("ApplyPreset(%q) = false", name)
			}

			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() after preset %q: %v", name, err)
			}
		})
	}
}

func TestFileConfig_Apply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InputDir = "/from-flags"

	keepTree := false
	fc := &FileConfig{
		Output: &OutputConfig{
			Dir:      "/out",
			KeepTree: &keepTree,
		},
		Limits: &LimitsConfig{
			MaxSide: 1234,
			MaxMB:   3,
		},
		Processing: &ProcessingConfig{
			Workers: 2,
		},
	}

	fc.Apply(cfg)

	if cfg.InputDir != "/from-flags" {
		t.Errorf("InputDir = %q, пустое значение из файла не должно перекрывать флаг", cfg.InputDir)
	}
	if cfg.OutputDir != "/out" {
		t.Errorf("OutputDir = %q, want /out", cfg.OutputDir)
	}
	if cfg.KeepTree {
		t.Error("KeepTree should be overridden to false")
	}
	if cfg.MaxSide != 1234 {
		t.Errorf("MaxSide = %d, want 1234", cfg.MaxSide)
	}
	if cfg.MaxMB != 3 {
		t.Errorf("MaxMB = %d, want 3", cfg.MaxMB)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
}
