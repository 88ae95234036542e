package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	// Проверяем значения по умолчанию
	if cfg.MaxSide != 2990 {
		t.Errorf("MaxSide = %d, want 2990", cfg.MaxSide)
	}

	if cfg.MaxMB != 10 {
		t.Errorf("MaxMB = %d, want 10", cfg.MaxMB)
	}

	if cfg.Workers < 1 {
		t.Errorf("Workers = %d, want >= 1", cfg.Workers)
	}

	if !cfg.KeepTree {
		t.Error("KeepTree should be true by default")
	}

	if len(cfg.InputExtensions) == 0 {
		t.Error("InputExtensions should not be empty by default")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: &Config{
				InputDir:        "/input",
				OutputDir:       "/output",
				InputExtensions: []string{"jpg", "png"},
				MaxSide:         2990,
				MaxMB:           10,
				Workers:         4,
			},
			wantErr: false,
		},
		{
			name: "missing input dir",
			cfg: &Config{
				OutputDir:       "/output",
				InputExtensions: []string{"jpg"},
				MaxSide:         2990,
				MaxMB:           10,
				Workers:         4,
			},
			wantErr: true,
		},
		{
			name: "missing output dir",
			cfg: &Config{
				InputDir:        "/input",
				InputExtensions: []string{"jpg"},
				MaxSide:         2990,
				MaxMB:           10,
				Workers:         4,
			},
			wantErr: true,
		},
		{
			name: "invalid max side",
			cfg: &Config{
				InputDir:        "/input",
				OutputDir:       "/output",
				InputExtensions: []string{"jpg"},
				MaxSide:         0,
				MaxMB:           10,
				Workers:         4,
			},
			wantErr: true,
		},
		{
			name: "invalid max mb",
			cfg: &Config{
				InputDir:        "/input",
				OutputDir:       "/output",
				InputExtensions: []string{"jpg"},
				MaxSide:         2990,
				MaxMB:           0,
				Workers:         4,
			},
			wantErr: true,
		},
		{
			name: "invalid workers",
			cfg: &Config{
				InputDir:        "/input",
				OutputDir:       "/output",
				InputExtensions: []string{"jpg"},
				MaxSide:         2990,
				MaxMB:           10,
				Workers:         0,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_DefaultJournalPath(t *testing.T) {
	cfg := &Config{
		InputDir:        "/input",
		OutputDir:       "/output",
		InputExtensions: []string{"jpg"},
		MaxSide:         2990,
		MaxMB:           10,
		Workers:         4,
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.JournalPath == "" {
		t.Error("Validate() should set default JournalPath")
	}
}

func TestConfig_HasInputExtension(t *testing.T) {
	cfg := &Config{
		InputExtensions: []string{"jpg", "jpeg", "png"},
	}

	tests := []struct {
		ext  string
		want bool
	}{
		{"jpg", true},
		{"jpeg", true},
		{"png", true},
		{".jpg", true},  // с точкой
		{"JPG", true},   // case insensitive
		{".JPEG", true}, // case insensitive
		{"webp", false},
		{"gif", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := cfg.HasInputExtension(tt.ext); got != tt.want {
				t.Errorf("HasInputExtension(%q) = %v, want %v", tt.ext, got, tt.want)
			}
		})
	}
}

func TestConfig_MaxBytes(t *testing.T) {
	cfg := &Config{MaxMB: 10}

	want := int64(10 * 1024 * 1024)
	if got := cfg.MaxBytes(); got != want {
		t.Errorf("MaxBytes() = %d, want %d", got, want)
	}
}

func TestConfig_OutputParamsHash(t *testing.T) {
	a := &Config{MaxSide: 2990, MaxMB: 10}
	b := &Config{MaxSide: 2990, MaxMB: 10}
	c := &Config{MaxSide: 1920, MaxMB: 10}

	if a.OutputParamsHash() != b.OutputParamsHash() {
		t.Error("hash should be stable for equal params")
	}

	if a.OutputParamsHash() == c.OutputParamsHash() {
		t.Error("hash should differ for different params")
	}
}
