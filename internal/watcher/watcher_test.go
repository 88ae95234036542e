package watcher

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiver-90/converter-photo/internal/config"
)

// writeJPEG создаёт небольшой JPEG файл по указанному пути.
func writeJPEG(t *testing.T, path string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 140, B: 160, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWatcher_DetectsNewFile(t *testing.T) {
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.InputDir = dir

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.SetDebounceTime(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	files, err := w.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// Даём watcher время подписаться на директорию
	time.Sleep(100 * time.Millisecond)

	writeJPEG(t, filepath.Join(dir, "new.jpg"))

	select {
	case f := <-files:
		if f.RelPath != "new.jpg" {
			t.Errorf("RelPath = %q, want new.jpg", f.RelPath)
		}
		if f.Size == 0 {
			t.Error("Size не заполнен")
		}
	case <-ctx.Done():
		t.Fatal("файл не был обнаружен за отведённое время")
	}
}

func TestWatcher_IgnoresUnknownExtensions(t *testing.T) {
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.InputDir = dir

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.SetDebounceTime(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	files, err := w.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("заметки"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case f, ok := <-files:
		if ok {
			t.Errorf("неожиданный файл: %s", f.RelPath)
		}
	case <-ctx.Done():
		// Таймаут без событий - ожидаемый исход
	}
}
