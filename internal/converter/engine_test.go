//go:build !govips || !cgo

package converter

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"
)

// makeJPEG кодирует одноцветное изображение w x h в JPEG.
func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 140, B: 160, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("makeJPEG: %v", err)
	}
	return buf.Bytes()
}

// makeNoisyJPEG кодирует шумовое изображение: плохо сжимается,
// размер заметно зависит от качества.
func makeNoisyJPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	rnd := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rnd.Intn(256)),
				G: uint8(rnd.Intn(256)),
				B: uint8(rnd.Intn(256)),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("makeNoisyJPEG: %v", err)
	}
	return buf.Bytes()
}

// makeTransparentPNG кодирует полностью прозрачный PNG w x h.
func makeTransparentPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	// Все пиксели с нулевой альфой

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("makeTransparentPNG: %v", err)
	}
	return buf.Bytes()
}

func TestFitBox(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		maxSide int
		wantW   int
		wantH   int
	}{
		{name: "inside box", w: 100, h: 80, maxSide: 2990, wantW: 100, wantH: 80},
		{name: "exactly on border", w: 2990, h: 2990, maxSide: 2990, wantW: 2990, wantH: 2990},
		{name: "landscape over", w: 6000, h: 4000, maxSide: 2990, wantW: 2990, wantH: 1993},
		{name: "portrait over", w: 4000, h: 6000, maxSide: 2990, wantW: 1993, wantH: 2990},
		{name: "square over", w: 3000, h: 3000, maxSide: 2990, wantW: 2990, wantH: 2990},
		{name: "one side over", w: 3000, h: 100, maxSide: 2990, wantW: 2990, wantH: 99},
		{name: "never upscale", w: 10, h: 10, maxSide: 100, wantW: 10, wantH: 10},
		{name: "extreme ratio", w: 10000, h: 1, maxSide: 100, wantW: 100, wantH: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotW, gotH := fitBox(tt.w, tt.h, tt.maxSide)
			if gotW != tt.wantW || gotH != tt.wantH {
				t.Errorf("fitBox(%d, %d, %d) = %dx%d, want %dx%d",
					tt.w, tt.h, tt.maxSide, gotW, gotH, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestTransform_SmallImageUnchanged(t *testing.T) {
	// Изображение внутри квадрата и под лимитом: без resize,
	// первый же уровень качества (95) подходит
	eng := New(SizeBudget{MaxSide: 2990, MaxBytes: 10 * 1024 * 1024})

	res, err := eng.Transform(context.Background(), makeJPEG(t, 500, 500))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if res.Width != 500 || res.Height != 500 {
		t.Errorf("dimensions = %dx%d, want 500x500", res.Width, res.Height)
	}
	if res.Quality != 95 {
		t.Errorf("Quality = %d, want 95 (первый уровень подбора)", res.Quality)
	}
	if int64(len(res.Data)) > 10*1024*1024 {
		t.Errorf("size %d exceeds budget", len(res.Data))
	}
}

func TestTransform_CapsLongSide(t *testing.T) {
	eng := New(SizeBudget{MaxSide: 299, MaxBytes: 10 * 1024 * 1024})

	res, err := eng.Transform(context.Background(), makeJPEG(t, 1200, 800))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	// k = 299/1200, короткая сторона 800*299/1200 = 199 (усечение вниз)
	if res.Width != 299 || res.Height != 199 {
		t.Errorf("dimensions = %dx%d, want 299x199", res.Width, res.Height)
	}

	// Выход должен быть валидным JPEG с теми же размерами
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("output is not a valid JPEG: %v", err)
	}
	if cfg.Width != 299 || cfg.Height != 199 {
		t.Errorf("encoded dimensions = %dx%d, want 299x199", cfg.Width, cfg.Height)
	}
}

func TestTransform_BudgetRespected(t *testing.T) {
	budget := SizeBudget{MaxSide: 2990, MaxBytes: 1024 * 1024}
	eng := New(budget)

	res, err := eng.Transform(context.Background(), makeNoisyJPEG(t, 300, 300))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if res.OverBudget(budget) {
		t.Errorf("size %d exceeds budget %d at quality %d", len(res.Data), budget.MaxBytes, res.Quality)
	}

	// Уровень качества должен принадлежать лестнице подбора
	if res.Quality < qualityMin || res.Quality > qualityStart || res.Quality%qualityStep != 0 {
		t.Errorf("Quality = %d, ожидался уровень лестницы %d..%d с шагом %d",
			res.Quality, qualityMin, qualityStart, qualityStep)
	}
}

func TestTransform_FallbackOverBudget(t *testing.T) {
	// Лимит в один байт невыполним: подбор исчерпывается и срабатывает
	// деградационный минимум - успех, даже с превышением лимита
	budget := SizeBudget{MaxSide: 2990, MaxBytes: 1}
	eng := New(budget)

	res, err := eng.Transform(context.Background(), makeNoisyJPEG(t, 200, 200))
	if err != nil {
		t.Fatalf("Transform должен завершиться успехом на минимуме качества: %v", err)
	}

	if res.Quality != qualityFloor {
		t.Errorf("Quality = %d, want %d", res.Quality, qualityFloor)
	}
	if !res.OverBudget(budget) {
		t.Errorf("ожидалось превышение лимита в 1 байт, размер %d", len(res.Data))
	}
}

func TestTransform_FlattensAlphaToWhite(t *testing.T) {
	eng := New(SizeBudget{MaxSide: 2990, MaxBytes: 10 * 1024 * 1024})

	res, err := eng.Transform(context.Background(), makeTransparentPNG(t, 64, 64))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	out, err := jpeg.Decode(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("output is not a valid JPEG: %v", err)
	}

	// Полностью прозрачный вход сводится на белый фон
	r, g, b, _ := out.At(32, 32).RGBA()
	const min = 0xF000 // допуск на потери JPEG
	if r < min || g < min || b < min {
		t.Errorf("center pixel = (%d, %d, %d), ожидался белый фон", r>>8, g>>8, b>>8)
	}
}

func TestTransform_CorruptInput(t *testing.T) {
	eng := New(SizeBudget{MaxSide: 2990, MaxBytes: 10 * 1024 * 1024})

	_, err := eng.Transform(context.Background(), []byte("это не изображение"))
	if err == nil {
		t.Fatal("Transform should fail on corrupt input")
	}
	if !errors.Is(err, ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
}

func TestTransform_SecondPassIsIdentity(t *testing.T) {
	// Повторное преобразование собственного выхода ничего не меняет
	// геометрически: тега ориентации нет, размеры уже внутри квадрата
	eng := New(SizeBudget{MaxSide: 299, MaxBytes: 10 * 1024 * 1024})

	first, err := eng.Transform(context.Background(), makeJPEG(t, 1200, 800))
	if err != nil {
		t.Fatalf("first Transform: %v", err)
	}

	second, err := eng.Transform(context.Background(), first.Data)
	if err != nil {
		t.Fatalf("second Transform: %v", err)
	}

	if second.Width != first.Width || second.Height != first.Height {
		t.Errorf("second pass = %dx%d, want %dx%d",
			second.Width, second.Height, first.Width, first.Height)
	}
}

func TestTransform_CancelledContext(t *testing.T) {
	eng := New(SizeBudget{MaxSide: 2990, MaxBytes: 10 * 1024 * 1024})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := eng.Transform(ctx, makeJPEG(t, 10, 10)); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
