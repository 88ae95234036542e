//go:build govips && cgo

// Package converter содержит движок преобразования изображений.
package converter

import (
	"context"
	"fmt"

	"github.com/davidbyttow/govips/v2/vips"
)

// govipsEngine - реализация движка на libvips. Быстрее чистого Go
// и кодирует progressive JPEG с оптимизацией таблиц Хаффмана.
// Требует cgo и системный libvips.
type govipsEngine struct {
	budget SizeBudget
}

// newEngine создаёт движок на libvips.
func newEngine(budget SizeBudget) Engine {
	return &govipsEngine{budget: budget}
}

// Transform выполняет полный конвейер через libvips.
func (e *govipsEngine) Transform(ctx context.Context, raw []byte) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img, err := vips.NewImageFromBuffer(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer img.Close()

	// Разворачиваем пиксели по EXIF и сбрасываем тег ориентации.
	// Экспорт ниже идёт со strip, так что тег в выход не попадает.
	if err := img.AutoRotate(); err != nil {
		return nil, fmt.Errorf("%w: autorotate: %v", ErrDecode, err)
	}

	w, h := img.Width(), img.Height()
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: пустое изображение %dx%d", ErrDecode, w, h)
	}

	nw, nh := fitBox(w, h, e.budget.MaxSide)
	if nw != w || nh != h {
		scale := float64(nw) / float64(w)
		if err := img.Resize(scale, vips.KernelLanczos3); err != nil {
			return nil, fmt.Errorf("%w: resize: %v", ErrEncode, err)
		}
	}

	// Сведение прозрачности на белый фон: у JPEG нет альфа-канала
	if img.HasAlpha() {
		if err := img.Flatten(&vips.Color{R: 255, G: 255, B: 255}); err != nil {
			return nil, fmt.Errorf("%w: flatten: %v", ErrEncode, err)
		}
	}

	// Подбор качества: сверху вниз, побеждает первый уровень в пределах лимита
	for q := qualityStart; q >= qualityMin; q -= qualityStep {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		data, err := exportJPEG(img, q)
		if err != nil {
			return nil, err
		}

		if int64(len(data)) <= e.budget.MaxBytes {
			return &Result{Data: data, Width: img.Width(), Height: img.Height(), Quality: q}, nil
		}
	}

	// Деградационный минимум: принимаем безусловно, даже сверх лимита
	data, err := exportJPEG(img, qualityFloor)
	if err != nil {
		return nil, err
	}

	return &Result{Data: data, Width: img.Width(), Height: img.Height(), Quality: qualityFloor}, nil
}

// exportJPEG кодирует изображение с заданным качеством:
// progressive, оптимизация кодирования, без метаданных.
func exportJPEG(img *vips.ImageRef, quality int) ([]byte, error) {
	params := vips.NewJpegExportParams()
	params.Quality = quality
	params.Interlace = true
	params.OptimizeCoding = true
	params.StripMetadata = true

	data, _, err := img.ExportJpeg(params)
	if err != nil {
		return nil, fmt.Errorf("%w: качество %d: %v", ErrEncode, quality, err)
	}

	return data, nil
}
