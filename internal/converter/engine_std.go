//go:build !govips || !cgo

// Package converter содержит движок преобразования изображений.
package converter

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imageorient"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// stdEngine - реализация движка на чистом Go (image/jpeg + imaging).
// Не требует cgo и системного libvips, но кодирует baseline JPEG
// без progressive-развёртки.
type stdEngine struct {
	budget SizeBudget
}

// newEngine создаёт движок на чистом Go.
func newEngine(budget SizeBudget) Engine {
	return &stdEngine{budget: budget}
}

// Transform выполняет полный конвейер: декодирование, разворот,
// уменьшение, сведение прозрачности, подбор качества.
func (e *stdEngine) Transform(ctx context.Context, raw []byte) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// imageorient разворачивает пиксели по EXIF-ориентации при декодировании.
	// В выходном JPEG тега ориентации нет, поэтому повторное преобразование
	// уже развёрнутого изображения ничего не меняет.
	img, _, err := imageorient.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: пустое изображение %dx%d", ErrDecode, w, h)
	}

	nw, nh := fitBox(w, h, e.budget.MaxSide)
	if nw != w || nh != h {
		img = imaging.Resize(img, nw, nh, imaging.Lanczos)
	}

	img = flatten(img)

	// Подбор качества: сверху вниз, побеждает первый уровень в пределах лимита
	for q := qualityStart; q >= qualityMin; q -= qualityStep {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		data, err := encodeJPEG(img, q)
		if err != nil {
			return nil, err
		}

		if int64(len(data)) <= e.budget.MaxBytes {
			return &Result{Data: data, Width: nw, Height: nh, Quality: q}, nil
		}
	}

	// Деградационный минимум: принимаем безусловно, даже сверх лимита
	data, err := encodeJPEG(img, qualityFloor)
	if err != nil {
		return nil, err
	}

	return &Result{Data: data, Width: nw, Height: nh, Quality: qualityFloor}, nil
}

// flatten сводит прозрачность на белый фон: у JPEG нет альфа-канала.
// Непрозрачные изображения возвращаются как есть.
func flatten(img image.Image) image.Image {
	if op, ok := img.(interface{ Opaque() bool }); ok && op.Opaque() {
		return img
	}

	bg := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// encodeJPEG кодирует изображение в JPEG с заданным качеством.
func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(256 * 1024)

	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("%w: качество %d: %v", ErrEncode, quality, err)
	}

	return buf.Bytes(), nil
}
