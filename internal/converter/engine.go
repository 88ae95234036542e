// Package converter содержит движок преобразования изображений:
// нормализация ориентации, пропорциональное уменьшение и подбор
// качества JPEG под лимит размера файла.
package converter

import (
	"context"
	"errors"
)

// Ошибки движка. Ошибки ввода-вывода сюда не входят -
// движок работает только с байтами в памяти.
var (
	// ErrDecode - исходные данные не распознаны или повреждены.
	ErrDecode = errors.New("не удалось декодировать изображение")

	// ErrEncode - ошибка кодировщика JPEG.
	ErrEncode = errors.New("не удалось закодировать изображение")
)

// Лестница качества JPEG: от qualityStart вниз с шагом qualityStep
// до qualityMin включительно. Если ни один уровень не уложился в лимит,
// кодируем один раз на qualityFloor и принимаем результат безусловно.
const (
	qualityStart = 95
	qualityStep  = 5
	qualityMin   = 45
	qualityFloor = 40
)

// SizeBudget задаёт ограничения на выходное изображение.
// Неизменяем в течение всей пакетной обработки.
type SizeBudget struct {
	// MaxSide - максимальная сторона в пикселях.
	MaxSide int

	// MaxBytes - максимальный размер закодированного файла в байтах.
	MaxBytes int64
}

// Result содержит результат преобразования.
type Result struct {
	// Data - закодированный JPEG.
	Data []byte

	// Width - ширина выходного изображения.
	Width int

	// Height - высота выходного изображения.
	Height int

	// Quality - уровень качества, на котором остановился подбор.
	// qualityFloor означает, что лимит размера мог быть превышен.
	Quality int
}

// OverBudget возвращает true, если результат превысил лимит размера
// (возможно только на деградационном минимуме качества).
func (r *Result) OverBudget(budget SizeBudget) bool {
	return int64(len(r.Data)) > budget.MaxBytes
}

// Engine преобразует изображение в памяти. Файловый ввод-вывод
// и параллелизм - ответственность вызывающего.
type Engine interface {
	// Transform декодирует raw, разворачивает по EXIF-ориентации,
	// вписывает в квадрат MaxSide x MaxSide и кодирует в JPEG
	// не больше MaxBytes (кроме деградационного минимума).
	Transform(ctx context.Context, raw []byte) (*Result, error)
}

// New создаёт движок преобразования. Реализация выбирается тегами
// сборки: по умолчанию чистый Go, с тегом govips - libvips.
func New(budget SizeBudget) Engine {
	return newEngine(budget)
}

// fitBox вписывает w x h в квадрат maxSide x maxSide, сохраняя пропорции.
// Изображение внутри квадрата возвращается без изменений - увеличения нет.
func fitBox(w, h, maxSide int) (int, int) {
	if w <= maxSide && h <= maxSide {
		return w, h
	}

	// Целочисленная арифметика: длинная сторона становится ровно maxSide,
	// короткая усекается вниз без накопления ошибки плавающей точки.
	var nw, nh int
	if w >= h {
		nw = maxSide
		nh = h * maxSide / w
	} else {
		nh = maxSide
		nw = w * maxSide / h
	}

	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	return nw, nh
}
