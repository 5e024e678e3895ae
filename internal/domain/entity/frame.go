package entity

import "time"

// DepthFrame — кадр глубины: один канал, расстояние нормировано в диапазон 0..1.
// Кадры принадлежат сенсору и после создания не изменяются.
type DepthFrame struct {
	Image     *Image
	Seq       uint64
	Timestamp time.Time
}

// ColorFrame — цветной кадр: три канала RGB в диапазоне 0..1.
type ColorFrame struct {
	Image     *Image
	Seq       uint64
	Timestamp time.Time
}

// CapturedFrame — пара кадров, сохранённая в слоте светодиода.
type CapturedFrame struct {
	Color *ColorFrame
	Depth *DepthFrame
}

// ValidDepth сообщает, что отсчёт глубины содержит измерение (0 и 1 — «нет данных»).
func ValidDepth(d float64) bool {
	return d > 0 && d < 1
}
