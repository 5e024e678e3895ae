package app

import "volume-mapper/internal/domain/entity"

// MaskParams — параметры сравнения живой глубины с фоном.
type MaskParams struct {
	Threshold float64 // минимальная разница глубин, ниже которой пиксель считается фоном
	Softness  float64 // ширина линейного перехода уверенности; 0 — жёсткий порог
}

// ComputeDepthMask сравнивает живой кадр глубины с фоном попиксельно.
// Пиксель считается передним планом, когда он заметно ближе фона. Отсчёты фона без
// измерения считаются дальней плоскостью. dst переиспользуется, если размер совпадает.
func ComputeDepthMask(live, background *entity.DepthFrame, p MaskParams, dst *entity.DepthMask) *entity.DepthMask {
	if live == nil || live.Image.Empty() {
		return dst
	}
	if background == nil || background.Image.Empty() {
		background = live
	}

	w, h := live.Image.Width, live.Image.Height
	if dst == nil || dst.Width() != w || dst.Height() != h {
		dst = entity.NewDepthMask(w, h)
	}

	bg := background.Image
	for y := 0; y < h; y++ {
		by := entity.ScaleCoord(y, h, bg.Height)
		for x := 0; x < w; x++ {
			d := live.Image.At(x, y, 0)
			b := bg.At(entity.ScaleCoord(x, w, bg.Width), by, 0)
			dst.Depth.Set(x, y, 0, d)
			dst.Confidence.Set(x, y, 0, maskConfidence(d, b, p))
		}
	}
	return dst
}

func maskConfidence(live, background float64, p MaskParams) float64 {
	if !entity.ValidDepth(live) {
		return 0
	}
	if !entity.ValidDepth(background) {
		background = 1
	}
	diff := background - live - p.Threshold
	if diff <= 0 {
		return 0
	}
	if p.Softness <= 0 {
		return 1
	}
	return min(diff/p.Softness, 1)
}
