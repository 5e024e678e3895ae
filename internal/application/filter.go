package app

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"volume-mapper/internal/domain/entity"
)

// AppearanceFilter собирает засветку светодиода из соседних пар кадров.
// Каждая пара даёт |кадр[i+1] - кадр[i]|, умноженное на уверенность маски,
// и складывается с коэффициентом gain / число кадров.
type AppearanceFilter struct {
	scratch []float64
}

func NewAppearanceFilter() *AppearanceFilter {
	return &AppearanceFilter{}
}

// Apply пересчитывает засветку. Возвращает false и не трогает засветку,
// если кадров меньше двух, маски ещё нет или ни одна пара не совпадает по размеру.
func (f *AppearanceFilter) Apply(led *entity.Led, gain float64) bool {
	n := len(led.Frames)
	if n < 2 || led.Mask == nil {
		return false
	}

	first := firstColor(led.Frames)
	if first == nil || !hasComparablePair(led.Frames, first) {
		return false
	}

	if led.Footprint == nil || !led.Footprint.SameShape(first) {
		led.Footprint = entity.NewImage(first.Width, first.Height, first.Channels)
	} else {
		clear(led.Footprint.Pix)
	}

	if cap(f.scratch) < len(led.Footprint.Pix) {
		f.scratch = make([]float64, len(led.Footprint.Pix))
	}
	contribution := f.scratch[:len(led.Footprint.Pix)]
	scale := gain / float64(n)

	for i := 0; i+1 < n; i++ {
		if !pairMatches(led.Frames[i], led.Frames[i+1], first) {
			continue
		}
		a, b := led.Frames[i].Color, led.Frames[i+1].Color
		gatedDifference(contribution, a.Image, b.Image, led.Mask.Confidence)
		floats.AddScaled(led.Footprint.Pix, scale, contribution)
	}
	return true
}

// gatedDifference пишет в dst |b - a| * уверенность маски в том же месте.
func gatedDifference(dst []float64, a, b, confidence *entity.Image) {
	ch := a.Channels
	for y := 0; y < a.Height; y++ {
		my := entity.ScaleCoord(y, a.Height, confidence.Height)
		for x := 0; x < a.Width; x++ {
			w := confidence.At(entity.ScaleCoord(x, a.Width, confidence.Width), my, 0)
			o := a.Offset(x, y)
			for c := 0; c < ch; c++ {
				dst[o+c] = math.Abs(b.Pix[o+c]-a.Pix[o+c]) * w
			}
		}
	}
}

func pairMatches(a, b entity.CapturedFrame, shape *entity.Image) bool {
	return a.Color != nil && b.Color != nil && a.Color.Image.SameShape(shape) && b.Color.Image.SameShape(shape)
}

func hasComparablePair(frames []entity.CapturedFrame, shape *entity.Image) bool {
	for i := 0; i+1 < len(frames); i++ {
		if pairMatches(frames[i], frames[i+1], shape) {
			return true
		}
	}
	return false
}

func firstColor(frames []entity.CapturedFrame) *entity.Image {
	for _, f := range frames {
		if f.Color != nil && !f.Color.Image.Empty() {
			return f.Color.Image
		}
	}
	return nil
}
