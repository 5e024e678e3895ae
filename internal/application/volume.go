package app

import (
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"volume-mapper/internal/domain/entity"
)

// VolumeBuilder раскладывает засветку светодиода по стопке z-срезов.
type VolumeBuilder struct {
	gridX, gridY, gridZ int
	zStep               float64
	alpha               float64
	workers             int
}

func NewVolumeBuilder(s entity.ScanSettings) *VolumeBuilder {
	v := &VolumeBuilder{workers: runtime.GOMAXPROCS(0)}
	v.configure(s)
	return v
}

func (v *VolumeBuilder) configure(s entity.ScanSettings) {
	v.gridX, v.gridY, v.gridZ = s.GridX, s.GridY, s.GridZ
	v.zStep = s.SliceDepth()
	v.alpha = s.SliceAlpha
}

// Reconfigure применяет новые настройки. Если сетка изменилась, срезы всех
// светодиодов выбрасываются, и возвращается true.
func (v *VolumeBuilder) Reconfigure(s entity.ScanSettings, leds []*entity.Led) bool {
	resized := v.gridX != s.GridX || v.gridY != s.GridY || v.gridZ != s.GridZ
	v.configure(s)
	if resized {
		for _, led := range leds {
			led.Slices = nil
		}
	}
	return resized
}

// Band возвращает диапазон глубин [lo, hi) среза z.
func (v *VolumeBuilder) Band(z int) (lo, hi float64) {
	return float64(z) * v.zStep, float64(z+1) * v.zStep
}

// Build смешивает текущую засветку светодиода во все его срезы.
// Срез создаётся при первой записи и обнуляется только тогда.
func (v *VolumeBuilder) Build(led *entity.Led) bool {
	if led.Footprint.Empty() || led.Mask == nil {
		return false
	}
	if len(led.Slices) != v.gridZ {
		led.Slices = make([]*entity.Image, v.gridZ)
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, v.workers)
	for z := 0; z < v.gridZ; z++ {
		z := z
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			v.buildSlice(led, z)
		}()
	}
	wg.Wait()
	return true
}

func (v *VolumeBuilder) buildSlice(led *entity.Led, z int) {
	slice := led.Slices[z]
	if slice == nil {
		slice = entity.NewImage(v.gridX, v.gridY, 1)
		led.Slices[z] = slice
	}

	lo, hi := v.Band(z)
	fp, mask := led.Footprint, led.Mask
	values := make([]float64, len(slice.Pix))
	for sy := 0; sy < v.gridY; sy++ {
		fy := entity.ScaleCoord(sy, v.gridY, fp.Height)
		my := entity.ScaleCoord(sy, v.gridY, mask.Height())
		for sx := 0; sx < v.gridX; sx++ {
			mx := entity.ScaleCoord(sx, v.gridX, mask.Width())
			depth := mask.Depth.At(mx, my, 0)
			if depth < lo || depth >= hi {
				continue
			}
			fx := entity.ScaleCoord(sx, v.gridX, fp.Width)
			values[sy*v.gridX+sx] = fp.Luminance(fx, fy) * mask.Confidence.At(mx, my, 0)
		}
	}

	floats.Scale(1-v.alpha, slice.Pix)
	floats.AddScaled(slice.Pix, v.alpha, values)
}
