package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"volume-mapper/internal/domain/entity"
)

func volumeSettings(gridZ int, alpha float64) entity.ScanSettings {
	s := entity.DefaultScanSettings()
	s.GridX, s.GridY, s.GridZ = 1, 1, gridZ
	s.ZLimit = 1.0
	s.SliceAlpha = alpha
	return s
}

func ledWithFootprint(lum, depth, confidence float64) *entity.Led {
	led := entity.NewLed(0)
	led.Footprint = entity.NewImage(1, 1, 3)
	for i := range led.Footprint.Pix {
		led.Footprint.Pix[i] = lum
	}
	led.Mask = entity.NewDepthMask(1, 1)
	led.Mask.Depth.Pix[0] = depth
	led.Mask.Confidence.Pix[0] = confidence
	return led
}

func TestVolumeBuilder_SkipsWithoutFootprint(t *testing.T) {
	v := NewVolumeBuilder(volumeSettings(5, 0.5))
	led := entity.NewLed(0)
	require.False(t, v.Build(led))
	require.Empty(t, led.Slices)
}

func TestVolumeBuilder_WritesDepthBand(t *testing.T) {
	v := NewVolumeBuilder(volumeSettings(5, 0.5)) // Δz = 0.25
	led := ledWithFootprint(0.8, 0.3, 1)

	require.True(t, v.Build(led))
	require.Len(t, led.Slices, 5)
	for z := 0; z < 5; z++ {
		s, ok := led.Slice(z)
		require.True(t, ok, "slice %d", z)
		if z == 1 {
			require.InDelta(t, 0.4, s.Pix[0], 1e-9)
		} else {
			require.Zero(t, s.Pix[0])
		}
	}

	lo, hi := v.Band(1)
	require.InDelta(t, 0.25, lo, 1e-12)
	require.InDelta(t, 0.5, hi, 1e-12)
}

func TestVolumeBuilder_AlphaBlendsIntoPriorContents(t *testing.T) {
	v := NewVolumeBuilder(volumeSettings(5, 0.5))
	led := ledWithFootprint(0.8, 0.3, 1)
	require.True(t, v.Build(led))

	// Срез не обнуляется при повторной записи.
	led.Slices[1].Pix[0] = 1.0
	require.True(t, v.Build(led))
	require.InDelta(t, 0.5*1.0+0.5*0.8, led.Slices[1].Pix[0], 1e-9)
}

func TestVolumeBuilder_ConfidenceWeightsIntensity(t *testing.T) {
	v := NewVolumeBuilder(volumeSettings(5, 1))
	led := ledWithFootprint(0.8, 0.3, 0.25)
	require.True(t, v.Build(led))
	require.InDelta(t, 0.2, led.Slices[1].Pix[0], 1e-9)
}

func TestVolumeBuilder_ResizeDiscardsSlices(t *testing.T) {
	s := smallSettings()
	s.GridZ = 128
	v := NewVolumeBuilder(s)
	leds := []*entity.Led{ledWithFootprint(0.8, 0.3, 1), ledWithFootprint(0.5, 0.6, 1)}
	for _, led := range leds {
		require.True(t, v.Build(led))
		require.Len(t, led.Slices, 128)
	}

	require.False(t, v.Reconfigure(s, leds), "same grid keeps slices")
	require.Len(t, leds[0].Slices, 128)

	s.GridZ = 64
	require.True(t, v.Reconfigure(s, leds))
	for _, led := range leds {
		for z := 0; z < 128; z++ {
			_, ok := led.Slice(z)
			require.False(t, ok)
		}
		require.NotNil(t, led.Footprint)
		require.NotNil(t, led.Mask)
	}

	require.True(t, v.Build(leds[0]))
	require.Len(t, leds[0].Slices, 64)
}

func TestVolumeBuilder_ScalesFootprintToGrid(t *testing.T) {
	s := volumeSettings(2, 1)
	s.GridX, s.GridY = 2, 2
	v := NewVolumeBuilder(s) // Δz = 1

	led := entity.NewLed(0)
	led.Footprint = entity.NewImage(4, 4, 1)
	for i := range led.Footprint.Pix {
		led.Footprint.Pix[i] = 1
	}
	led.Mask = entity.NewDepthMask(4, 4)
	for i := range led.Mask.Confidence.Pix {
		led.Mask.Confidence.Pix[i] = 1
		led.Mask.Depth.Pix[i] = 0.5
	}

	require.True(t, v.Build(led))
	require.Equal(t, []float64{1, 1, 1, 1}, led.Slices[0].Pix)
	require.Equal(t, []float64{0, 0, 0, 0}, led.Slices[1].Pix)
}

func TestVolumeBuilder_SingleWorkerMatchesParallel(t *testing.T) {
	s := volumeSettings(33, 0.5)
	parallel := NewVolumeBuilder(s)
	serial := NewVolumeBuilder(s)
	serial.workers = 1

	a := ledWithFootprint(0.6, 0.4, 0.7)
	b := ledWithFootprint(0.6, 0.4, 0.7)
	for i := 0; i < 3; i++ {
		require.True(t, parallel.Build(a))
		require.True(t, serial.Build(b))
	}

	require.Len(t, a.Slices, 33)
	for z := range a.Slices {
		require.Equal(t, b.Slices[z].Pix, a.Slices[z].Pix, "slice %d", z)
	}
}
