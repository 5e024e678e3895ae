package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"volume-mapper/internal/domain/entity"
)

func ledWithFrames(mask *entity.DepthMask, values ...float64) *entity.Led {
	led := entity.NewLed(0)
	led.Mask = mask
	for i, v := range values {
		led.Frames = append(led.Frames, entity.CapturedFrame{Color: colorFrame(1, 1, v, uint64(i))})
	}
	return led
}

func fullMask(w, h int, confidence float64) *entity.DepthMask {
	m := entity.NewDepthMask(w, h)
	for i := range m.Confidence.Pix {
		m.Confidence.Pix[i] = confidence
		m.Depth.Pix[i] = 0.5
	}
	return m
}

func TestAppearanceFilter_NoopWithFewerThanTwoFrames(t *testing.T) {
	f := NewAppearanceFilter()

	led := ledWithFrames(fullMask(1, 1, 1))
	require.False(t, f.Apply(led, 10))
	require.Nil(t, led.Footprint)

	led = ledWithFrames(fullMask(1, 1, 1), 0.5)
	prev := entity.NewImage(1, 1, 3)
	prev.Pix[0] = 42
	led.Footprint = prev
	require.False(t, f.Apply(led, 10))
	require.Same(t, prev, led.Footprint)
	require.Equal(t, 42.0, led.Footprint.Pix[0])
}

func TestAppearanceFilter_NoopWithoutMask(t *testing.T) {
	f := NewAppearanceFilter()
	led := ledWithFrames(nil, 0.1, 0.9)
	require.False(t, f.Apply(led, 10))
	require.Nil(t, led.Footprint)
}

func TestAppearanceFilter_GainScaledByFrameCount(t *testing.T) {
	f := NewAppearanceFilter()

	led := ledWithFrames(fullMask(1, 1, 1), 0.2, 0.6)
	require.True(t, f.Apply(led, 10))
	for _, v := range led.Footprint.Pix {
		require.InDelta(t, 10.0/2*0.4, v, 1e-9)
	}

	// Три пары с разницей 1: gain/4 * 3.
	led = ledWithFrames(fullMask(1, 1, 1), 0, 1, 0, 1)
	require.True(t, f.Apply(led, 4))
	for _, v := range led.Footprint.Pix {
		require.InDelta(t, 3.0, v, 1e-9)
	}
}

func TestAppearanceFilter_MaskGatesBackground(t *testing.T) {
	f := NewAppearanceFilter()
	led := ledWithFrames(fullMask(1, 1, 0), 0, 1, 0, 1)
	require.True(t, f.Apply(led, 100))
	for _, v := range led.Footprint.Pix {
		require.Zero(t, v)
	}
}

func TestAppearanceFilter_RecomputesFromScratch(t *testing.T) {
	f := NewAppearanceFilter()
	led := ledWithFrames(fullMask(1, 1, 1), 0.2, 0.6)
	require.True(t, f.Apply(led, 10))
	require.True(t, f.Apply(led, 10))
	require.InDelta(t, 2.0, led.Footprint.Pix[0], 1e-9)
}

func TestAppearanceFilter_SkipsMissingSlots(t *testing.T) {
	f := NewAppearanceFilter()
	led := ledWithFrames(fullMask(1, 1, 1), 0.2, 0.6)
	led.Frames = append(led.Frames, entity.CapturedFrame{}, entity.CapturedFrame{Color: colorFrame(1, 1, 0.9, 9)})

	require.True(t, f.Apply(led, 4))
	// Только пара (0,1) полная: 4/4 * 0.4.
	require.InDelta(t, 0.4, led.Footprint.Pix[0], 1e-9)
}

func TestAppearanceFilter_KeepsFootprintWhenNoPairMatches(t *testing.T) {
	f := NewAppearanceFilter()
	led := ledWithFrames(fullMask(1, 1, 1), 0.2, 0.6)
	require.True(t, f.Apply(led, 10))
	prev := led.Footprint
	before := append([]float64(nil), prev.Pix...)

	// Разрешение цветного потока сменилось посреди окна: пар одинакового размера нет.
	led.Frames[1] = entity.CapturedFrame{Color: colorFrame(2, 2, 0.9, 1)}
	require.False(t, f.Apply(led, 10))
	require.Same(t, prev, led.Footprint)
	require.Equal(t, before, led.Footprint.Pix)
}
