package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBackgroundModel_UnsetUntilFirstFrame(t *testing.T) {
	bg := NewBackgroundModel(0)
	_, ok := bg.Get()
	require.False(t, ok)
	require.False(t, bg.Capture())

	first := depthFrame(2, 2, 0.5, 1)
	bg.Observe(first)
	got, ok := bg.Get()
	require.True(t, ok)
	require.Same(t, first, got)

	// Без прогрева следующие кадры фон не трогают.
	bg.Observe(depthFrame(2, 2, 0.4, 2))
	got, _ = bg.Get()
	require.Same(t, first, got)
}

func TestBackgroundModel_WarmupRecapturesEveryFrame(t *testing.T) {
	bg := NewBackgroundModel(3)

	var last = depthFrame(1, 1, 0.9, 0)
	for i := uint64(1); i <= 3; i++ {
		last = depthFrame(1, 1, 0.9, i)
		bg.Observe(last)
		got, _ := bg.Get()
		require.Same(t, last, got)
	}
	require.Zero(t, bg.WarmupRemaining())

	bg.Observe(depthFrame(1, 1, 0.1, 4))
	got, _ := bg.Get()
	require.Same(t, last, got, "after warmup only explicit capture replaces the background")
}

func TestBackgroundModel_CaptureTakesLatest(t *testing.T) {
	bg := NewBackgroundModel(0)
	bg.Observe(depthFrame(1, 1, 0.9, 1))
	latest := depthFrame(1, 1, 0.7, 2)
	bg.Observe(latest)

	require.True(t, bg.Capture())
	got, _ := bg.Get()
	require.Same(t, latest, got)
}
