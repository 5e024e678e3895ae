package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"volume-mapper/internal/domain/entity"
)

func TestLoadSettingsMissingFile(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, entity.DefaultScanSettings(), s)
}

func TestParseSettingsOverridesDefaults(t *testing.T) {
	s, err := ParseSettings([]byte(`
num_leds: 16
frames_per_led: 6
led_color: "#ff8000"
grid_z: 64
processing: every_frame
`))
	require.NoError(t, err)

	require.Equal(t, 16, s.NumLeds)
	require.Equal(t, 6, s.FramesPerLed)
	require.Equal(t, entity.RGB{R: 255, G: 128, B: 0}, s.LedColor)
	require.Equal(t, 64, s.GridZ)
	require.Equal(t, entity.ProcessEveryFrame, s.Processing)
	// не указанные ключи остаются по умолчанию
	require.Equal(t, 120.0, s.Gain)
	require.Equal(t, 128, s.GridX)
	require.True(t, s.BuildSlices)
}

func TestParseSettingsClampsOutOfRange(t *testing.T) {
	s, err := ParseSettings([]byte(`
num_leds: 0
slice_alpha: 3
gain: -1
`))
	require.NoError(t, err)
	require.Equal(t, 1, s.NumLeds)
	require.Equal(t, 1.0, s.SliceAlpha)
	require.Equal(t, 0.0, s.Gain)
}

func TestParseSettingsRejectsBadValues(t *testing.T) {
	_, err := ParseSettings([]byte(`led_color: "nope"`))
	require.Error(t, err)

	_, err = ParseSettings([]byte(`processing: sometimes`))
	require.Error(t, err)

	_, err = ParseSettings([]byte(`num_leds: [1`))
	require.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapper.yaml")
	require.NoError(t, os.WriteFile(path, []byte("num_leds: 8\n"), 0o644))

	t.Setenv("MAPPER_CONFIG", path)
	t.Setenv("OPC_ADDR", "10.0.0.2:7890")
	t.Setenv("SENSOR", SensorCamera)
	t.Setenv("LOG_DEBUG", "true")
	t.Setenv("TELEGRAM_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "10.0.0.2:7890", cfg.OPCAddr)
	require.Equal(t, SensorCamera, cfg.Sensor)
	require.True(t, cfg.Debug)
	require.Equal(t, "token", cfg.TelegramToken)
	require.Equal(t, 8, cfg.Scan.NumLeds)
}

func TestLoadRejectsUnknownSensor(t *testing.T) {
	t.Setenv("MAPPER_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("SENSOR", "webcam")

	_, err := Load()
	require.Error(t, err)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapper.yaml")
	require.NoError(t, os.WriteFile(path, []byte("num_leds: 4\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu  sync.Mutex
		got []entity.ScanSettings
	)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, zaptest.NewLogger(t).Sugar(), func(s entity.ScanSettings) {
			mu.Lock()
			got = append(got, s)
			mu.Unlock()
		})
	}()

	// Watcher регистрируется асинхронно, поэтому пишем, пока изменение не увидят.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("num_leds: 12\n"), 0o644)
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1].NumLeds == 12
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
