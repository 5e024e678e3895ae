package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"volume-mapper/internal/domain/entity"
)

const (
	SensorSynthetic = "synthetic"
	SensorCamera    = "camera"

	DefaultSettingsPath = "mapper.yaml"
	DefaultOPCAddr      = "127.0.0.1:7890"
)

type Config struct {
	TelegramToken string
	OPCAddr       string
	Sensor        string
	SettingsPath  string
	Debug         bool
	Scan          entity.ScanSettings
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		OPCAddr:       envOr("OPC_ADDR", DefaultOPCAddr),
		Sensor:        envOr("SENSOR", SensorSynthetic),
		SettingsPath:  envOr("MAPPER_CONFIG", DefaultSettingsPath),
	}

	if raw := os.Getenv("LOG_DEBUG"); raw != "" {
		debug, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("parse LOG_DEBUG: %w", err)
		}
		cfg.Debug = debug
	}

	switch cfg.Sensor {
	case SensorSynthetic, SensorCamera:
	default:
		return nil, fmt.Errorf("unknown sensor %q", cfg.Sensor)
	}

	scan, err := LoadSettings(cfg.SettingsPath)
	if err != nil {
		return nil, err
	}
	cfg.Scan = scan

	return cfg, nil
}

// settingsFile — формат YAML-файла настроек сканирования.
type settingsFile struct {
	NumLeds                int     `yaml:"num_leds"`
	FramesPerLed           int     `yaml:"frames_per_led"`
	Gain                   float64 `yaml:"gain"`
	LedColor               string  `yaml:"led_color"`
	GridX                  int     `yaml:"grid_x"`
	GridY                  int     `yaml:"grid_y"`
	GridZ                  int     `yaml:"grid_z"`
	ZLimit                 float64 `yaml:"z_limit"`
	SliceAlpha             float64 `yaml:"slice_alpha"`
	BackgroundWarmupFrames int     `yaml:"background_warmup_frames"`
	MaskThreshold          float64 `yaml:"mask_threshold"`
	MaskSoftness           float64 `yaml:"mask_softness"`
	Processing             string  `yaml:"processing"`
	BuildSlices            bool    `yaml:"build_slices"`
}

// LoadSettings читает настройки сканирования. Отсутствующий файл — значения по умолчанию,
// отсутствующие ключи берутся из значений по умолчанию.
func LoadSettings(path string) (entity.ScanSettings, error) {
	defaults := entity.DefaultScanSettings()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return defaults, nil
	}
	if err != nil {
		return entity.ScanSettings{}, fmt.Errorf("read settings %s: %w", path, err)
	}
	return ParseSettings(data)
}

// ParseSettings разбирает YAML поверх значений по умолчанию.
func ParseSettings(data []byte) (entity.ScanSettings, error) {
	file := toFile(entity.DefaultScanSettings())
	if err := yaml.Unmarshal(data, &file); err != nil {
		return entity.ScanSettings{}, fmt.Errorf("parse settings: %w", err)
	}

	color, err := colorful.Hex(file.LedColor)
	if err != nil {
		return entity.ScanSettings{}, fmt.Errorf("parse led_color %q: %w", file.LedColor, err)
	}
	r, g, b := color.RGB255()

	switch entity.ProcessingPolicy(file.Processing) {
	case entity.ProcessEveryFrame, entity.ProcessAtBoundary:
	default:
		return entity.ScanSettings{}, fmt.Errorf("unknown processing policy %q", file.Processing)
	}

	s := entity.ScanSettings{
		NumLeds:                file.NumLeds,
		FramesPerLed:           file.FramesPerLed,
		Gain:                   file.Gain,
		LedColor:               entity.RGB{R: r, G: g, B: b},
		GridX:                  file.GridX,
		GridY:                  file.GridY,
		GridZ:                  file.GridZ,
		ZLimit:                 file.ZLimit,
		SliceAlpha:             file.SliceAlpha,
		BackgroundWarmupFrames: file.BackgroundWarmupFrames,
		MaskThreshold:          file.MaskThreshold,
		MaskSoftness:           file.MaskSoftness,
		Processing:             entity.ProcessingPolicy(file.Processing),
		BuildSlices:            file.BuildSlices,
	}
	return s.Normalize(), nil
}

func toFile(s entity.ScanSettings) settingsFile {
	color := colorful.Color{
		R: float64(s.LedColor.R) / 255,
		G: float64(s.LedColor.G) / 255,
		B: float64(s.LedColor.B) / 255,
	}
	return settingsFile{
		NumLeds:                s.NumLeds,
		FramesPerLed:           s.FramesPerLed,
		Gain:                   s.Gain,
		LedColor:               color.Hex(),
		GridX:                  s.GridX,
		GridY:                  s.GridY,
		GridZ:                  s.GridZ,
		ZLimit:                 s.ZLimit,
		SliceAlpha:             s.SliceAlpha,
		BackgroundWarmupFrames: s.BackgroundWarmupFrames,
		MaskThreshold:          s.MaskThreshold,
		MaskSoftness:           s.MaskSoftness,
		Processing:             string(s.Processing),
		BuildSlices:            s.BuildSlices,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
