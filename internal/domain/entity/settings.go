package entity

// ProcessingPolicy определяет, когда пересчитывается реконструкция.
type ProcessingPolicy string

const (
	ProcessEveryFrame ProcessingPolicy = "every_frame" // на каждом цветном кадре
	ProcessAtBoundary ProcessingPolicy = "boundary"    // на последнем кадре светодиода
)

// MaxLeds — максимум светодиодов, который помещается в один пакет OPC.
const MaxLeds = OPCMaxPayload / 3

// RGB — цвет светодиода, 0..255 на канал.
type RGB struct {
	R, G, B uint8
}

// IsZero сообщает, что цвет чёрный (светодиод выключен).
func (c RGB) IsZero() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

// ScanSettings — настройки сканирования, которые можно менять на лету.
type ScanSettings struct {
	NumLeds                int
	FramesPerLed           int
	Gain                   float64
	LedColor               RGB
	GridX                  int
	GridY                  int
	GridZ                  int
	ZLimit                 float64
	SliceAlpha             float64
	BackgroundWarmupFrames int
	MaskThreshold          float64 // насколько живая глубина должна быть ближе фона
	MaskSoftness           float64 // ширина перехода уверенности от 0 к 1
	Processing             ProcessingPolicy
	BuildSlices            bool
}

// DefaultScanSettings возвращает настройки по умолчанию.
func DefaultScanSettings() ScanSettings {
	return ScanSettings{
		NumLeds:                4,
		FramesPerLed:           4,
		Gain:                   120,
		LedColor:               RGB{R: 255, G: 255, B: 255},
		GridX:                  128,
		GridY:                  128,
		GridZ:                  128,
		ZLimit:                 1.0,
		SliceAlpha:             0.25,
		BackgroundWarmupFrames: 30,
		MaskThreshold:          0.01,
		MaskSoftness:           0.05,
		Processing:             ProcessAtBoundary,
		BuildSlices:            true,
	}
}

// Normalize молча приводит значения в допустимые диапазоны.
func (s ScanSettings) Normalize() ScanSettings {
	s.NumLeds = clampInt(s.NumLeds, 1, MaxLeds)
	s.FramesPerLed = clampInt(s.FramesPerLed, 1, 1<<16)
	s.GridX = clampInt(s.GridX, 1, 4096)
	s.GridY = clampInt(s.GridY, 1, 4096)
	s.GridZ = clampInt(s.GridZ, 1, 4096)
	if s.Gain < 0 {
		s.Gain = 0
	}
	if s.ZLimit <= 0 {
		s.ZLimit = 1.0
	}
	if s.SliceAlpha < 0 {
		s.SliceAlpha = 0
	}
	if s.SliceAlpha > 1 {
		s.SliceAlpha = 1
	}
	if s.BackgroundWarmupFrames < 0 {
		s.BackgroundWarmupFrames = 0
	}
	if s.MaskThreshold < 0 {
		s.MaskThreshold = 0
	}
	if s.MaskSoftness < 0 {
		s.MaskSoftness = 0
	}
	if s.Processing != ProcessEveryFrame {
		s.Processing = ProcessAtBoundary
	}
	return s
}

// SliceDepth возвращает толщину одного z-среза: zLimit / (gridZ - 1).
func (s ScanSettings) SliceDepth() float64 {
	if s.GridZ <= 1 {
		return s.ZLimit
	}
	return s.ZLimit / float64(s.GridZ-1)
}

// SameGrid сообщает, совпадает ли сетка объёма.
func (s ScanSettings) SameGrid(other ScanSettings) bool {
	return s.GridX == other.GridX && s.GridY == other.GridY && s.GridZ == other.GridZ
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
