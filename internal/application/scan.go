package app

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"volume-mapper/internal/domain/entity"
	"volume-mapper/internal/domain/port"
)

// Status — сводка состояния сканирования для оператора.
type Status struct {
	SessionID       string
	State           entity.ScanState
	Settings        entity.ScanSettings
	BackgroundSet   bool
	WarmupRemaining int
	LastUpdatedLed  int
	Ticks           uint64
	ColorFrames     uint64
	DepthFrames     uint64
	FootprintMean   float64 // средняя яркость засветки последнего обновлённого светодиода
	MaskCoverage    float64 // доля пикселей переднего плана в его маске
	LinkConnected   bool
}

// ScanService связывает сенсор, реконструкцию и контроллер светодиодов.
// Все методы вызываются из одного потока (см. Runner).
type ScanService struct {
	settings   entity.ScanSettings
	sensor     port.Sensor
	out        port.LedController
	notifier   port.Notifier
	logger     *zap.SugaredLogger
	sessionID  string
	background *BackgroundModel
	frames     *FrameAccumulator
	filter     *AppearanceFilter
	volume     *VolumeBuilder
	seq        *Sequencer

	depth          *entity.DepthFrame
	color          *entity.ColorFrame
	lastUpdatedLed int
	ticks          uint64
	colorFrames    uint64
	depthFrames    uint64
	lastLinkKind   entity.LinkEventKind
}

func NewScanService(settings entity.ScanSettings, sensor port.Sensor, out port.LedController, logger *zap.SugaredLogger) *ScanService {
	settings = settings.Normalize()
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	sessionID := uuid.NewString()
	return &ScanService{
		settings:   settings,
		sensor:     sensor,
		out:        out,
		logger:     logger.With("session", sessionID),
		sessionID:  sessionID,
		background: NewBackgroundModel(settings.BackgroundWarmupFrames),
		frames:     NewFrameAccumulator(settings.NumLeds),
		filter:     NewAppearanceFilter(),
		volume:     NewVolumeBuilder(settings),
		seq:        NewSequencer(out),
	}
}

// SetNotifier подключает доставку событий операторам. Вызывать до запуска цикла.
func (s *ScanService) SetNotifier(n port.Notifier) {
	s.notifier = n
}

// Tick опрашивает сенсор один раз. Отсутствие новых кадров — не ошибка.
func (s *ScanService) Tick() {
	s.ticks++
	if s.sensor != nil {
		if d, ok := s.sensor.PollDepthFrame(); ok && d != nil {
			s.OnDepthFrame(d)
		}
		if c, ok := s.sensor.PollColorFrame(); ok && c != nil {
			s.OnColorFrame(c)
		}
	}
	if s.out != nil {
		s.out.Update()
		s.drainLinkEvents()
	}
}

// OnDepthFrame запоминает живой кадр глубины и обновляет фон.
func (s *ScanService) OnDepthFrame(frame *entity.DepthFrame) {
	s.depthFrames++
	s.depth = frame
	hadBackground := s.backgroundSet()
	s.background.Observe(frame)
	if !hadBackground {
		s.logger.Infof("background initialized from depth frame %d", frame.Seq)
	}
}

// OnColorFrame вызывается ровно один раз на каждый новый цветной кадр, в порядке прихода.
func (s *ScanService) OnColorFrame(frame *entity.ColorFrame) {
	s.colorFrames++
	s.color = frame
	cfg := s.settings
	st := s.seq.State()

	if st.Led < s.frames.Len() {
		led, _ := s.frames.Store(st.Led, st.Frame, cfg.FramesPerLed, entity.CapturedFrame{Color: frame, Depth: s.depth})
		if cfg.Processing == entity.ProcessEveryFrame || st.LastFrame(cfg.FramesPerLed) {
			s.reconstruct(led)
		}
		s.lastUpdatedLed = st.Led
	}

	s.seq.Advance(cfg.NumLeds, cfg.FramesPerLed)
	s.seq.Emit(cfg.NumLeds, cfg.LedColor)
}

// reconstruct выполняет маску, фильтр и срезы для светодиода.
// Без фона или кадра глубины шаг пропускается.
func (s *ScanService) reconstruct(led *entity.Led) {
	bg, ok := s.background.Get()
	if !ok || s.depth == nil {
		return
	}

	led.Mask = ComputeDepthMask(s.depth, bg, MaskParams{
		Threshold: s.settings.MaskThreshold,
		Softness:  s.settings.MaskSoftness,
	}, led.Mask)

	if !s.filter.Apply(led, s.settings.Gain) {
		return
	}
	if s.settings.BuildSlices {
		s.volume.Build(led)
	}
}

// Configure применяет новые настройки на лету.
func (s *ScanService) Configure(next entity.ScanSettings) {
	next = next.Normalize()
	prev := s.settings

	s.frames.Resize(next.NumLeds)
	s.seq.Clamp(next.NumLeds, next.FramesPerLed)
	if s.lastUpdatedLed >= next.NumLeds {
		s.lastUpdatedLed = next.NumLeds - 1
	}
	if s.volume.Reconfigure(next, s.frames.Leds()) {
		s.logger.Infof("volume grid resized %dx%dx%d -> %dx%dx%d, slices discarded",
			prev.GridX, prev.GridY, prev.GridZ, next.GridX, next.GridY, next.GridZ)
	}
	s.settings = next

	if prev.NumLeds != next.NumLeds || prev.FramesPerLed != next.FramesPerLed {
		s.logger.Infof("scan reconfigured: leds %d -> %d, frames per led %d -> %d (%s)",
			prev.NumLeds, next.NumLeds, prev.FramesPerLed, next.FramesPerLed, s.seq.State())
	}
}

// CaptureBackground делает последний кадр глубины новым фоном.
func (s *ScanService) CaptureBackground() bool {
	if !s.background.Capture() {
		s.logger.Warnf("background capture requested before any depth frame")
		return false
	}
	bg, _ := s.background.Get()
	s.logger.Infof("background captured from depth frame %d", bg.Seq)
	return true
}

// ClearGrid выбрасывает срезы всех светодиодов.
func (s *ScanService) ClearGrid() {
	s.frames.ClearSlices()
	s.logger.Infof("volume grid cleared")
}

// Settings возвращает действующие настройки.
func (s *ScanService) Settings() entity.ScanSettings {
	return s.settings
}

// State возвращает текущее состояние сканирования.
func (s *ScanService) State() entity.ScanState {
	return s.seq.State()
}

// Led даёт доступ к светодиоду внутри цикла сканирования.
func (s *ScanService) Led(id int) (*entity.Led, bool) {
	return s.frames.Led(id)
}

// LastUpdatedLed возвращает светодиод, обновлённый последним.
func (s *ScanService) LastUpdatedLed() int {
	return s.lastUpdatedLed
}

// LedView возвращает копию состояния светодиода; id < 0 — последний обновлённый.
func (s *ScanService) LedView(id int) (entity.LedView, bool) {
	if id < 0 {
		id = s.lastUpdatedLed
	}
	led, ok := s.frames.Led(id)
	if !ok {
		return entity.LedView{}, false
	}
	return led.View(), true
}

// LiveFrames возвращает последние живые кадры сенсора.
func (s *ScanService) LiveFrames() (*entity.ColorFrame, *entity.DepthFrame) {
	return s.color, s.depth
}

// Status собирает сводку.
func (s *ScanService) Status() Status {
	st := Status{
		SessionID:       s.sessionID,
		State:           s.seq.State(),
		Settings:        s.settings,
		BackgroundSet:   s.backgroundSet(),
		WarmupRemaining: s.background.WarmupRemaining(),
		LastUpdatedLed:  s.lastUpdatedLed,
		Ticks:           s.ticks,
		ColorFrames:     s.colorFrames,
		DepthFrames:     s.depthFrames,
	}
	if s.out != nil {
		st.LinkConnected = s.out.Connected()
	}
	if led, ok := s.frames.Led(s.lastUpdatedLed); ok {
		if !led.Footprint.Empty() {
			st.FootprintMean = stat.Mean(led.Footprint.Pix, nil)
		}
		if led.Mask != nil && !led.Mask.Confidence.Empty() {
			st.MaskCoverage = coverage(led.Mask.Confidence.Pix)
		}
	}
	return st
}

func (s *ScanService) backgroundSet() bool {
	_, ok := s.background.Get()
	return ok
}

// drainLinkEvents пишет события соединения в лог и пересылает операторам смену состояния.
// Повторы одного и того же события (запись без связи на каждом тике) уходят в debug.
func (s *ScanService) drainLinkEvents() {
	for _, ev := range s.out.DrainEvents() {
		if ev.Kind == s.lastLinkKind {
			s.logger.Debugf("led controller %s", ev)
			continue
		}
		s.lastLinkKind = ev.Kind

		if ev.Kind == entity.LinkConnected {
			s.logger.Infof("led controller %s", ev)
		} else {
			s.logger.Warnf("led controller %s", ev)
		}
		if s.notifier != nil {
			s.notifier.Notify(context.Background(), "LED controller "+ev.String())
		}
	}
}

func coverage(confidence []float64) float64 {
	if len(confidence) == 0 {
		return 0
	}
	n := 0
	for _, c := range confidence {
		if c > 0.5 {
			n++
		}
	}
	return float64(n) / float64(len(confidence))
}
