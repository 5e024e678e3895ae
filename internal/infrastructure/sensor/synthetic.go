package sensor

import (
	"math/rand"

	"github.com/benbjohnson/clock"

	"volume-mapper/internal/domain/entity"
	"volume-mapper/internal/domain/port"
)

// SyntheticOptions описывают искусственную сцену: плоскость фона и шар перед ней.
type SyntheticOptions struct {
	Width, Height int
	PlaneDepth    float64 // глубина пустой сцены
	ObjectDepth   float64 // глубина ближайшей точки шара
	ObjectRadius  float64 // радиус шара в долях меньшей стороны кадра
	WarmupFrames  int     // кадров глубины без шара, пока снимается фон; 0 — DefaultObjectDelay
	Noise         float64 // амплитуда шума глубины
	Seed          int64
	Clock         clock.Clock
}

// DefaultObjectDelay больше прогрева фона по умолчанию, чтобы фон сняли с пустой сцены.
const DefaultObjectDelay = 60

func (o SyntheticOptions) withDefaults() SyntheticOptions {
	if o.WarmupFrames <= 0 {
		o.WarmupFrames = DefaultObjectDelay
	}
	if o.Width <= 0 {
		o.Width = 64
	}
	if o.Height <= 0 {
		o.Height = 48
	}
	if o.PlaneDepth <= 0 {
		o.PlaneDepth = 0.8
	}
	if o.ObjectDepth <= 0 {
		o.ObjectDepth = 0.4
	}
	if o.ObjectRadius <= 0 {
		o.ObjectRadius = 0.25
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	return o
}

// Synthetic — сенсор без железа: на каждый опрос отдаёт новую пару кадров.
// Шар подсвечивается на нечётных цветных кадрах, как при мигании светодиода.
type Synthetic struct {
	opts     SyntheticOptions
	rng      *rand.Rand
	depthSeq uint64
	colorSeq uint64
	shape    *entity.Image // высота шара над плоскостью, считается один раз
}

func NewSynthetic(opts SyntheticOptions) *Synthetic {
	opts = opts.withDefaults()
	s := &Synthetic{
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
	}
	s.shape = s.objectShape()
	return s
}

// objectShape возвращает для каждого пикселя высоту шара над плоскостью 0..1.
func (s *Synthetic) objectShape() *entity.Image {
	w, h := s.opts.Width, s.opts.Height
	img := entity.NewImage(w, h, 1)
	r := s.opts.ObjectRadius * float64(min(w, h))
	cx, cy := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := (float64(x)+0.5-cx)/r, (float64(y)+0.5-cy)/r
			d2 := dx*dx + dy*dy
			if d2 < 1 {
				img.Set(x, y, 0, 1-d2)
			}
		}
	}
	return img
}

func (s *Synthetic) PollDepthFrame() (*entity.DepthFrame, bool) {
	seq := s.depthSeq
	s.depthSeq++

	img := entity.NewImage(s.opts.Width, s.opts.Height, 1)
	withObject := seq >= uint64(s.opts.WarmupFrames)
	for i := range img.Pix {
		d := s.opts.PlaneDepth
		if h := s.shape.Pix[i]; withObject && h > 0 {
			d = s.opts.PlaneDepth - (s.opts.PlaneDepth-s.opts.ObjectDepth)*h
		}
		if s.opts.Noise > 0 {
			d += (s.rng.Float64()*2 - 1) * s.opts.Noise
		}
		img.Pix[i] = min(max(d, 0.001), 0.999)
	}
	return &entity.DepthFrame{Image: img, Seq: seq, Timestamp: s.opts.Clock.Now()}, true
}

func (s *Synthetic) PollColorFrame() (*entity.ColorFrame, bool) {
	seq := s.colorSeq
	s.colorSeq++

	lit := seq%2 == 1
	img := entity.NewImage(s.opts.Width, s.opts.Height, 3)
	for i, h := range s.shape.Pix {
		v := 0.1
		if lit && h > 0 {
			v += 0.8 * h
		}
		o := i * 3
		img.Pix[o] = v
		img.Pix[o+1] = v
		img.Pix[o+2] = v
	}
	return &entity.ColorFrame{Image: img, Seq: seq, Timestamp: s.opts.Clock.Now()}, true
}

func (s *Synthetic) Close() error {
	return nil
}

// Проверка реализации интерфейса
var _ port.Sensor = (*Synthetic)(nil)
