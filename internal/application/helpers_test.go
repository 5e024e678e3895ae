package app

import (
	"context"
	"sync"

	"volume-mapper/internal/domain/entity"
)

type fakeController struct {
	packets   [][]byte
	events    []entity.LinkEvent
	updates   int
	connected bool
}

func (f *fakeController) Write(p []byte) {
	f.packets = append(f.packets, append([]byte(nil), p...))
}

func (f *fakeController) Update() { f.updates++ }

func (f *fakeController) DrainEvents() []entity.LinkEvent {
	ev := f.events
	f.events = nil
	return ev
}

func (f *fakeController) Connected() bool { return f.connected }

// fakeSensor отдаёт заранее подготовленные кадры по одному за тик.
type fakeSensor struct {
	depth []*entity.DepthFrame
	color []*entity.ColorFrame
}

func (f *fakeSensor) PollDepthFrame() (*entity.DepthFrame, bool) {
	if len(f.depth) == 0 {
		return nil, false
	}
	d := f.depth[0]
	f.depth = f.depth[1:]
	return d, true
}

func (f *fakeSensor) PollColorFrame() (*entity.ColorFrame, bool) {
	if len(f.color) == 0 {
		return nil, false
	}
	c := f.color[0]
	f.color = f.color[1:]
	return c, true
}

func (f *fakeSensor) Close() error { return nil }

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, text string) {
	n.mu.Lock()
	n.messages = append(n.messages, text)
	n.mu.Unlock()
}

func depthFrame(w, h int, fill float64, seq uint64) *entity.DepthFrame {
	img := entity.NewImage(w, h, 1)
	for i := range img.Pix {
		img.Pix[i] = fill
	}
	return &entity.DepthFrame{Image: img, Seq: seq}
}

func colorFrame(w, h int, fill float64, seq uint64) *entity.ColorFrame {
	img := entity.NewImage(w, h, 3)
	for i := range img.Pix {
		img.Pix[i] = fill
	}
	return &entity.ColorFrame{Image: img, Seq: seq}
}

func smallSettings() entity.ScanSettings {
	s := entity.DefaultScanSettings()
	s.NumLeds = 4
	s.FramesPerLed = 4
	s.GridX, s.GridY, s.GridZ = 4, 4, 8
	s.BackgroundWarmupFrames = 0
	return s
}
