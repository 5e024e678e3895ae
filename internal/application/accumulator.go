package app

import "volume-mapper/internal/domain/entity"

// FrameAccumulator хранит окна кадров всех светодиодов.
type FrameAccumulator struct {
	leds []*entity.Led
}

func NewFrameAccumulator(numLeds int) *FrameAccumulator {
	a := &FrameAccumulator{}
	a.Resize(numLeds)
	return a
}

// Resize меняет число светодиодов. Существующие светодиоды ниже новой границы не трогаются.
func (a *FrameAccumulator) Resize(numLeds int) {
	if numLeds < 0 {
		numLeds = 0
	}
	if numLeds < len(a.leds) {
		clear(a.leds[numLeds:])
		a.leds = a.leds[:numLeds]
		return
	}
	for id := len(a.leds); id < numLeds; id++ {
		a.leds = append(a.leds, entity.NewLed(id))
	}
}

func (a *FrameAccumulator) Len() int {
	return len(a.leds)
}

// Led возвращает светодиод по индексу.
func (a *FrameAccumulator) Led(id int) (*entity.Led, bool) {
	if id < 0 || id >= len(a.leds) {
		return nil, false
	}
	return a.leds[id], true
}

// Leds возвращает все светодиоды. Срез принадлежит аккумулятору.
func (a *FrameAccumulator) Leds() []*entity.Led {
	return a.leds
}

// Store кладёт кадр в слот frameIdx светодиода id, перезаписывая его на месте.
// Окно растёт лениво до frameIdx+1 и обрезается, если framesPerLed уменьшился.
func (a *FrameAccumulator) Store(id, frameIdx, framesPerLed int, frame entity.CapturedFrame) (*entity.Led, bool) {
	led, ok := a.Led(id)
	if !ok || frameIdx < 0 {
		return nil, false
	}

	size := max(min(framesPerLed, len(led.Frames)), frameIdx+1)
	if size < len(led.Frames) {
		clear(led.Frames[size:])
		led.Frames = led.Frames[:size]
	}
	for len(led.Frames) < size {
		led.Frames = append(led.Frames, entity.CapturedFrame{})
	}

	led.Frames[frameIdx] = frame
	return led, true
}

// ClearSlices выбрасывает срезы объёма у всех светодиодов, маски и засветки остаются.
func (a *FrameAccumulator) ClearSlices() {
	for _, led := range a.leds {
		led.Slices = nil
	}
}
