package entity

import "fmt"

// ScanState — текущая позиция цикла сканирования.
type ScanState struct {
	Led   int // светодиод, для которого копятся кадры
	Frame int // номер кадра внутри светодиода
}

// Advance переходит к следующему кадру, при переполнении — к следующему светодиоду.
func (s ScanState) Advance(numLeds, framesPerLed int) ScanState {
	s.Frame++
	if s.Frame >= framesPerLed {
		s.Frame = 0
		s.Led++
		if s.Led >= numLeds {
			s.Led = 0
		}
	}
	return s
}

// Clamp приводит состояние в допустимый диапазон после смены настроек.
func (s ScanState) Clamp(numLeds, framesPerLed int) ScanState {
	if s.Led >= numLeds {
		s.Led = numLeds - 1
	}
	if s.Led < 0 {
		s.Led = 0
	}
	if s.Frame >= framesPerLed {
		s.Frame = framesPerLed - 1
	}
	if s.Frame < 0 {
		s.Frame = 0
	}
	return s
}

// Lit сообщает, горит ли текущий светодиод: он мигает на нечётных кадрах.
func (s ScanState) Lit() bool {
	return s.Frame&1 == 1
}

// LastFrame сообщает, что это последний кадр светодиода перед переходом к следующему.
func (s ScanState) LastFrame(framesPerLed int) bool {
	return s.Frame == framesPerLed-1
}

func (s ScanState) String() string {
	return fmt.Sprintf("led=%d frame=%d", s.Led, s.Frame)
}
