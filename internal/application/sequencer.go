package app

import (
	"volume-mapper/internal/domain/entity"
	"volume-mapper/internal/domain/port"
)

// Sequencer ведёт состояние сканирования и командует контроллером светодиодов.
type Sequencer struct {
	state  entity.ScanState
	packet *entity.PixelPacket
	out    port.LedController
}

func NewSequencer(out port.LedController) *Sequencer {
	return &Sequencer{
		packet: entity.NewPixelPacket(),
		out:    out,
	}
}

// State возвращает текущее состояние сканирования.
func (s *Sequencer) State() entity.ScanState {
	return s.state
}

// Advance переходит к следующему кадру.
func (s *Sequencer) Advance(numLeds, framesPerLed int) entity.ScanState {
	s.state = s.state.Advance(numLeds, framesPerLed)
	return s.state
}

// Clamp приводит состояние в диапазон после смены числа светодиодов или кадров.
func (s *Sequencer) Clamp(numLeds, framesPerLed int) entity.ScanState {
	s.state = s.state.Clamp(numLeds, framesPerLed)
	return s.state
}

// Emit кодирует пакет для текущего состояния и отправляет его два раза подряд:
// контроллер может интерполировать между командами, дубль фиксирует цвет на этом кадре.
func (s *Sequencer) Emit(numLeds int, color entity.RGB) []byte {
	s.packet.Reset(entity.OPCBroadcastChannel, numLeds)
	if s.state.Lit() && s.state.Led < numLeds {
		s.packet.SetPixel(s.state.Led, color)
	}

	if s.out != nil {
		s.out.Write(s.packet.Bytes())
		s.out.Write(s.packet.Bytes())
	}
	return s.packet.Bytes()
}
