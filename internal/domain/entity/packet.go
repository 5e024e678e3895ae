package entity

import (
	"encoding/binary"
	"errors"
)

// Константы протокола Open Pixel Control.
const (
	OPCHeaderSize       = 4      // канал + команда + длина
	OPCBroadcastChannel = 0      // все контроллеры
	OPCSetPixelColors   = 0      // команда установки цветов
	OPCMaxPayload       = 0xFFFF // длина кодируется в 16 бит
)

var ErrShortPacket = errors.New("opc: packet is shorter than header")

// OPCHeader — заголовок пакета OPC.
type OPCHeader struct {
	Channel uint8
	Command uint8
	Length  uint16 // длина полезной нагрузки, big-endian на проводе
}

// DecodeOPCHeader разбирает заголовок пакета.
func DecodeOPCHeader(b []byte) (OPCHeader, error) {
	if len(b) < OPCHeaderSize {
		return OPCHeader{}, ErrShortPacket
	}
	return OPCHeader{
		Channel: b[0],
		Command: b[1],
		Length:  binary.BigEndian.Uint16(b[2:4]),
	}, nil
}

// PixelPacket — переиспользуемый буфер пакета SET_PIXEL_COLORS.
type PixelPacket struct {
	buf []byte
}

// NewPixelPacket выделяет буфер сразу под максимальный пакет, чтобы не расти во время отправки.
func NewPixelPacket() *PixelPacket {
	return &PixelPacket{buf: make([]byte, 0, OPCHeaderSize+OPCMaxPayload)}
}

// Reset готовит пакет на numLeds пикселей: все светодиоды выключены.
func (p *PixelPacket) Reset(channel uint8, numLeds int) {
	numLeds = clampInt(numLeds, 0, MaxLeds)
	p.buf = p.buf[:OPCHeaderSize+numLeds*3]
	clear(p.buf)
	p.buf[0] = channel
	p.buf[1] = OPCSetPixelColors
	binary.BigEndian.PutUint16(p.buf[2:4], uint16(numLeds*3))
}

// NumPixels возвращает число пикселей в пакете.
func (p *PixelPacket) NumPixels() int {
	return (len(p.buf) - OPCHeaderSize) / 3
}

// SetPixel задаёт цвет пикселя; индексы вне пакета игнорируются.
func (p *PixelPacket) SetPixel(i int, c RGB) {
	if i < 0 || i >= p.NumPixels() {
		return
	}
	o := OPCHeaderSize + i*3
	p.buf[o] = c.R
	p.buf[o+1] = c.G
	p.buf[o+2] = c.B
}

// Bytes возвращает закодированный пакет. Срез действителен до следующего Reset.
func (p *PixelPacket) Bytes() []byte {
	return p.buf
}

// Payload возвращает только данные пикселей.
func (p *PixelPacket) Payload() []byte {
	if len(p.buf) < OPCHeaderSize {
		return nil
	}
	return p.buf[OPCHeaderSize:]
}
