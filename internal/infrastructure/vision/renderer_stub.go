//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"volume-mapper/internal/domain/entity"
	"volume-mapper/internal/domain/port"
)

// PNGRenderer без OpenCV: оттенки серого для глубины и масок, RGB для цвета.
type PNGRenderer struct{}

// NewPNGRenderer создаёт рендерер-заглушку (без OpenCV).
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{}
}

// Render возвращает PNG для изображения.
func (r *PNGRenderer) Render(img *entity.Image) ([]byte, error) {
	data, err := normalize(img)
	if err != nil {
		return nil, err
	}

	var out image.Image
	rect := image.Rect(0, 0, img.Width, img.Height)
	if img.Channels == 1 {
		gray := image.NewGray(rect)
		copy(gray.Pix, data)
		out = gray
	} else {
		rgba := image.NewRGBA(rect)
		for i := 0; i < img.Width*img.Height; i++ {
			rgba.SetRGBA(i%img.Width, i/img.Width, color.RGBA{
				R: data[i*3],
				G: data[i*3+1],
				B: data[i*3+2],
				A: 255,
			})
		}
		out = rgba
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Проверка реализации интерфейса
var _ port.SnapshotRenderer = (*PNGRenderer)(nil)
