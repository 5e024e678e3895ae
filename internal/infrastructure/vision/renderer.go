//go:build gocv
// +build gocv

package vision

import (
	"fmt"

	"gocv.io/x/gocv"

	"volume-mapper/internal/domain/entity"
	"volume-mapper/internal/domain/port"
)

// PNGRenderer кодирует снимки через OpenCV.
// Одноканальные изображения раскрашиваются картой Jet.
type PNGRenderer struct {
	Colormap gocv.ColormapTypes
}

// NewPNGRenderer создаёт рендерер с картой Jet.
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{Colormap: gocv.ColormapJet}
}

// Render возвращает PNG для изображения.
func (r *PNGRenderer) Render(img *entity.Image) ([]byte, error) {
	data, err := normalize(img)
	if err != nil {
		return nil, err
	}

	matType := gocv.MatTypeCV8UC1
	if img.Channels == 3 {
		matType = gocv.MatTypeCV8UC3
	}
	mat, err := gocv.NewMatFromBytes(img.Height, img.Width, matType, data)
	if err != nil {
		return nil, fmt.Errorf("build mat: %w", err)
	}
	defer mat.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	if img.Channels == 1 {
		gocv.ApplyColorMap(mat, &bgr, r.Colormap)
	} else {
		gocv.CvtColor(mat, &bgr, gocv.ColorRGBToBGR)
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, bgr)
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	defer buf.Close()

	// GetBytes ссылается на память буфера, копируем до Close.
	return append([]byte(nil), buf.GetBytes()...), nil
}

// Проверка реализации интерфейса
var _ port.SnapshotRenderer = (*PNGRenderer)(nil)
