package vision

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"volume-mapper/internal/domain/entity"
)

var ErrEmptyImage = errors.New("empty image")

// normalize переводит изображение в байты 0..255, деля на максимум.
// Отрицательные значения обрезаются до нуля, нулевое изображение остаётся чёрным.
func normalize(img *entity.Image) ([]byte, error) {
	if img.Empty() {
		return nil, ErrEmptyImage
	}
	if img.Channels != 1 && img.Channels != 3 {
		return nil, fmt.Errorf("unsupported channel count %d", img.Channels)
	}

	out := make([]byte, len(img.Pix))
	peak := floats.Max(img.Pix)
	if peak <= 0 {
		return out, nil
	}
	for i, v := range img.Pix {
		if v <= 0 {
			continue
		}
		out[i] = uint8(v / peak * 255)
	}
	return out, nil
}
