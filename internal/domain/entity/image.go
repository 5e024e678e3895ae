package entity

// Image — прямоугольная сетка отсчётов, каналы хранятся подряд для каждого пикселя.
type Image struct {
	Width    int       // ширина в пикселях
	Height   int       // высота в пикселях
	Channels int       // число каналов (1 — скаляр, 3 — RGB)
	Pix      []float64 // отсчёты, len = Width*Height*Channels
}

// NewImage создаёт изображение, заполненное нулями.
func NewImage(width, height, channels int) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if channels < 1 {
		channels = 1
	}
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]float64, width*height*channels),
	}
}

// Empty сообщает, что в изображении нет ни одного пикселя.
func (im *Image) Empty() bool {
	return im == nil || im.Width == 0 || im.Height == 0
}

// Offset возвращает индекс первого канала пикселя (x, y) в Pix.
func (im *Image) Offset(x, y int) int {
	return (y*im.Width + x) * im.Channels
}

// At возвращает значение канала c пикселя (x, y).
func (im *Image) At(x, y, c int) float64 {
	return im.Pix[im.Offset(x, y)+c]
}

// Set записывает значение канала c пикселя (x, y).
func (im *Image) Set(x, y, c int, v float64) {
	im.Pix[im.Offset(x, y)+c] = v
}

// Luminance возвращает яркость пикселя: для RGB по Rec.601, для одного канала — сам отсчёт.
func (im *Image) Luminance(x, y int) float64 {
	o := im.Offset(x, y)
	if im.Channels < 3 {
		return im.Pix[o]
	}
	return 0.299*im.Pix[o] + 0.587*im.Pix[o+1] + 0.114*im.Pix[o+2]
}

// SameShape сообщает, совпадают ли размеры и число каналов.
func (im *Image) SameShape(other *Image) bool {
	if im == nil || other == nil {
		return false
	}
	return im.Width == other.Width && im.Height == other.Height && im.Channels == other.Channels
}

// Clone возвращает глубокую копию изображения.
func (im *Image) Clone() *Image {
	if im == nil {
		return nil
	}
	pix := make([]float64, len(im.Pix))
	copy(pix, im.Pix)
	return &Image{Width: im.Width, Height: im.Height, Channels: im.Channels, Pix: pix}
}

// ScaleCoord переводит координату из сетки размера from в сетку размера to (ближайший сосед).
func ScaleCoord(v, from, to int) int {
	if from <= 0 || to <= 0 {
		return 0
	}
	if from == to {
		return v
	}
	r := v * to / from
	if r >= to {
		r = to - 1
	}
	return r
}
