package entity

// DepthMask — маска переднего плана, посчитанная сравнением живой глубины с фоном.
type DepthMask struct {
	Confidence *Image // уверенность 0..1, что пиксель принадлежит переднему плану
	Depth      *Image // живая глубина того же пикселя
}

// NewDepthMask создаёт пустую маску заданного размера.
func NewDepthMask(width, height int) *DepthMask {
	return &DepthMask{
		Confidence: NewImage(width, height, 1),
		Depth:      NewImage(width, height, 1),
	}
}

func (m *DepthMask) Width() int  { return m.Confidence.Width }
func (m *DepthMask) Height() int { return m.Confidence.Height }

// Clone возвращает глубокую копию маски.
func (m *DepthMask) Clone() *DepthMask {
	if m == nil {
		return nil
	}
	return &DepthMask{Confidence: m.Confidence.Clone(), Depth: m.Depth.Clone()}
}
