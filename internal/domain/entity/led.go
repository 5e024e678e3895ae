package entity

// Led хранит всё, что накоплено для одного светодиода.
type Led struct {
	ID        int
	Frames    []CapturedFrame // окно кадров, индексируется номером кадра в цикле
	Mask      *DepthMask      // последняя посчитанная маска глубины
	Footprint *Image          // отфильтрованное изображение засветки
	Slices    []*Image        // срезы объёма по z; nil — срез ещё не записан
}

// NewLed создаёт пустой светодиод.
func NewLed(id int) *Led {
	return &Led{ID: id}
}

// Slice возвращает срез z или false, если он ещё не записан.
func (l *Led) Slice(z int) (*Image, bool) {
	if z < 0 || z >= len(l.Slices) || l.Slices[z] == nil {
		return nil, false
	}
	return l.Slices[z], true
}

// LedView — копия состояния светодиода только для чтения (для отображения).
type LedView struct {
	ID        int
	Frames    int
	Mask      *DepthMask
	Footprint *Image
	Slices    []*Image
}

// View делает глубокую копию, которую можно отдавать за пределы цикла сканирования.
func (l *Led) View() LedView {
	v := LedView{
		ID:        l.ID,
		Frames:    len(l.Frames),
		Mask:      l.Mask.Clone(),
		Footprint: l.Footprint.Clone(),
	}
	if len(l.Slices) > 0 {
		v.Slices = make([]*Image, len(l.Slices))
		for i, s := range l.Slices {
			v.Slices[i] = s.Clone()
		}
	}
	return v
}
