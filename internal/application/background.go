package app

import "volume-mapper/internal/domain/entity"

// BackgroundModel хранит кадр глубины пустой сцены.
// Первые warmup кадров фон перезахватывается на каждом кадре, пока сенсор прогревается.
type BackgroundModel struct {
	frame  *entity.DepthFrame
	latest *entity.DepthFrame
	warmup int
}

func NewBackgroundModel(warmupFrames int) *BackgroundModel {
	if warmupFrames < 0 {
		warmupFrames = 0
	}
	return &BackgroundModel{warmup: warmupFrames}
}

// Observe принимает новый кадр глубины от сенсора.
func (b *BackgroundModel) Observe(frame *entity.DepthFrame) {
	if frame == nil {
		return
	}
	b.latest = frame
	if b.frame == nil || b.warmup > 0 {
		b.frame = frame
	}
	if b.warmup > 0 {
		b.warmup--
	}
}

// Capture заменяет фон последним кадром глубины. Возвращает false, если кадров ещё не было.
func (b *BackgroundModel) Capture() bool {
	if b.latest == nil {
		return false
	}
	b.frame = b.latest
	return true
}

// Get возвращает текущий фон или false, если он ещё не задан.
func (b *BackgroundModel) Get() (*entity.DepthFrame, bool) {
	return b.frame, b.frame != nil
}

// Latest возвращает последний полученный кадр глубины.
func (b *BackgroundModel) Latest() (*entity.DepthFrame, bool) {
	return b.latest, b.latest != nil
}

// WarmupRemaining — сколько кадров ещё будет перезахватываться фон.
func (b *BackgroundModel) WarmupRemaining() int {
	return b.warmup
}
