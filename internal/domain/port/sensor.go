package port

import "volume-mapper/internal/domain/entity"

// Sensor источник кадров глубины и цвета (Kinect, RealSense, синтетическая сцена)
type Sensor interface {
	// PollDepthFrame возвращает новый кадр глубины, если он появился с прошлого вызова
	PollDepthFrame() (*entity.DepthFrame, bool)

	// PollColorFrame возвращает новый цветной кадр, если он появился с прошлого вызова
	PollColorFrame() (*entity.ColorFrame, bool)

	// Close освобождает устройство
	Close() error
}
