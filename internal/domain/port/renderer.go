package port

import "volume-mapper/internal/domain/entity"

// SnapshotRenderer превращает изображение реконструкции в картинку для показа
type SnapshotRenderer interface {
	// Render кодирует изображение в PNG
	Render(img *entity.Image) ([]byte, error)
}
