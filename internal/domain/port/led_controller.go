package port

import "volume-mapper/internal/domain/entity"

// LedController соединение с контроллером светодиодов
type LedController interface {
	// Write ставит пакет в очередь на отправку и никогда не блокирует вызывающего
	Write(packet []byte)

	// Update продвигает состояние соединения (переподключение после обрыва)
	Update()

	// DrainEvents забирает накопленные события соединения
	DrainEvents() []entity.LinkEvent

	// Connected сообщает, установлено ли соединение
	Connected() bool
}
