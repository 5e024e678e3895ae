package port

import "context"

// Notifier доставляет операторам текстовые уведомления
type Notifier interface {
	// Notify не должен блокировать цикл сканирования
	Notify(ctx context.Context, text string)
}
