package entity

// OperatorState состояние оператора в диалоге с ботом
type OperatorState string

const (
	StateIdle       OperatorState = "idle"       // Обычный режим
	StateSubscribed OperatorState = "subscribed" // Получает события контроллера
)

// Operator представляет оператора установки в Telegram
type Operator struct {
	ID     int64         // Telegram User ID
	ChatID int64         // Telegram Chat ID
	State  OperatorState // Текущее состояние оператора
}

// NewOperator создаёт нового оператора с начальным состоянием
func NewOperator(userID, chatID int64) *Operator {
	return &Operator{
		ID:     userID,
		ChatID: chatID,
		State:  StateIdle,
	}
}

// SetState обновляет состояние оператора
func (o *Operator) SetState(state OperatorState) {
	o.State = state
}

// Subscribed сообщает, получает ли оператор уведомления
func (o *Operator) Subscribed() bool {
	return o.State == StateSubscribed
}
