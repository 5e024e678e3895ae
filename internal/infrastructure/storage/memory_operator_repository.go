package storage

import (
	"context"
	"sort"
	"sync"

	"volume-mapper/internal/domain/entity"
	"volume-mapper/internal/domain/port"
)

// MemoryOperatorRepository in-memory хранилище операторов
type MemoryOperatorRepository struct {
	mu        sync.RWMutex
	operators map[int64]*entity.Operator
}

// NewMemoryOperatorRepository создаёт новое in-memory хранилище
func NewMemoryOperatorRepository() *MemoryOperatorRepository {
	return &MemoryOperatorRepository{
		operators: make(map[int64]*entity.Operator),
	}
}

// Get возвращает оператора по ID, создаёт нового если не найден
func (r *MemoryOperatorRepository) Get(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if op, exists := r.operators[userID]; exists {
		copied := *op
		return &copied, nil
	}

	op := entity.NewOperator(userID, chatID)
	r.operators[userID] = op

	copied := *op
	return &copied, nil
}

// Save сохраняет состояние оператора
func (r *MemoryOperatorRepository) Save(ctx context.Context, operator *entity.Operator) error {
	copied := *operator

	r.mu.Lock()
	r.operators[operator.ID] = &copied
	r.mu.Unlock()

	return nil
}

// UpdateState обновляет состояние оператора
func (r *MemoryOperatorRepository) UpdateState(ctx context.Context, userID int64, state entity.OperatorState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if op, exists := r.operators[userID]; exists {
		op.SetState(state)
	}

	return nil
}

// List возвращает операторов в заданном состоянии, упорядоченных по ID
func (r *MemoryOperatorRepository) List(ctx context.Context, state entity.OperatorState) ([]*entity.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entity.Operator, 0, len(r.operators))
	for _, op := range r.operators {
		if op.State != state {
			continue
		}
		copied := *op
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

// Проверка реализации интерфейса
var _ port.OperatorRepository = (*MemoryOperatorRepository)(nil)
