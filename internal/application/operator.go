package app

import (
	"context"

	"volume-mapper/internal/domain/entity"
	"volume-mapper/internal/domain/port"
)

type OperatorService struct {
	repo port.OperatorRepository
}

func NewOperatorService(repo port.OperatorRepository) *OperatorService {
	return &OperatorService{repo: repo}
}

func (s *OperatorService) Get(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *OperatorService) SetState(ctx context.Context, userID, chatID int64, state entity.OperatorState) (*entity.Operator, error) {
	op, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateState(ctx, op.ID, state); err != nil {
		return nil, err
	}
	op.SetState(state)

	return op, nil
}

func (s *OperatorService) Subscribe(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	return s.SetState(ctx, userID, chatID, entity.StateSubscribed)
}

func (s *OperatorService) Unsubscribe(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	return s.SetState(ctx, userID, chatID, entity.StateIdle)
}

// Subscribers возвращает чаты, которым нужно рассылать события.
func (s *OperatorService) Subscribers(ctx context.Context) ([]int64, error) {
	ops, err := s.repo.List(ctx, entity.StateSubscribed)
	if err != nil {
		return nil, err
	}
	chats := make([]int64, 0, len(ops))
	for _, op := range ops {
		chats = append(chats, op.ChatID)
	}
	return chats, nil
}
