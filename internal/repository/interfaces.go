package repository

import (
	"context"
	"errors"

	"withdraw_bot/internal/domain"
)

type WithdrawalRepository interface {
	Save(ctx context.Context, withdrawal *domain.Withdrawal) error
	GetByID(ctx context.Context, id string) (*domain.Withdrawal, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Withdrawal, error)
	GetByStatus(ctx context.Context, status domain.WithdrawalStatus) ([]*domain.Withdrawal, error)
}

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)
