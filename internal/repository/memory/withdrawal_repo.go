package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"withdraw_bot/internal/domain"
	"withdraw_bot/internal/repository"
)

type WithdrawalRepository struct {
	mu          sync.RWMutex
	withdrawals map[string]*domain.Withdrawal
	userIndex   map[string][]string
}

func NewWithdrawalRepository() *WithdrawalRepository {
	return &WithdrawalRepository{
		withdrawals: make(map[string]*domain.Withdrawal),
		userIndex:   make(map[string][]string),
	}
}

func (r *WithdrawalRepository) Save(ctx context.Context, w *domain.Withdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.withdrawals[w.ID]; exists {
		return fmt.Errorf("%w: withdrawal %s", repository.ErrDuplicate, w.ID)
	}

	r.withdrawals[w.ID] = w
	r.userIndex[w.UserID] = append(r.userIndex[w.UserID], w.ID)

	return nil
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*domain.Withdrawal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, exists := r.withdrawals[id]
	if !exists {
		return nil, fmt.Errorf("%w: withdrawal %s", repository.ErrNotFound, id)
	}
	return w, nil
}

// GetByUserID returns the user's withdrawals, newest first.
func (r *WithdrawalRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Withdrawal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, exists := r.userIndex[userID]
	if !exists {
		return nil, fmt.Errorf("%w: user %s", repository.ErrNotFound, userID)
	}

	result := make([]*domain.Withdrawal, 0, len(ids))
	for _, id := range ids {
		result = append(result, r.withdrawals[id])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if offset >= len(result) {
		return []*domain.Withdrawal{}, nil
	}
	end := len(result)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return result[offset:end], nil
}

func (r *WithdrawalRepository) GetByStatus(ctx context.Context, status domain.WithdrawalStatus) ([]*domain.Withdrawal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Withdrawal
	for _, w := range r.withdrawals {
		if w.Status == status {
			result = append(result, w)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}
