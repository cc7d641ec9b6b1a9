package memory

import (
	"withdraw_bot/internal/repository"
)

var (
	_ repository.WithdrawalRepository = (*WithdrawalRepository)(nil)
)
