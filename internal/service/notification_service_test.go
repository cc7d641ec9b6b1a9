package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"withdraw_bot/internal/domain"
)

func TestNotificationService_SendWithdrawalNotification(t *testing.T) {
	notifier := &MockNotifier{}
	svc := NewNotificationService(notifier, 2, nil)

	w := domain.NewWithdrawal("u1", domain.AssetBTC, decimal.RequireFromString("0.3"), "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq")
	w.Complete(&domain.Receipt{TxID: "mock_tx_id_BTC_0.3", Remaining: decimal.RequireFromString("0.2")})

	require.NoError(t, svc.SendWithdrawalNotification(context.Background(), w))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))

	sent := notifier.Messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "u1", sent[0].Recipient)
	assert.Equal(t, "Withdrawal Completed", sent[0].Subject)
	assert.Contains(t, sent[0].Message, "mock_tx_id_BTC_0.3")
	assert.Contains(t, sent[0].Message, "bc1qar0srr...")
	assert.NotContains(t, sent[0].Message, "gtzzwf5mdq")
}

func TestNotificationService_FailedWithdrawal(t *testing.T) {
	notifier := &MockNotifier{}
	svc := NewNotificationService(notifier, 1, nil)

	w := domain.NewWithdrawal("u2", domain.AssetETH, decimal.RequireFromString("9"), "0x52908400098527886E0F7030069857D2E4169EE7")
	w.Fail(domain.ErrInsufficientBalance)

	require.NoError(t, svc.SendWithdrawalNotification(context.Background(), w))
	require.NoError(t, svc.Shutdown(context.Background()))

	sent := notifier.Messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Withdrawal Failed", sent[0].Subject)
	assert.Contains(t, sent[0].Message, domain.CodeInsufficientBalance)
}

func TestNotificationService_ShutdownTwice(t *testing.T) {
	svc := NewNotificationService(nil, 1, nil)

	require.NoError(t, svc.Shutdown(context.Background()))
	assert.NoError(t, svc.Shutdown(context.Background()))
}
