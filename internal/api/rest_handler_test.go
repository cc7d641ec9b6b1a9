package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"withdraw_bot/internal/domain"
	"withdraw_bot/internal/repository"
	"withdraw_bot/pkg/crypto"
)

type fakeConversation struct {
	calls []domain.Event
	explode bool
}

func (f *fakeConversation) HandleEvent(ctx context.Context, userID string, ev domain.Event) domain.OutboundMessage {
	if f.explode {
		panic("ledger invariant violated")
	}
	f.calls = append(f.calls, ev)
	return domain.MenuMessage("echo " + userID + " " + ev.Data)
}

type fakeBalances struct {
	connected bool
}

func (f fakeBalances) IsConnected() bool { return f.connected }

func (f fakeBalances) Balances() map[domain.AssetSymbol]decimal.Decimal {
	if !f.connected {
		return map[domain.AssetSymbol]decimal.Decimal{}
	}
	return map[domain.AssetSymbol]decimal.Decimal{domain.AssetBTC: decimal.RequireFromString("0.5")}
}

type fakeHistory struct {
	withdrawals map[string][]*domain.Withdrawal
	limit       int
	offset      int
}

func (f *fakeHistory) ListWithdrawals(ctx context.Context, userID string, limit, offset int) ([]*domain.Withdrawal, error) {
	f.limit, f.offset = limit, offset
	ws, ok := f.withdrawals[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return ws, nil
}

func newTestMux(conv Conversation, balances BalanceReader, history WithdrawalHistory, signer *crypto.Signer) *http.ServeMux {
	mux := http.NewServeMux()
	NewAPIHandler(conv, balances, history, signer, nil).RegisterRoutes(mux)
	return mux
}

func postEvent(t *testing.T, mux http.Handler, body string, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(crypto.SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAPIHandler_EventHandler_Success(t *testing.T) {
	conv := &fakeConversation{}
	mux := newTestMux(conv, fakeBalances{}, &fakeHistory{}, nil)

	rec := postEvent(t, mux, `{"user_id":"u1","type":"button","data":"start"}`, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var msg domain.OutboundMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msg))
	assert.Equal(t, domain.ShowMenu, msg.Kind)
	assert.Equal(t, "echo u1 start", msg.Text)
	assert.Equal(t, []domain.Event{domain.ButtonEvent("start")}, conv.calls)
}

func TestAPIHandler_EventHandler_Validation(t *testing.T) {
	mux := newTestMux(&fakeConversation{}, fakeBalances{}, &fakeHistory{}, nil)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed json", `{"user_id":`, "INVALID_REQUEST"},
		{"missing user", `{"type":"text","data":"hi"}`, "VALIDATION_ERROR"},
		{"unknown type", `{"user_id":"u1","type":"sticker","data":"x"}`, "VALIDATION_ERROR"},
		{"empty button", `{"user_id":"u1","type":"button","data":""}`, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postEvent(t, mux, tt.body, "")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestAPIHandler_EventHandler_EmptyTextIsForwarded(t *testing.T) {
	conv := &fakeConversation{}
	mux := newTestMux(conv, fakeBalances{}, &fakeHistory{}, nil)

	rec := postEvent(t, mux, `{"user_id":"u1","type":"text","data":""}`, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []domain.Event{domain.TextInput("")}, conv.calls)
}

func TestAPIHandler_EventHandler_Signature(t *testing.T) {
	signer := crypto.NewSigner("webhook-secret", nil)
	mux := newTestMux(&fakeConversation{}, fakeBalances{}, &fakeHistory{}, signer)
	body := `{"user_id":"u1","type":"text","data":"hi"}`

	rec := postEvent(t, mux, body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postEvent(t, mux, body, "sha256=deadbeef")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postEvent(t, mux, body, "sha256="+signer.Sign([]byte(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIHandler_EventHandler_RecoversPanic(t *testing.T) {
	mux := newTestMux(&fakeConversation{explode: true}, fakeBalances{}, &fakeHistory{}, nil)

	rec := postEvent(t, mux, `{"user_id":"u1","type":"text","data":"0.1"}`, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var msg domain.OutboundMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msg))
	assert.Equal(t, domain.ShowError, msg.Kind)
	assert.Equal(t, domain.CodeInternal, msg.Code)
	assert.Equal(t, "An error occurred. Please try again.", msg.Text)
	assert.Equal(t, domain.MainMenuButtons(), msg.Buttons)
}

func TestAPIHandler_BalancesHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux(&fakeConversation{}, fakeBalances{}, &fakeHistory{}, nil).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/balances", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	newTestMux(&fakeConversation{}, fakeBalances{connected: true}, &fakeHistory{}, nil).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/balances", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"connected":true,"balances":{"BTC":"0.5"}}`, rec.Body.String())
}

func TestAPIHandler_WithdrawalsHandler(t *testing.T) {
	history := &fakeHistory{withdrawals: map[string][]*domain.Withdrawal{
		"u1": {domain.NewWithdrawal("u1", domain.AssetBTC, decimal.RequireFromString("0.1"), "addr")},
	}}
	mux := newTestMux(&fakeConversation{}, fakeBalances{}, history, nil)

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	rec := get("/api/v1/withdrawals?user_id=u1&limit=5&offset=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp WithdrawalsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 5, history.limit)
	assert.Equal(t, 1, history.offset)

	rec = get("/api/v1/withdrawals?user_id=nobody")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"withdrawals":[],"count":0}`, rec.Body.String())
	assert.Equal(t, defaultPageSize, history.limit)

	assert.Equal(t, http.StatusBadRequest, get("/api/v1/withdrawals").Code)
	assert.Equal(t, http.StatusBadRequest, get("/api/v1/withdrawals?user_id=u1&limit=-1").Code)
}

func TestAPIHandler_HealthCheckHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux(&fakeConversation{}, fakeBalances{connected: true}, &fakeHistory{}, nil).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["connected"])
}

func TestAPIHandler_EventHandler_BodyTooLarge(t *testing.T) {
	mux := newTestMux(&fakeConversation{}, fakeBalances{}, &fakeHistory{}, nil)
	big := bytes.Repeat([]byte("a"), maxEventBodyBytes+1)

	rec := postEvent(t, mux, `{"user_id":"u1","type":"text","data":"`+string(big)+`"}`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
