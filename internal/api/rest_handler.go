package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"withdraw_bot/internal/domain"
	"withdraw_bot/internal/repository"
	"withdraw_bot/pkg/crypto"
)

const (
	maxEventBodyBytes = 64 << 10
	defaultPageSize   = 20

	internalErrorText = "An error occurred. Please try again."
)

type Conversation interface {
	HandleEvent(ctx context.Context, userID string, ev domain.Event) domain.OutboundMessage
}

type BalanceReader interface {
	IsConnected() bool
	Balances() map[domain.AssetSymbol]decimal.Decimal
}

type WithdrawalHistory interface {
	ListWithdrawals(ctx context.Context, userID string, limit, offset int) ([]*domain.Withdrawal, error)
}

// APIHandler is the webhook transport: a chat front end posts one event per
// user input and renders the OutboundMessage it gets back.
type APIHandler struct {
	conversation   Conversation
	balances       BalanceReader
	history        WithdrawalHistory
	signer         *crypto.Signer
	logger         *slog.Logger
	requestTimeout time.Duration
}

func NewAPIHandler(
	conversation Conversation,
	balances BalanceReader,
	history WithdrawalHistory,
	signer *crypto.Signer,
	logger *slog.Logger,
) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if signer == nil {
		signer = crypto.NewSigner("", logger)
	}

	return &APIHandler{
		conversation:   conversation,
		balances:       balances,
		history:        history,
		signer:         signer,
		logger:         logger,
		requestTimeout: 30 * time.Second,
	}
}

type EventRequest struct {
	UserID string           `json:"user_id"`
	Type   domain.EventKind `json:"type"`
	Data   string           `json:"data"`
}

type BalancesResponse struct {
	Connected bool                                   `json:"connected"`
	Balances  map[domain.AssetSymbol]decimal.Decimal `json:"balances"`
}

type WithdrawalsResponse struct {
	Withdrawals []*domain.Withdrawal `json:"withdrawals"`
	Count       int                  `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// EventHandler answers every accepted event with 200 and the reply to render,
// user errors included. Only transport failures use other status codes.
func (h *APIHandler) EventHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBodyBytes))
	if err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	if h.signer.Enabled() {
		if valid, err := h.signer.Verify(body, r.Header.Get(crypto.SignatureHeader)); !valid || err != nil {
			h.sendError(w, "Invalid signature", http.StatusUnauthorized, "INVALID_SIGNATURE")
			return
		}
	}

	var req EventRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	if err := validateEventRequest(&req); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest, "VALIDATION_ERROR")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	msg, ok := h.handleEvent(ctx, req)
	if !ok {
		h.sendJSON(w, msg, http.StatusInternalServerError)
		return
	}
	h.sendJSON(w, msg, http.StatusOK)
}

// handleEvent turns a panic in the core into a generic reply so one broken
// conversation cannot take the server down.
func (h *APIHandler) handleEvent(ctx context.Context, req EventRequest) (msg domain.OutboundMessage, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.ErrorContext(ctx, "Event handling panicked",
				slog.String("user_id", req.UserID),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			msg = domain.OutboundMessage{
				Kind:    domain.ShowError,
				Text:    internalErrorText,
				Code:    domain.CodeInternal,
				Buttons: domain.MainMenuButtons(),
			}
			ok = false
		}
	}()

	ev := domain.Event{Kind: req.Type, Data: req.Data}
	return h.conversation.HandleEvent(ctx, req.UserID, ev), true
}

func (h *APIHandler) BalancesHandler(w http.ResponseWriter, r *http.Request) {
	if !h.balances.IsConnected() {
		h.sendError(w, "API not connected", http.StatusConflict, domain.CodeNotConnected)
		return
	}

	h.sendJSON(w, BalancesResponse{
		Connected: true,
		Balances:  h.balances.Balances(),
	}, http.StatusOK)
}

func (h *APIHandler) WithdrawalsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	userID := strings.TrimSpace(query.Get("user_id"))
	if userID == "" {
		h.sendError(w, "User ID is required", http.StatusBadRequest, "MISSING_ID")
		return
	}

	limit, err := parsePageParam(query.Get("limit"), defaultPageSize)
	if err != nil {
		h.sendError(w, "limit must be a non-negative integer", http.StatusBadRequest, "VALIDATION_ERROR")
		return
	}
	offset, err := parsePageParam(query.Get("offset"), 0)
	if err != nil {
		h.sendError(w, "offset must be a non-negative integer", http.StatusBadRequest, "VALIDATION_ERROR")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	withdrawals, err := h.history.ListWithdrawals(ctx, userID, limit, offset)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.logger.Error("Failed to list withdrawals",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
			h.sendError(w, "Failed to list withdrawals", http.StatusInternalServerError, "SERVER_ERROR")
			return
		}
		withdrawals = []*domain.Withdrawal{}
	}

	h.sendJSON(w, WithdrawalsResponse{Withdrawals: withdrawals, Count: len(withdrawals)}, http.StatusOK)
}

func (h *APIHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"connected": h.balances.IsConnected(),
	}
	h.sendJSON(w, response, http.StatusOK)
}

func validateEventRequest(req *EventRequest) error {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return errors.New("user_id is required")
	}

	switch req.Type {
	case domain.EventButton:
		if req.Data == "" {
			return errors.New("data is required for button events")
		}
	case domain.EventText:
	default:
		return errors.New("type must be button or text")
	}
	return nil
}

func parsePageParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("invalid page parameter")
	}
	return n, nil
}

func (h *APIHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func (h *APIHandler) sendError(w http.ResponseWriter, message string, statusCode int, code string) {
	errorResponse := ErrorResponse{
		Error: message,
		Code:  code,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponse)

	h.logger.Warn("API error response",
		slog.String("message", message),
		slog.String("code", code),
		slog.Int("status", statusCode))
}

func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/events", h.EventHandler)
	mux.HandleFunc("GET /api/v1/balances", h.BalancesHandler)
	mux.HandleFunc("GET /api/v1/withdrawals", h.WithdrawalsHandler)
	mux.HandleFunc("GET /api/health", h.HealthCheckHandler)
}
