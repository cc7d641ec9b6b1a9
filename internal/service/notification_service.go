package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"withdraw_bot/internal/domain"
)

var ErrQueueFull = errors.New("notification queue full")

type NotificationMessage struct {
	Recipient string
	Subject   string
	Message   string
	Metadata  map[string]string
	CreatedAt time.Time
}

// Notifier delivers a receipt to the user out of band of the chat reply.
type Notifier interface {
	Notify(ctx context.Context, msg NotificationMessage) error
}

type NotificationService struct {
	notifier     Notifier
	messageQueue chan NotificationMessage
	workers      int
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
	logger       *slog.Logger
}

func NewNotificationService(notifier Notifier, workers int, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	if workers < 1 {
		workers = 1
	}

	service := &NotificationService{
		notifier:     notifier,
		messageQueue: make(chan NotificationMessage, 1000),
		workers:      workers,
		shutdownChan: make(chan struct{}),
		logger:       logger,
	}

	service.startWorkers()

	return service
}

// SendWithdrawalNotification queues a receipt and never blocks the caller:
// a full queue drops the notification.
func (s *NotificationService) SendWithdrawalNotification(ctx context.Context, w *domain.Withdrawal) error {
	var subject, message string

	switch w.Status {
	case domain.WithdrawalCompleted:
		subject = "Withdrawal Completed"
		message = fmt.Sprintf("%s %s sent to %s. TXID: %s. Remaining: %s %s.",
			w.Amount, w.Asset, domain.MaskedAddress(w.Address, 10), w.TxID, w.Remaining, w.Asset)
	default:
		subject = "Withdrawal Failed"
		message = fmt.Sprintf("Your withdrawal of %s %s has failed. Reason: %s", w.Amount, w.Asset, w.FailureCode)
	}

	notification := NotificationMessage{
		Recipient: w.UserID,
		Subject:   subject,
		Message:   message,
		Metadata: map[string]string{
			"withdrawal_id": w.ID,
			"asset":         string(w.Asset),
			"status":        string(w.Status),
		},
		CreatedAt: time.Now(),
	}

	select {
	case s.messageQueue <- notification:
		s.logger.Debug("Notification queued",
			slog.String("recipient", w.UserID),
			slog.String("withdrawal_id", w.ID))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.logger.Warn("Notification dropped",
			slog.String("withdrawal_id", w.ID),
			slog.String("error", ErrQueueFull.Error()))
		return ErrQueueFull
	}
}

func (s *NotificationService) startWorkers() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

func (s *NotificationService) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("Notification worker started", slog.Int("worker_id", id))

	for {
		select {
		case msg := <-s.messageQueue:
			s.processNotification(msg, id)
		case <-s.shutdownChan:
			s.drain(id)
			s.logger.Debug("Notification worker stopping", slog.Int("worker_id", id))
			return
		}
	}
}

func (s *NotificationService) drain(workerID int) {
	for {
		select {
		case msg := <-s.messageQueue:
			s.processNotification(msg, workerID)
		default:
			return
		}
	}
}

func (s *NotificationService) processNotification(msg NotificationMessage, workerID int) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.notifier.Notify(ctx, msg)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Failed to send notification",
			slog.String("recipient", msg.Recipient),
			slog.String("error", err.Error()),
			slog.Int("worker_id", workerID),
			slog.Duration("duration", duration))
		return
	}

	s.logger.Debug("Notification sent",
		slog.String("recipient", msg.Recipient),
		slog.Int("worker_id", workerID),
		slog.Duration("duration", duration))
}

// Shutdown stops the workers after the queued notifications are delivered.
func (s *NotificationService) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() { close(s.shutdownChan) })

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Notification service shutdown complete")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, msg NotificationMessage) error {
	n.logger.InfoContext(ctx, msg.Subject,
		slog.String("recipient", msg.Recipient),
		slog.String("withdrawal_id", msg.Metadata["withdrawal_id"]),
		slog.String("status", msg.Metadata["status"]))
	return nil
}

type MockNotifier struct {
	mu   sync.Mutex
	Sent []NotificationMessage
}

func (m *MockNotifier) Notify(ctx context.Context, msg NotificationMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}

func (m *MockNotifier) Messages() []NotificationMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]NotificationMessage(nil), m.Sent...)
}
