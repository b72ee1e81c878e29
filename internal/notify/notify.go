package notify

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

type EventType string

const (
	EventBookingConfirmation EventType = "booking_confirmation"
	EventBookingCancelled    EventType = "booking_cancelled"
	EventPaymentReminder     EventType = "payment_reminder"
	EventPayoutCreated       EventType = "payout_created"
	EventPayoutProcessed     EventType = "payout_processed"
)

// Recipient — адресат уведомления: гость (владелец бронирования) или хост.
type Recipient struct {
	UserID string
	Role   string // guest | host
}

// Notifier — внешний канал уведомлений (почта, чат). Вызывается после коммита;
// ошибка только логируется и не влияет на результат операции.
type Notifier interface {
	Notify(ctx context.Context, eventType EventType, recipient Recipient, payload map[string]any) error
}

// LogNotifier пишет уведомления в лог вместо реальной отправки.
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, eventType EventType, recipient Recipient, payload map[string]any) error {
	fields := logrus.Fields{
		"event":     eventType,
		"recipient": recipient.UserID,
		"role":      recipient.Role,
	}
	for k, v := range payload {
		fields["payload."+k] = v
	}
	n.log.WithContext(ctx).WithFields(fields).Info("notification")
	return nil
}

// Recorder запоминает отправленные уведомления; используется в тестах.
type Recorder struct {
	mu   sync.Mutex
	Sent []Sent
	Err  error
}

type Sent struct {
	Event     EventType
	Recipient Recipient
	Payload   map[string]any
}

func (r *Recorder) Notify(ctx context.Context, eventType EventType, recipient Recipient, payload map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, Sent{Event: eventType, Recipient: recipient, Payload: payload})
	return r.Err
}

// Count считает отправленные уведомления данного типа.
func (r *Recorder) Count(eventType EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.Sent {
		if s.Event == eventType {
			n++
		}
	}
	return n
}
