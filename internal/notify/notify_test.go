package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLogNotifier_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	err := NewLogNotifier(log).Notify(context.Background(), EventPaymentReminder, Recipient{UserID: "u-1", Role: "guest"}, map[string]any{"remaining": 800})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"event":"payment_reminder"`) || !strings.Contains(out, `"payload.remaining":800`) {
		t.Fatalf("unexpected log entry %s", out)
	}
}

func TestRecorder_Count(t *testing.T) {
	r := &Recorder{}
	_ = r.Notify(context.Background(), EventBookingCancelled, Recipient{UserID: "a"}, nil)
	_ = r.Notify(context.Background(), EventBookingCancelled, Recipient{UserID: "b"}, nil)
	_ = r.Notify(context.Background(), EventPayoutCreated, Recipient{UserID: "b"}, nil)
	if r.Count(EventBookingCancelled) != 2 || r.Count(EventPayoutCreated) != 1 {
		t.Fatalf("unexpected counts %+v", r.Sent)
	}
}
