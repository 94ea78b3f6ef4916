package handlers

import (
	"bytes"
	"strings"
	"testing"

	"backend/internal/models"
	"backend/internal/stream"
)

func TestWriteSSEHello(t *testing.T) {
	var buf bytes.Buffer
	if err := writeSSE(&buf, stream.Event{Type: "hello"}); err != nil {
		t.Fatalf("writeSSE returned error: %v", err)
	}

	if got := buf.String(); got != "data: {\"type\":\"hello\"}\n\n" {
		t.Fatalf("unexpected hello frame: %q", got)
	}
}

func TestWriteSSENotificationBatch(t *testing.T) {
	var buf bytes.Buffer
	err := writeSSE(&buf, stream.Event{
		Type:  "notification",
		Items: []models.Notification{{Type: models.NotificationOrderStatusChanged}},
	})
	if err != nil {
		t.Fatalf("writeSSE returned error: %v", err)
	}

	frame := buf.String()
	if !strings.HasPrefix(frame, "data: ") || !strings.HasSuffix(frame, "\n\n") {
		t.Fatalf("frame must be a single data line: %q", frame)
	}
	if !strings.Contains(frame, "\"type\":\"notification\"") {
		t.Fatalf("expected notification type in frame: %q", frame)
	}
	if !strings.Contains(frame, "\"items\":[") {
		t.Fatalf("expected items array in frame: %q", frame)
	}
}
