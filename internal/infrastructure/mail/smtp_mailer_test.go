package mail

import (
	"context"
	"strings"
	"testing"

	"hospital-scheduler/config"
)

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("no-reply@hospital.local", "asha@example.com", "Appointment confirmed", "<p>hi</p>"))

	for _, want := range []string{
		"From: no-reply@hospital.local\r\n",
		"To: asha@example.com\r\n",
		"Subject: Appointment confirmed\r\n",
		"Content-Type: text/html; charset=utf-8\r\n\r\n<p>hi</p>",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestSend_CancelledContext(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "127.0.0.1", Port: "1", From: "x@y.z"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.Send(ctx, "a@b.c", "s", "b"); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
