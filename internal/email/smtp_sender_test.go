package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

func TestNewSMTPSenderValidation(t *testing.T) {
	if _, err := NewSMTPSender(SMTPConfig{From: "from@example.com"}); err == nil {
		t.Fatalf("expected error for empty host")
	}
	if _, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", From: " "}); err == nil {
		t.Fatalf("expected error for empty from")
	}
	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", From: "from@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.cfg.Port != 587 || s.cfg.FromName != "Job Portal" {
		t.Fatalf("defaults not applied: %+v", s.cfg)
	}
}

func TestLoginCodeMessageBytes(t *testing.T) {
	exp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := LoginCodeMessage("from@example.com", "Job Portal", "to@example.com", "123456", exp)
	raw := string(msg.Bytes())

	for _, want := range []string{
		"From: Job Portal <from@example.com>\r\n",
		"To: to@example.com\r\n",
		"Subject: Your job portal sign-in code\r\n",
		"Message-ID: <",
		"@example.com>\r\n",
		"\r\n\r\nUse 123456 to sign in",
		"2026-01-02T03:04:05Z",
	} {
		if !strings.Contains(raw, want) {
			t.Fatalf("message missing %q:\n%s", want, raw)
		}
	}
	if strings.Contains(strings.ReplaceAll(raw, "\r\n", ""), "\n") {
		t.Fatalf("expected CRLF line endings only")
	}
}

func TestMessageWithoutFromName(t *testing.T) {
	raw := string(Message{From: "a@b.c", To: "d@e.f"}.Bytes())
	if !strings.Contains(raw, "From: a@b.c\r\n") {
		t.Fatalf("expected bare from header:\n%s", raw)
	}
}

func TestSMTPSenderDelivers(t *testing.T) {
	s, _ := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 2525, Username: "u", Password: "p", From: "from@example.com"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	var gotAuth smtp.Auth
	s.deliver = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, auth, from, to, msg
		return nil
	}

	if err := s.SendLoginCode(context.Background(), "to@example.com", "654321", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAddr != "smtp.example.com:2525" || gotFrom != "from@example.com" || gotAuth == nil {
		t.Fatalf("unexpected envelope: addr=%s from=%s auth=%v", gotAddr, gotFrom, gotAuth)
	}
	if len(gotTo) != 1 || gotTo[0] != "to@example.com" {
		t.Fatalf("unexpected recipients: %v", gotTo)
	}
	if !strings.Contains(string(gotMsg), "654321") {
		t.Fatalf("code missing from message")
	}
}

func TestSMTPSenderWrapsDeliveryError(t *testing.T) {
	s, _ := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", From: "from@example.com"})
	cause := errors.New("connection refused")
	s.deliver = func(string, smtp.Auth, string, []string, []byte) error { return cause }

	err := s.SendLoginCode(context.Background(), "to@example.com", "1", time.Now())
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestSendLoginCodeRequiresRecipient(t *testing.T) {
	s, _ := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", From: "from@example.com"})
	if err := s.SendLoginCode(context.Background(), "", "123456", time.Now()); err == nil {
		t.Fatalf("expected error for empty recipient")
	}
}

func TestDisabledSender(t *testing.T) {
	if err := NewDisabledSender("").SendLoginCode(context.Background(), "a@b.c", "1", time.Now()); err == nil {
		t.Fatalf("expected error")
	}
	err := NewDisabledSender("smtp not configured").SendLoginCode(context.Background(), "a@b.c", "1", time.Now())
	if err == nil || err.Error() != "smtp not configured" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLogSenderNeverFails(t *testing.T) {
	if err := NewLogSender(nil).SendLoginCode(context.Background(), "a@b.c", "123456", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
