package notification

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestManager() (*Manager, *MockEmailSender, *MockSMSSender) {
	email := &MockEmailSender{}
	sms := &MockSMSSender{}
	return NewManager(email, sms, NewTemplateEngine()), email, sms
}

func TestSendEmail(t *testing.T) {
	m, email, _ := newTestManager()

	n := &Notification{Type: TypeEmail, Recipient: "alice@example.com", Subject: "Hi", Body: "Hello"}
	if err := m.Send(context.Background(), n); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if n.Status != "sent" || n.SentAt == nil {
		t.Errorf("expected sent status, got %+v", n)
	}
	if calls := email.Calls(); len(calls) != 1 || calls[0].To != "alice@example.com" {
		t.Errorf("unexpected email calls: %+v", calls)
	}
}

func TestSendFailureRecorded(t *testing.T) {
	m, email, _ := newTestManager()
	email.ShouldFail = true
	email.FailError = "smtp down"

	n := &Notification{Type: TypeEmail, Recipient: "alice@example.com", Body: "x"}
	if err := m.Send(context.Background(), n); err == nil {
		t.Fatal("expected error")
	}
	if n.Status != "failed" || n.Error != "smtp down" {
		t.Errorf("expected failure recorded, got %+v", n)
	}

	stats := m.Stats(context.Background())
	if stats["failed"] != 1 {
		t.Errorf("expected 1 failed in stats, got %v", stats)
	}
}

func TestSendFromTemplate(t *testing.T) {
	m, email, _ := newTestManager()

	n, err := m.SendFromTemplate(context.Background(), "consultation-approved",
		map[string]string{"doctor_name": "Bob"}, "alice@example.com")
	if err != nil {
		t.Fatalf("SendFromTemplate failed: %v", err)
	}
	if !strings.Contains(n.Subject, "Dr. Bob") {
		t.Errorf("expected rendered subject, got %q", n.Subject)
	}
	if len(email.Calls()) != 1 {
		t.Errorf("expected one email, got %d", len(email.Calls()))
	}

	got, err := m.Get(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.TemplateID != "consultation-approved" {
		t.Errorf("unexpected stored notification: %+v", got)
	}
}

func TestSendFromTemplateUnknownTemplate(t *testing.T) {
	m, _, _ := newTestManager()

	if _, err := m.SendFromTemplate(context.Background(), "no-such-template", nil, "x@example.com"); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	e := NewTemplateEngine()
	e.RegisterTemplate(Template{ID: "t", Subject: "{{a}} and {{b}}", Body: "-", Type: TypeEmail})

	subject, _, err := e.Render("t", map[string]string{"a": "A"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if subject != "A and {{b}}" {
		t.Errorf("expected unknown placeholder left as-is, got %q", subject)
	}
}

func TestListByRecipient(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = m.Send(ctx, &Notification{Type: TypeEmail, Recipient: "alice@example.com", Body: "x"})
	}
	_ = m.Send(ctx, &Notification{Type: TypeEmail, Recipient: "bob@example.com", Body: "y"})

	if got := m.ListByRecipient(ctx, "alice@example.com", 10); len(got) != 3 {
		t.Errorf("expected 3 notifications for alice, got %d", len(got))
	}
	if got := m.ListByRecipient(ctx, "alice@example.com", 2); len(got) != 2 {
		t.Errorf("expected limit to apply, got %d", len(got))
	}
}

func TestLogSender(t *testing.T) {
	s := &LogSender{Logger: zerolog.Nop()}
	if err := s.SendEmail(context.Background(), "a@example.com", "s", "b"); err != nil {
		t.Errorf("LogSender email failed: %v", err)
	}
	if err := s.SendSMS(context.Background(), "+15550000000", "b"); err != nil {
		t.Errorf("LogSender sms failed: %v", err)
	}
}
