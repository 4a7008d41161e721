package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeSender struct {
	sent []EmailMessage
	err  error
}

func (f *fakeSender) Send(ctx context.Context, msg EmailMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestProspectQualifiedSendsAlert(t *testing.T) {
	sender := &fakeSender{}
	n := NewQualificationNotifier(sender, "partners@puntaluxe.com", "https://app.puntaluxe.com", nil)

	if err := n.ProspectQualified(context.Background(), "lead-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "partners@puntaluxe.com" {
		t.Errorf("unexpected recipient %s", msg.To)
	}
	if !strings.Contains(msg.Body, "lead-1") {
		t.Errorf("body should reference the lead: %s", msg.Body)
	}
}

func TestProspectQualifiedWrapsSendError(t *testing.T) {
	n := NewQualificationNotifier(&fakeSender{err: errors.New("throttled")}, "partners@puntaluxe.com", "", nil)

	if err := n.ProspectQualified(context.Background(), "lead-1"); err == nil {
		t.Fatal("expected error")
	}
}

func TestProspectQualifiedNoopWithoutRecipient(t *testing.T) {
	sender := &fakeSender{}
	n := NewQualificationNotifier(sender, "", "", nil)

	if err := n.ProspectQualified(context.Background(), "lead-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("expected no email without a recipient")
	}
}
