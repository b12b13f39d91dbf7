package form

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yanizio/folio/internal/message"
)

type fakeMailer struct {
	sent []message.Email
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg message.Email) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func TestExecuteActions_Email(t *testing.T) {
	fd := ContactForm()
	fd.Actions = []ActionDef{
		{Type: "email", Params: map[string]any{"to": []any{"owner@example.com"}, "subject_prefix": "[site] "}},
		{Type: "email", Params: map[string]any{}},
		{Type: "log"},
	}
	m := &fakeMailer{}

	p := Payload{Name: "Jane", Email: "jane@example.com", Subject: "Hi", Message: "Hello there, testing."}
	ExecuteActions(context.Background(), fd, p, ActionDeps{Mailer: m, DefaultTo: []string{"me@example.com"}})

	if len(m.sent) != 2 {
		t.Fatalf("sent = %d, want 2", len(m.sent))
	}
	want := message.Email{
		To:      []string{"owner@example.com"},
		ReplyTo: "jane@example.com",
		Subject: "[site] Hi",
		Fields: []message.Field{
			{Label: "Name", Value: "Jane"},
			{Label: "Email", Value: "jane@example.com"},
			{Label: "Subject", Value: "Hi"},
			{Label: "Message", Value: "Hello there, testing."},
		},
	}
	if diff := cmp.Diff(want, m.sent[0]); diff != "" {
		t.Fatalf("email (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"me@example.com"}, m.sent[1].To); diff != "" {
		t.Fatalf("default recipients (-want +got):\n%s", diff)
	}
	if m.sent[1].Subject != "Portfolio contact: Hi" {
		t.Fatalf("default subject = %q", m.sent[1].Subject)
	}
}

func TestExecuteActions_ErrorsAreSwallowed(t *testing.T) {
	fd := ContactForm()
	fd.Actions = []ActionDef{{Type: "email"}, {Type: "email"}}

	// No mailer, then a failing mailer: neither may panic or propagate.
	ExecuteActions(context.Background(), fd, Payload{}, ActionDeps{})

	m := &fakeMailer{err: errors.New("quota exceeded")}
	ExecuteActions(context.Background(), fd, Payload{}, ActionDeps{Mailer: m, DefaultTo: []string{"me@example.com"}})
	if len(m.sent) != 2 {
		t.Fatalf("sent = %d, want 2", len(m.sent))
	}
}

func TestRecipients(t *testing.T) {
	if got := recipients("a@b.co"); len(got) != 1 {
		t.Fatalf("string recipients = %v", got)
	}
	if got := recipients([]any{"a@b.co", 7, ""}); len(got) != 1 {
		t.Fatalf("list recipients = %v", got)
	}
	if got := recipients(nil); got != nil {
		t.Fatalf("nil recipients = %v", got)
	}
}
