package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"nexus/internal/client/chat"
	"nexus/internal/client/events"
	"nexus/internal/models"
	"nexus/pkg/protocol"
)

type stubChat struct {
	reply string
	err   error
}

func (s *stubChat) SendMessage(ctx context.Context, message, sessionID string) (*models.ChatResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.ChatResponse{BotMessage: models.ChatMessage{ID: 7, Message: s.reply, IsBot: true}}, nil
}

func (s *stubChat) GetHistory(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	return nil, nil
}

type stubSupport struct {
	got []protocol.CreateTicketRequest
	err error
}

func (s *stubSupport) CreateTicket(ctx context.Context, req protocol.CreateTicketRequest) (*models.SupportTicket, error) {
	s.got = append(s.got, req)
	if s.err != nil {
		return nil, s.err
	}
	return &models.SupportTicket{ID: 5, UserEmail: req.Email}, nil
}

func newTestModel(c *stubChat, s *stubSupport) Model {
	w := chat.NewWidget(c, s, "session_1_abcdef012")
	return NewModel(w, nil, "")
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

// pressEnter submits the input and runs the resulting command to completion.
func pressEnter(t *testing.T, m Model) Model {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		return m
	}
	next, _ = m.Update(cmd())
	return next.(Model)
}

func TestModel_SendMessage(t *testing.T) {
	m := newTestModel(&stubChat{reply: "Campaigns pay per view."}, &stubSupport{})

	m = typeText(t, m, "how do payouts work")
	if m.input.Value() != "how do payouts work" {
		t.Fatalf("input = %q", m.input.Value())
	}
	m = pressEnter(t, m)

	if m.input.Value() != "" || m.busy {
		t.Errorf("after send: input=%q busy=%v", m.input.Value(), m.busy)
	}
	if len(m.messages) != 3 {
		t.Fatalf("expected welcome, user and bot messages, got %d", len(m.messages))
	}
	if got := m.messages[2].Text; got != "Campaigns pay per view." {
		t.Errorf("bot reply = %q", got)
	}
	if !strings.Contains(m.View(), "Campaigns pay per view.") {
		t.Error("View() should render the bot reply")
	}
}

func TestModel_BlankInputDoesNothing(t *testing.T) {
	m := newTestModel(&stubChat{}, &stubSupport{})
	m = typeText(t, m, "   ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("blank input should not produce a command")
	}
}

func TestModel_BackendFailureShowsOffline(t *testing.T) {
	m := newTestModel(&stubChat{err: errors.New("connection refused")}, &stubSupport{})
	m = typeText(t, m, "hello")
	m = pressEnter(t, m)

	if got := m.messages[len(m.messages)-1].Text; got != chat.FallbackText {
		t.Errorf("last message = %q, want fallback", got)
	}
	if m.connectionStatus() != "offline" {
		t.Errorf("status = %q, want offline", m.connectionStatus())
	}
}

func TestModel_SupportForm(t *testing.T) {
	support := &stubSupport{}
	m := newTestModel(&stubChat{}, support)

	m = typeText(t, m, "talk to a human")
	m = pressEnter(t, m)
	if m.step != stepEmail {
		t.Fatalf("step = %v, want email", m.step)
	}
	if !strings.Contains(m.View(), "Email: ") {
		t.Error("View() should prompt for email")
	}

	// Email is required
	m = pressEnter(t, m)
	if m.step != stepEmail || m.lastError == "" {
		t.Errorf("empty email: step=%v lastError=%q", m.step, m.lastError)
	}

	m = typeText(t, m, "ana@example.com")
	m = pressEnter(t, m)
	m = pressEnter(t, m) // skip name
	if m.step != stepMessage {
		t.Fatalf("step = %v, want message", m.step)
	}
	m = typeText(t, m, "My payout is missing")
	m = pressEnter(t, m)

	if len(support.got) != 1 {
		t.Fatalf("expected one ticket, got %d", len(support.got))
	}
	req := support.got[0]
	if req.Email != "ana@example.com" || req.Name != chat.DefaultSupportName || req.Message != "My payout is missing" {
		t.Errorf("ticket request = %+v", req)
	}
	if m.step != stepNone || m.widget.State() != chat.Idle {
		t.Errorf("after submit: step=%v state=%v", m.step, m.widget.State())
	}
}

func TestModel_SupportFailureKeepsForm(t *testing.T) {
	m := newTestModel(&stubChat{}, &stubSupport{err: errors.New("boom")})

	m = typeText(t, m, "support please")
	m = pressEnter(t, m)
	m = typeText(t, m, "ana@example.com")
	m = pressEnter(t, m)
	m = typeText(t, m, "Ana")
	m = pressEnter(t, m)
	m = typeText(t, m, "help")
	m = pressEnter(t, m)

	if m.step != stepMessage || m.input.Value() != "help" {
		t.Errorf("form should stay open with message kept: step=%v input=%q", m.step, m.input.Value())
	}
	if m.lastError == "" {
		t.Error("lastError should be set")
	}
	if m.widget.State() != chat.CollectingSupport {
		t.Errorf("widget state = %v", m.widget.State())
	}
}

func TestModel_EscCancelsSupport(t *testing.T) {
	m := newTestModel(&stubChat{}, &stubSupport{})
	m = typeText(t, m, "agent")
	m = pressEnter(t, m)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)

	if m.step != stepNone || m.widget.State() != chat.Idle {
		t.Errorf("after esc: step=%v state=%v", m.step, m.widget.State())
	}
}

func TestModel_Backspace(t *testing.T) {
	m := newTestModel(&stubChat{}, &stubSupport{})
	m = typeText(t, m, "héllo")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next.(Model)
	if m.input.Value() != "héll" {
		t.Errorf("input = %q, want héll", m.input.Value())
	}
}

func TestModel_RequestEvents(t *testing.T) {
	m := newTestModel(&stubChat{}, &stubSupport{})
	m.maxRequests = 2

	for i, endpoint := range []string{"/chat/message", "/chat/history/a", "/support/tickets/"} {
		next, _ := m.Update(eventMsg(events.Event{
			Type: events.EventRequestComplete,
			Data: events.RequestData{Method: "POST", Endpoint: endpoint, Status: 200 + i, Duration: time.Millisecond},
		}))
		m = next.(Model)
	}

	if len(m.requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(m.requests))
	}
	if m.requests[0].Endpoint != "/support/tickets/" {
		t.Errorf("newest request should come first, got %q", m.requests[0].Endpoint)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0.00"},
		{250 * time.Millisecond, "0.25"},
		{1500 * time.Millisecond, "1.5"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTruncatePath(t *testing.T) {
	if got := truncatePath("/short", 10); got != "/short" {
		t.Errorf("truncatePath() = %q", got)
	}
	if got := truncatePath("/integrations/accounts/123/content/", 20); len(got) != 20 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncatePath() = %q", got)
	}
}
