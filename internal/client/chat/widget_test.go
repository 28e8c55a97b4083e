package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"nexus/internal/client/events"
	"nexus/internal/models"
	"nexus/pkg/protocol"
)

type fakeChat struct {
	mu      sync.Mutex
	sent    []protocol.ChatRequest
	reply   string
	sendErr error
	history []models.ChatMessage
	histErr error
	block   chan struct{}
}

func (f *fakeChat) SendMessage(ctx context.Context, message, sessionID string) (*models.ChatResponse, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, protocol.ChatRequest{Message: message, SessionID: sessionID})
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &models.ChatResponse{
		UserMessage: models.ChatMessage{ID: 10, Message: message},
		BotMessage:  models.ChatMessage{ID: 11, Message: f.reply, IsBot: true},
	}, nil
}

func (f *fakeChat) GetHistory(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	return f.history, f.histErr
}

func (f *fakeChat) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeSupport struct {
	requests []protocol.CreateTicketRequest
	err      error
}

func (f *fakeSupport) CreateTicket(ctx context.Context, req protocol.CreateTicketRequest) (*models.SupportTicket, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.SupportTicket{ID: 42, UserEmail: req.Email}, nil
}

const testSession = "session_1700000000000_abcdefghi"

func newTestWidget(chat *fakeChat, support *fakeSupport, opts ...Option) *Widget {
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	opts = append([]Option{WithClock(func() time.Time { return fixed })}, opts...)
	return NewWidget(chat, support, testSession, opts...)
}

func lastText(w *Widget) string {
	msgs := w.Messages()
	return msgs[len(msgs)-1].Text
}

func TestNewWidget_SeedsWelcome(t *testing.T) {
	w := newTestWidget(&fakeChat{}, &fakeSupport{})

	msgs := w.Messages()
	if len(msgs) != 1 || msgs[0].Text != WelcomeText || !msgs[0].IsBot {
		t.Fatalf("Messages() = %+v", msgs)
	}
	if w.State() != Idle || !w.Connected() {
		t.Errorf("initial state = %v connected=%v", w.State(), w.Connected())
	}
}

func TestSend_BlankIsNoop(t *testing.T) {
	chat := &fakeChat{}
	w := newTestWidget(chat, &fakeSupport{})

	for _, text := range []string{"", "   ", "\n\t"} {
		if err := w.Send(context.Background(), text); err != nil {
			t.Errorf("Send(%q) error = %v", text, err)
		}
	}
	if len(w.Messages()) != 1 || chat.sentCount() != 0 {
		t.Error("blank messages must not change the transcript or hit the backend")
	}
}

func TestSend_BotReply(t *testing.T) {
	chat := &fakeChat{reply: "Campaigns pay per 1k views."}
	w := newTestWidget(chat, &fakeSupport{})

	if err := w.Send(context.Background(), "How do payouts work?"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	msgs := w.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[1].Text != "How do payouts work?" || msgs[1].IsBot {
		t.Errorf("user message = %+v", msgs[1])
	}
	if msgs[2].Text != "Campaigns pay per 1k views." || !msgs[2].IsBot || msgs[2].ID != 11 {
		t.Errorf("bot message = %+v", msgs[2])
	}
	if chat.sent[0].SessionID != testSession {
		t.Errorf("session id = %q, want %q", chat.sent[0].SessionID, testSession)
	}
	if w.State() != Idle || !w.Connected() {
		t.Errorf("state = %v connected=%v", w.State(), w.Connected())
	}
}

func TestSend_FailureFallsBack(t *testing.T) {
	chat := &fakeChat{sendErr: errors.New("dial tcp: connection refused")}
	w := newTestWidget(chat, &fakeSupport{})

	if err := w.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send() error = %v, backend failures are absorbed", err)
	}
	if lastText(w) != FallbackText {
		t.Errorf("last message = %q, want fallback", lastText(w))
	}
	if w.Connected() {
		t.Error("widget should be disconnected after a failed send")
	}
	if w.State() != Idle {
		t.Errorf("state = %v, want idle", w.State())
	}

	chat.sendErr = nil
	chat.reply = "back online"
	w.Send(context.Background(), "retry")
	if !w.Connected() {
		t.Error("successful send should reconnect")
	}
}

func TestSend_SupportIntent(t *testing.T) {
	for _, text := range []string{"I need SUPPORT", "can I talk to a human?", "Agent please"} {
		t.Run(text, func(t *testing.T) {
			chat := &fakeChat{}
			w := newTestWidget(chat, &fakeSupport{})

			if err := w.Send(context.Background(), text); err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			if w.State() != CollectingSupport {
				t.Errorf("state = %v, want collecting-support", w.State())
			}
			msgs := w.Messages()
			if len(msgs) != 3 || msgs[1].Text != text || msgs[2].Text != SupportPromptText {
				t.Errorf("transcript = %+v", msgs)
			}
			if chat.sentCount() != 0 {
				t.Error("support intent must not call the chatbot")
			}
		})
	}
}

func TestSend_BusyWhileAwaiting(t *testing.T) {
	chat := &fakeChat{reply: "ok", block: make(chan struct{})}
	w := newTestWidget(chat, &fakeSupport{})

	done := make(chan error, 1)
	go func() { done <- w.Send(context.Background(), "first") }()

	deadline := time.Now().Add(time.Second)
	for w.State() != AwaitingResponse {
		if time.Now().After(deadline) {
			t.Fatal("widget never entered awaiting-response")
		}
		time.Sleep(time.Millisecond)
	}

	if err := w.Send(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("Send() while awaiting error = %v, want ErrBusy", err)
	}

	close(chat.block)
	if err := <-done; err != nil {
		t.Fatalf("first Send() error = %v", err)
	}
	if w.State() != Idle {
		t.Errorf("state = %v, want idle", w.State())
	}
	if n := len(w.Messages()); n != 3 {
		t.Errorf("expected 3 messages, got %d", n)
	}
}

func TestSend_ChatWhileCollectingSupportKeepsForm(t *testing.T) {
	chat := &fakeChat{reply: "Sure"}
	w := newTestWidget(chat, &fakeSupport{})

	w.Send(context.Background(), "support please")
	w.Send(context.Background(), "what are your hours?")

	if w.State() != CollectingSupport {
		t.Errorf("state = %v, want collecting-support", w.State())
	}
	if lastText(w) != "Sure" {
		t.Errorf("last message = %q", lastText(w))
	}
}

func TestSubmitSupport(t *testing.T) {
	support := &fakeSupport{}
	bus := events.NewBus()
	sub := bus.Subscribe()
	w := newTestWidget(&fakeChat{}, support, WithEventBus(bus))
	ctx := context.Background()

	if _, err := w.SubmitSupport(ctx, SupportForm{Email: "a@x.io", Message: "help"}); !errors.Is(err, ErrNoSupportRequest) {
		t.Fatalf("SubmitSupport() outside form error = %v", err)
	}

	w.Send(ctx, "talk to an agent")

	if _, err := w.SubmitSupport(ctx, SupportForm{Email: "a@x.io", Message: "  "}); !errors.Is(err, ErrIncompleteSupportForm) {
		t.Fatalf("SubmitSupport() without message error = %v", err)
	}
	if len(support.requests) != 0 {
		t.Fatal("incomplete form must not reach the backend")
	}

	ticket, err := w.SubmitSupport(ctx, SupportForm{Email: "a@x.io", Message: "My payout is missing"})
	if err != nil {
		t.Fatalf("SubmitSupport() error = %v", err)
	}
	if ticket.ID != 42 {
		t.Errorf("ticket id = %d", ticket.ID)
	}

	req := support.requests[0]
	if req.Name != DefaultSupportName || req.Subject != SupportSubject || req.SessionID != testSession {
		t.Errorf("ticket request = %+v", req)
	}
	if !strings.HasPrefix(lastText(w), "Support ticket #42 created!") || !strings.Contains(lastText(w), "a@x.io") {
		t.Errorf("confirmation = %q", lastText(w))
	}
	if w.State() != Idle {
		t.Errorf("state = %v, want idle", w.State())
	}

	var states []string
	for {
		select {
		case ev := <-sub:
			if ev.Type == events.EventChatState {
				states = append(states, ev.Data.(events.ChatStateData).State)
			}
			continue
		default:
		}
		break
	}
	want := []string{"collecting-support", "submitted", "idle"}
	if strings.Join(states, ",") != strings.Join(want, ",") {
		t.Errorf("state transitions = %v, want %v", states, want)
	}
}

func TestSubmitSupport_FailureKeepsForm(t *testing.T) {
	support := &fakeSupport{err: errors.New("Request failed")}
	w := newTestWidget(&fakeChat{}, support)
	ctx := context.Background()

	w.Send(ctx, "support")
	if _, err := w.SubmitSupport(ctx, SupportForm{Email: "a@x.io", Name: "Ana", Message: "help"}); err == nil {
		t.Fatal("expected error")
	}
	if lastText(w) != TicketFailedText {
		t.Errorf("last message = %q", lastText(w))
	}
	if w.State() != CollectingSupport || w.Connected() {
		t.Errorf("state = %v connected=%v, want collecting-support and disconnected", w.State(), w.Connected())
	}

	support.err = nil
	if _, err := w.SubmitSupport(ctx, SupportForm{Email: "a@x.io", Name: "Ana", Message: "help"}); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if support.requests[1].Name != "Ana" {
		t.Errorf("name = %q", support.requests[1].Name)
	}
}

func TestCancelSupport(t *testing.T) {
	w := newTestWidget(&fakeChat{}, &fakeSupport{})
	w.Send(context.Background(), "human")
	w.CancelSupport()
	if w.State() != Idle {
		t.Errorf("state = %v, want idle", w.State())
	}
}

func TestLoadHistory(t *testing.T) {
	chat := &fakeChat{history: []models.ChatMessage{
		{ID: 1, Message: "hi"},
		{ID: 2, Message: "Hello!", IsBot: true},
	}}
	w := newTestWidget(chat, &fakeSupport{})
	w.Send(context.Background(), "support")

	if err := w.LoadHistory(context.Background()); err != nil {
		t.Fatalf("LoadHistory() error = %v", err)
	}
	msgs := w.Messages()
	if len(msgs) != 3 || msgs[0].Text != WelcomeText || msgs[1].Text != "hi" || msgs[2].ID != 2 {
		t.Errorf("transcript = %+v", msgs)
	}
}

func TestLoadHistory_EmptyOrFailedKeepsTranscript(t *testing.T) {
	chat := &fakeChat{}
	w := newTestWidget(chat, &fakeSupport{})

	if err := w.LoadHistory(context.Background()); err != nil {
		t.Fatalf("LoadHistory() error = %v", err)
	}
	chat.histErr = errors.New("Not found.")
	if err := w.LoadHistory(context.Background()); err == nil {
		t.Error("expected error")
	}
	if msgs := w.Messages(); len(msgs) != 1 {
		t.Errorf("transcript changed: %+v", msgs)
	}
}

func TestLocalMessageIDsIncrease(t *testing.T) {
	w := newTestWidget(&fakeChat{}, &fakeSupport{})
	w.Send(context.Background(), "support")

	msgs := w.Messages()
	for i := 1; i < len(msgs); i++ {
		if msgs[i].ID <= msgs[i-1].ID {
			t.Errorf("message ids not increasing: %d then %d", msgs[i-1].ID, msgs[i].ID)
		}
	}
}
