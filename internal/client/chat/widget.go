package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"nexus/internal/client/events"
	"nexus/internal/client/logger"
	"nexus/internal/models"
	"nexus/pkg/protocol"
)

// Canned widget texts.
const (
	WelcomeText        = "Hey there! I'm your Nexus assistant. How can I help you today?"
	SupportPromptText  = "I'll connect you with our support team! Please fill out the form below and we'll get back to you via email."
	FallbackText       = "I'm having trouble connecting right now. Please try again in a moment!"
	TicketFailedText   = "Sorry, I couldn't create a support ticket right now. Please try again or email us directly at support@nexus.com"
	SupportSubject     = "Support Request from Chat"
	DefaultSupportName = "Guest"
)

var (
	ErrBusy                  = errors.New("chat: waiting for a response")
	ErrNoSupportRequest      = errors.New("chat: no support request in progress")
	ErrIncompleteSupportForm = errors.New("chat: email and message are required")
)

// supportKeywords trigger the support hand-off when found in a message.
var supportKeywords = []string{"support", "human", "agent"}

// State is the widget conversation state.
type State int

const (
	Idle State = iota
	AwaitingResponse
	CollectingSupport
	Submitted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingResponse:
		return "awaiting-response"
	case CollectingSupport:
		return "collecting-support"
	case Submitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Message is one transcript line.
type Message struct {
	ID    int64
	Text  string
	IsBot bool
	Time  time.Time
}

// ChatAPI is the part of the chat client the widget needs.
type ChatAPI interface {
	SendMessage(ctx context.Context, message, sessionID string) (*models.ChatResponse, error)
	GetHistory(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
}

// SupportAPI is the part of the support client the widget needs.
type SupportAPI interface {
	CreateTicket(ctx context.Context, req protocol.CreateTicketRequest) (*models.SupportTicket, error)
}

// SupportForm is what the user fills in after asking for a human.
type SupportForm struct {
	Email   string
	Name    string
	Message string
}

// Option configures a Widget.
type Option func(*Widget)

// WithEventBus publishes transcript and state changes on bus.
func WithEventBus(bus *events.Bus) Option {
	return func(w *Widget) {
		w.bus = bus
	}
}

// WithClock overrides the time source used for local messages.
func WithClock(now func() time.Time) Option {
	return func(w *Widget) {
		w.now = now
	}
}

// Widget is the chat widget conversation: a transcript plus the
// idle / awaiting-response / collecting-support / submitted state machine.
// It is safe for concurrent use; network calls run without holding the lock.
type Widget struct {
	chat      ChatAPI
	support   SupportAPI
	sessionID string
	bus       *events.Bus
	now       func() time.Time

	mu        sync.Mutex
	state     State
	connected bool
	messages  []Message
	lastID    int64
}

// NewWidget creates a widget for sessionID seeded with the welcome message.
func NewWidget(chat ChatAPI, support SupportAPI, sessionID string, opts ...Option) *Widget {
	w := &Widget{
		chat:      chat,
		support:   support,
		sessionID: sessionID,
		now:       time.Now,
		state:     Idle,
		connected: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.messages = []Message{w.localMessage(WelcomeText, true)}
	return w
}

// SessionID returns the chat session the widget talks under.
func (w *Widget) SessionID() string {
	return w.sessionID
}

// State returns the current conversation state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Connected reports whether the last backend call succeeded.
func (w *Widget) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

// Messages returns a copy of the transcript.
func (w *Widget) Messages() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Message, len(w.messages))
	copy(out, w.messages)
	return out
}

// LoadHistory replaces the transcript after the welcome message with the
// server-side history for the session. Failures leave the transcript as is.
func (w *Widget) LoadHistory(ctx context.Context) error {
	history, err := w.chat.GetHistory(ctx, w.sessionID)
	if err != nil {
		logger.Debug("Could not load chat history: %v", err)
		return err
	}
	if len(history) == 0 {
		return nil
	}

	loaded := make([]Message, 0, len(history))
	for _, m := range history {
		loaded = append(loaded, Message{
			ID:    m.ID,
			Text:  m.Message,
			IsBot: m.IsBot,
			Time:  m.CreatedAt.Time,
		})
	}

	w.mu.Lock()
	w.messages = append(w.messages[:1:1], loaded...)
	w.mu.Unlock()

	for _, m := range loaded {
		w.publishMessage(m)
	}
	return nil
}

// IsSupportIntent reports whether text asks for a human.
func IsSupportIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range supportKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Send handles one user message. Blank text is ignored. Support requests
// switch to collecting the support form without contacting the backend;
// anything else is sent to the chatbot. A backend failure is not returned:
// the fallback reply is appended and the widget marked disconnected.
func (w *Widget) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	w.mu.Lock()
	if w.state == AwaitingResponse {
		w.mu.Unlock()
		return ErrBusy
	}
	user := w.localMessage(text, false)
	w.messages = append(w.messages, user)

	if IsSupportIntent(text) {
		prompt := w.localMessage(SupportPromptText, true)
		w.messages = append(w.messages, prompt)
		w.setState(CollectingSupport)
		w.mu.Unlock()

		w.publishMessage(user)
		w.publishMessage(prompt)
		return nil
	}

	// Return to idle or to the open support form afterwards.
	resting := w.state
	w.setState(AwaitingResponse)
	w.mu.Unlock()
	w.publishMessage(user)

	resp, err := w.chat.SendMessage(ctx, text, w.sessionID)

	w.mu.Lock()
	var reply Message
	if err != nil {
		logger.Warn("Chat API error: %v", err)
		w.connected = false
		reply = w.localMessage(FallbackText, true)
	} else {
		w.connected = true
		reply = Message{
			ID:    resp.BotMessage.ID,
			Text:  resp.BotMessage.Message,
			IsBot: true,
			Time:  resp.BotMessage.CreatedAt.Time,
		}
		if reply.Time.IsZero() {
			reply.Time = w.now()
		}
	}
	w.messages = append(w.messages, reply)
	w.setState(resting)
	w.mu.Unlock()

	w.publishMessage(reply)
	return nil
}

// SubmitSupport files a support ticket from form. It is only valid while
// collecting a support request. On success the confirmation is appended
// and the widget returns to idle; on failure an apology is appended and
// the form stays open for another attempt.
func (w *Widget) SubmitSupport(ctx context.Context, form SupportForm) (*models.SupportTicket, error) {
	w.mu.Lock()
	if w.state != CollectingSupport {
		w.mu.Unlock()
		return nil, ErrNoSupportRequest
	}
	w.mu.Unlock()

	email := strings.TrimSpace(form.Email)
	message := strings.TrimSpace(form.Message)
	if email == "" || message == "" {
		return nil, ErrIncompleteSupportForm
	}
	name := strings.TrimSpace(form.Name)
	if name == "" {
		name = DefaultSupportName
	}

	ticket, err := w.support.CreateTicket(ctx, protocol.CreateTicketRequest{
		Email:     email,
		Name:      name,
		Message:   message,
		Subject:   SupportSubject,
		SessionID: w.sessionID,
	})

	w.mu.Lock()
	if err != nil {
		logger.Error("Error creating ticket: %v", err)
		w.connected = false
		apology := w.localMessage(TicketFailedText, true)
		w.messages = append(w.messages, apology)
		w.mu.Unlock()

		w.publishMessage(apology)
		return nil, err
	}

	w.connected = true
	w.setState(Submitted)
	confirm := w.localMessage(confirmationText(ticket.ID, email), true)
	w.messages = append(w.messages, confirm)
	w.setState(Idle)
	w.mu.Unlock()

	w.publishMessage(confirm)
	return ticket, nil
}

// CancelSupport abandons the support form.
func (w *Widget) CancelSupport() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == CollectingSupport {
		w.setState(Idle)
	}
}

func confirmationText(ticketID int64, email string) string {
	return fmt.Sprintf("Support ticket #%d created!\n\nWe've sent a confirmation to %s. Our team will get back to you within 2 hours.\n\nIn the meantime, feel free to ask me anything else!", ticketID, email)
}

// localMessage builds a message that did not come from the backend.
// IDs are time based and strictly increasing. Caller holds w.mu or owns w.
func (w *Widget) localMessage(text string, isBot bool) Message {
	now := w.now()
	id := now.UnixMilli()
	if id <= w.lastID {
		id = w.lastID + 1
	}
	w.lastID = id
	return Message{ID: id, Text: text, IsBot: isBot, Time: now}
}

// setState changes state and publishes the transition. Caller holds w.mu.
func (w *Widget) setState(s State) {
	w.state = s
	w.bus.Publish(events.Event{
		Type: events.EventChatState,
		Data: events.ChatStateData{State: s.String(), Connected: w.connected},
	})
}

func (w *Widget) publishMessage(m Message) {
	w.bus.Publish(events.Event{
		Type: events.EventChatMessage,
		Data: events.ChatMessageData{ID: m.ID, Text: m.Text, IsBot: m.IsBot, Time: m.Time},
	})
}
