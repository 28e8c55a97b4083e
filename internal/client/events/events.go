package events

import (
	"sync"
	"time"
)

// EventType represents the type of event.
type EventType int

const (
	// API request lifecycle
	EventRequestStart EventType = iota
	EventRequestComplete

	// The backend answered 401 and the stored token was evicted
	EventUnauthorized

	// Chat widget
	EventChatMessage
	EventChatState

	EventError
	EventLog
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EventRequestStart:
		return "request_start"
	case EventRequestComplete:
		return "request_complete"
	case EventUnauthorized:
		return "unauthorized"
	case EventChatMessage:
		return "chat_message"
	case EventChatState:
		return "chat_state"
	case EventError:
		return "error"
	case EventLog:
		return "log"
	default:
		return "unknown"
	}
}

// Event represents an event in the system.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      interface{}
}

// RequestData contains data for request events.
// Status is 0 when the request failed before a response arrived.
type RequestData struct {
	Method   string
	Endpoint string
	Status   int
	Duration time.Duration
	Err      error
}

// UnauthorizedData contains data for EventUnauthorized.
type UnauthorizedData struct {
	Endpoint string
}

// ChatMessageData contains data for EventChatMessage.
type ChatMessageData struct {
	ID    int64
	Text  string
	IsBot bool
	Time  time.Time
}

// ChatStateData contains data for EventChatState.
type ChatStateData struct {
	State     string
	Connected bool
}

// ErrorData contains data for EventError.
type ErrorData struct {
	Error   error
	Context string
}

// LogData contains data for EventLog.
type LogData struct {
	Level   string // "debug", "info", "warn", "error"
	Message string
}

// Bus is a pub/sub event bus with fan-out delivery.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	bufferSize  int
	closed      bool
}

const defaultBufferSize = 100

// NewBus creates a new event bus.
func NewBus() *Bus {
	return NewBusWithBuffer(defaultBufferSize)
}

// NewBusWithBuffer creates a new event bus with custom buffer size.
func NewBusWithBuffer(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Bus{bufferSize: bufferSize}
}

// Subscribe returns a channel that receives all published events.
// The caller is responsible for consuming events to avoid drops.
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber channel and closes it.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			close(sub)
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribers.
// Non-blocking: a subscriber with a full buffer misses the event.
func (b *Bus) Publish(event Event) {
	if b == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// PublishError publishes an error event.
func (b *Bus) PublishError(err error, context string) {
	b.Publish(Event{
		Type: EventError,
		Data: ErrorData{Error: err, Context: context},
	})
}

// PublishLog publishes a log event.
func (b *Bus) PublishLog(level, message string) {
	b.Publish(Event{
		Type: EventLog,
		Data: LogData{Level: level, Message: message},
	})
}

// Close closes the bus and all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
