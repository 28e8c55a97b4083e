package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nexus/internal/api"
	"nexus/internal/client/chat"
	"nexus/internal/client/events"
)

// Version can be set at build time
var Version = "dev"

// RequestEntry represents a recent API request for display
type RequestEntry struct {
	Method   string
	Endpoint string
	Status   int
	Duration time.Duration
}

// formStep is the support form field being edited.
type formStep int

const (
	stepNone formStep = iota
	stepEmail
	stepName
	stepMessage
)

var formLabels = map[formStep]string{
	stepEmail:   "Email",
	stepName:    "Name (optional)",
	stepMessage: "Message",
}

// Model is the chat Bubble Tea model
type Model struct {
	widget   *chat.Widget
	eventSub <-chan events.Event

	// Input state
	input textinput.Model
	step  formStep
	form  chat.SupportForm
	busy  bool

	// Display state
	width    int
	height   int
	messages []chat.Message

	// Recent requests for display
	requests    []RequestEntry
	maxRequests int

	inspectorURL string
	lastError    string
}

// NewModel creates a new TUI model around widget.
func NewModel(widget *chat.Widget, bus *events.Bus, inspectorURL string) Model {
	var eventSub <-chan events.Event
	if bus != nil {
		eventSub = bus.Subscribe()
	}
	input := textinput.New()
	input.Prompt = "> "
	input.PromptStyle = promptStyle
	input.Placeholder = "Ask about campaigns, payouts or type 'support'"
	input.CharLimit = 2000
	input.Focus()

	return Model{
		widget:       widget,
		input:        input,
		eventSub:     eventSub,
		messages:     widget.Messages(),
		maxRequests:  5,
		inspectorURL: inspectorURL,
	}
}

// Messages
type eventMsg events.Event
type historyMsg struct{ err error }
type sendDoneMsg struct{ err error }
type supportDoneMsg struct{ err error }

// Commands
func waitForEvent(sub <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		if sub == nil {
			return nil
		}
		event, ok := <-sub
		if !ok {
			return nil
		}
		return eventMsg(event)
	}
}

func loadHistoryCmd(w *chat.Widget) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return historyMsg{err: w.LoadHistory(ctx)}
	}
}

func sendCmd(w *chat.Widget, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		return sendDoneMsg{err: w.Send(ctx, text)}
	}
}

func submitSupportCmd(w *chat.Widget, form chat.SupportForm) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_, err := w.SubmitSupport(ctx, form)
		return supportDoneMsg{err: err}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{loadHistoryCmd(m.widget), textinput.Blink}
	if m.eventSub != nil {
		cmds = append(cmds, waitForEvent(m.eventSub))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case eventMsg:
		m = m.handleEvent(events.Event(msg))
		return m, waitForEvent(m.eventSub)

	case historyMsg:
		m.messages = m.widget.Messages()

	case sendDoneMsg:
		m.busy = false
		m.messages = m.widget.Messages()
		if msg.err != nil {
			m.lastError = api.Message(msg.err)
		}
		if m.widget.State() == chat.CollectingSupport && m.step == stepNone {
			m.setStep(stepEmail)
		}

	case supportDoneMsg:
		m.busy = false
		m.messages = m.widget.Messages()
		if msg.err != nil {
			m.lastError = api.Message(msg.err)
			// Keep the form filled so the user can retry.
			m.setStep(stepMessage)
			m.input.SetValue(m.form.Message)
		} else {
			m.lastError = ""
			m.setStep(stepNone)
			m.form = chat.SupportForm{}
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		if m.step != stepNone && !m.busy {
			m.widget.CancelSupport()
			m.setStep(stepNone)
			m.form = chat.SupportForm{}
			m.input.Reset()
		}
		return m, nil
	case tea.KeyEnter:
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// setStep moves the support form to step and updates the input prompt.
func (m *Model) setStep(step formStep) {
	m.step = step
	if step == stepNone {
		m.input.Prompt = "> "
		m.input.PromptStyle = promptStyle
		return
	}
	m.input.Prompt = formLabels[step] + ": "
	m.input.PromptStyle = formLabelStyle
}

// submit handles Enter: a chat message or the current support form field.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())

	switch m.step {
	case stepNone:
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.busy = true
		m.lastError = ""
		return m, sendCmd(m.widget, text)
	case stepEmail:
		if text == "" {
			m.lastError = "Email is required"
			return m, nil
		}
		m.form.Email = text
		m.setStep(stepName)
	case stepName:
		m.form.Name = text
		m.setStep(stepMessage)
	case stepMessage:
		if text == "" {
			m.lastError = "Message is required"
			return m, nil
		}
		m.form.Message = text
		m.input.Reset()
		m.busy = true
		m.lastError = ""
		return m, submitSupportCmd(m.widget, m.form)
	}
	m.input.Reset()
	m.lastError = ""
	return m, nil
}

func (m Model) handleEvent(event events.Event) Model {
	switch event.Type {
	case events.EventChatMessage, events.EventChatState:
		m.messages = m.widget.Messages()

	case events.EventRequestComplete:
		if data, ok := event.Data.(events.RequestData); ok {
			entry := RequestEntry{
				Method:   data.Method,
				Endpoint: data.Endpoint,
				Status:   data.Status,
				Duration: data.Duration,
			}
			// Prepend (newest first)
			m.requests = append([]RequestEntry{entry}, m.requests...)
			if len(m.requests) > m.maxRequests {
				m.requests = m.requests[:m.maxRequests]
			}
		}

	case events.EventError:
		if data, ok := event.Data.(events.ErrorData); ok {
			m.lastError = fmt.Sprintf("%s: %v", data.Context, data.Error)
		}
	}
	return m
}

// View renders the model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")
	b.WriteString(m.renderTranscript())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")

	if m.lastError != "" {
		b.WriteString(errorStyle.Render(m.lastError))
		b.WriteString("\n")
	}
	if len(m.requests) > 0 {
		b.WriteString(m.renderRequests())
	}
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("nexus assistant")
	hint := hintStyle.Render("(Enter send, Esc cancel form, Ctrl+C quit)")

	spacing := strings.Repeat(" ", 4)
	if m.width > 0 {
		if spaces := m.width - lipgloss.Width(title) - lipgloss.Width(hint); spaces > 0 {
			spacing = strings.Repeat(" ", spaces)
		}
	}
	return title + spacing + hint
}

func (m Model) connectionStatus() string {
	switch {
	case m.busy:
		return "waiting"
	case m.widget.Connected():
		return "online"
	default:
		return "offline"
	}
}

func (m Model) renderStatus() string {
	lines := []string{
		m.renderField("Status", StatusText(m.connectionStatus())),
		m.renderField("Session", m.widget.SessionID()),
		m.renderField("Version", Version),
	}
	if m.inspectorURL != "" {
		lines = append(lines, m.renderField("Inspector", m.inspectorURL))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderField(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

// transcriptLines is how many recent messages fit on screen.
func (m Model) transcriptLines() int {
	if m.height <= 0 {
		return 12
	}
	n := (m.height - 16) / 2
	if n < 3 {
		return 3
	}
	return n
}

func (m Model) renderTranscript() string {
	msgs := m.messages
	if limit := m.transcriptLines(); len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	var lines []string
	for _, msg := range msgs {
		name := userNameStyle.Render("you")
		if msg.IsBot {
			name = botNameStyle.Render("nexus")
		}
		stamp := ""
		if !msg.Time.IsZero() {
			stamp = " " + timeStyle.Render(msg.Time.Local().Format("15:04"))
		}
		lines = append(lines, name+stamp)
		lines = append(lines, messageStyle.Render(msg.Text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderInput() string {
	return m.input.View()
}

func (m Model) renderRequests() string {
	var lines []string
	lines = append(lines, "") // Empty line before
	lines = append(lines, labelStyle.Render("API Requests"))

	for _, req := range m.requests {
		method := MethodText(req.Method)
		path := pathStyle.Render(truncatePath(req.Endpoint, 40))
		status := StatusCodeText(req.Status)
		duration := durationStyle.Render(formatDuration(req.Duration))

		lines = append(lines, fmt.Sprintf("%s %s %s %s", method, path, status, duration))
	}
	return strings.Join(lines, "\n")
}

// Helper functions

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0.00"
	}
	secs := d.Seconds()
	if secs < 1 {
		return fmt.Sprintf("%.2f", secs)
	}
	return fmt.Sprintf("%.1f", secs)
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return path[:maxLen-3] + "..."
}

// Run starts the TUI application
func Run(widget *chat.Widget, bus *events.Bus, inspectorURL string) error {
	model := NewModel(widget, bus, inspectorURL)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
