package inspector

import (
	"bytes"
	"io"
	"net/http"
	"time"
)

// Exchange represents a complete API request/response pair
type Exchange struct {
	ID        int64     `json:"id"`
	Request   *Request  `json:"request"`
	Response  *Response `json:"response,omitempty"`
	Error     string    `json:"error,omitempty"`
	Duration  int64     `json:"duration_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// Request captures request details
type Request struct {
	Method  string              `json:"method"`
	URL     string              `json:"url"`
	Headers map[string][]string `json:"headers"`
	Body    string              `json:"body"`
	Size    int64               `json:"size"`
}

// Response captures response details
type Response struct {
	Status  int                 `json:"status"`
	Headers map[string][]string `json:"headers"`
	Body    string              `json:"body"`
	Size    int64               `json:"size"`
}

const maxBodySize int64 = 1024 * 1024 // 1MB max body capture

const redacted = "[redacted]"

// sensitiveHeaders are masked before an exchange is stored.
var sensitiveHeaders = []string{"Authorization", "Cookie", "Set-Cookie"}

// Recorder is an http.RoundTripper that records every exchange passing
// through it into a Store.
type Recorder struct {
	next  http.RoundTripper
	store Store
}

// NewRecorder wraps next, or http.DefaultTransport when next is nil.
func NewRecorder(next http.RoundTripper, store Store) *Recorder {
	if next == nil {
		next = http.DefaultTransport
	}
	if store == nil {
		store = NewInMemoryStore(100)
	}
	return &Recorder{next: next, store: store}
}

// Store returns the recorder's exchange store.
func (r *Recorder) Store() Store {
	return r.store
}

// RoundTrip implements http.RoundTripper.
func (r *Recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	var reqBody []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		reqBody, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		// RoundTrippers must not modify the caller's request.
		req = req.Clone(req.Context())
		req.Body = io.NopCloser(bytes.NewReader(reqBody))
	}

	exchange := Exchange{
		Timestamp: start,
		Request: &Request{
			Method:  req.Method,
			URL:     req.URL.String(),
			Headers: redactHeaders(req.Header),
			Body:    truncateBody(reqBody),
			Size:    int64(len(reqBody)),
		},
	}

	resp, err := r.next.RoundTrip(req)
	if err != nil {
		exchange.Error = err.Error()
		exchange.Duration = time.Since(start).Milliseconds()
		r.store.Add(exchange)
		return nil, err
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(respBody))

	exchange.Duration = time.Since(start).Milliseconds()
	exchange.Response = &Response{
		Status:  resp.StatusCode,
		Headers: redactHeaders(resp.Header),
		Body:    truncateBody(respBody),
		Size:    int64(len(respBody)),
	}
	if readErr != nil {
		exchange.Error = readErr.Error()
	}
	r.store.Add(exchange)

	if readErr != nil {
		return nil, readErr
	}
	return resp, nil
}

func redactHeaders(h http.Header) map[string][]string {
	out := h.Clone()
	if out == nil {
		return map[string][]string{}
	}
	for _, name := range sensitiveHeaders {
		if _, ok := out[name]; ok {
			out[name] = []string{redacted}
		}
	}
	return out
}

// truncateBody limits body size for storage
func truncateBody(body []byte) string {
	if int64(len(body)) > maxBodySize {
		return string(body[:maxBodySize]) + "\n... (truncated)"
	}
	return string(body)
}
