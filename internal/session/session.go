package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session holds the credentials of one API client on top of a Store.
// It is safe for concurrent use.
type Session struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
}

// New creates a session backed by store.
func New(store Store) *Session {
	return &Session{store: store, now: time.Now}
}

// IsValidToken reports whether a stored token value is usable.
// Empty strings and the "undefined" and "null" sentinels left behind by
// careless writers count as absent.
func IsValidToken(token string) bool {
	switch strings.TrimSpace(token) {
	case "", "undefined", "null":
		return false
	}
	return true
}

// Token returns the stored bearer token. ok is false when no usable token
// is stored or the store cannot be read.
func (s *Session) Token() (token string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.store.Get(KeyToken)
	if err != nil || !IsValidToken(token) {
		return "", false
	}
	return token, true
}

// SetToken overwrites the stored token.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(KeyToken, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// ClearToken removes the stored token. Clearing an absent token is not an error.
func (s *Session) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(KeyToken); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// ChatSessionID returns the persisted chat session id, creating one on
// first use in the form session_<unix millis>_<9 chars>.
func (s *Session) ChatSessionID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.store.Get(KeyChatSessionID)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("read chat session: %w", err)
	}

	id = newChatSessionID(s.now())
	if err := s.store.Set(KeyChatSessionID, id); err != nil {
		return "", fmt.Errorf("store chat session: %w", err)
	}
	return id, nil
}

func newChatSessionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), suffix)
}
