package session

import "errors"

// ErrNotFound is returned by Store.Get when the key has no value.
var ErrNotFound = errors.New("session: key not found")

// Storage keys shared by every backend.
const (
	KeyToken         = "nexus_token"
	KeyChatSessionID = "nexus_chat_session"
)

// Store is a persistent string key/value store that outlives the process,
// the terminal counterpart of browser local storage.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
