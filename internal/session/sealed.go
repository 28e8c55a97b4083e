package session

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/gorilla/securecookie"
)

var (
	ErrMissingSealKey = errors.New("session: seal keys not configured")
	ErrInvalidSealKey = errors.New("session: invalid seal key format")
)

const sealKeyLength = 32

// SealedStore signs and encrypts values before handing them to the
// wrapped store, so a copied store file does not leak a usable token.
// A value that fails to decode is reported as ErrNotFound.
type SealedStore struct {
	inner Store
	sc    *securecookie.SecureCookie
}

// NewSealedStore wraps inner. hashKey authenticates values; blockKey
// encrypts them and may be nil for sign-only storage.
func NewSealedStore(inner Store, hashKey, blockKey []byte) *SealedStore {
	sc := securecookie.New(hashKey, blockKey)
	// Tokens stay valid until the backend rejects them.
	sc.MaxAge(0)
	return &SealedStore{inner: inner, sc: sc}
}

// NewSealedStoreFromHex decodes hex-encoded keys, as read from
// NEXUS_STORE_HASH_KEY and NEXUS_STORE_BLOCK_KEY.
func NewSealedStoreFromHex(inner Store, hashHex, blockHex string) (*SealedStore, error) {
	if hashHex == "" {
		return nil, ErrMissingSealKey
	}
	hashKey, err := decodeKey(hashHex)
	if err != nil {
		return nil, err
	}
	var blockKey []byte
	if blockHex != "" {
		if blockKey, err = decodeKey(blockHex); err != nil {
			return nil, err
		}
	}
	return NewSealedStore(inner, hashKey, blockKey), nil
}

func decodeKey(keyHex string) ([]byte, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil || len(key) < sealKeyLength {
		return nil, ErrInvalidSealKey
	}
	return key[:sealKeyLength], nil
}

func (s *SealedStore) Get(key string) (string, error) {
	encoded, err := s.inner.Get(key)
	if err != nil {
		return "", err
	}
	var value string
	if err := s.sc.Decode(key, encoded, &value); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return value, nil
}

func (s *SealedStore) Set(key, value string) error {
	encoded, err := s.sc.Encode(key, value)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return s.inner.Set(key, encoded)
}

func (s *SealedStore) Delete(key string) error {
	return s.inner.Delete(key)
}
