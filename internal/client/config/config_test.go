package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nexus/internal/session"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.APIURL != "http://localhost:8000" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.Store != StoreFile {
		t.Errorf("Store = %q", cfg.Store)
	}
	if cfg.InspectorAddr != "127.0.0.1:4040" {
		t.Errorf("InspectorAddr = %q", cfg.InspectorAddr)
	}
}

func TestParse_FromEnv(t *testing.T) {
	t.Setenv("NEXUS_API_URL", "https://api.nexus.test/ ")
	t.Setenv("NEXUS_HTTP_TIMEOUT", "5s")
	t.Setenv("NEXUS_STORE", "memory")
	t.Setenv("NEXUS_LOG_LEVEL", "debug")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.APIURL != "https://api.nexus.test" {
		t.Errorf("APIURL = %q, want trailing slash trimmed", cfg.APIURL)
	}
	if cfg.HTTPTimeout != 5*time.Second || cfg.Store != StoreMemory || cfg.LogLevel != "debug" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"NEXUS_STORE", "redis"},
		{"NEXUS_HTTP_TIMEOUT", "soon"},
		{"NEXUS_HTTP_TIMEOUT", "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Parse(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestOpenStore_Backends(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  Config
	}{
		{"memory", Config{Store: StoreMemory}},
		{"file", Config{Store: StoreFile, StorePath: filepath.Join(dir, "s.yaml")}},
		{"sqlite", Config{Store: StoreSQLite, StorePath: filepath.Join(dir, "s.db")}},
		{"sealed file", Config{Store: StoreFile, StorePath: filepath.Join(dir, "sealed.yaml"), StoreHashKey: strings.Repeat("ab", 32)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, closeFn, err := tt.cfg.OpenStore()
			if err != nil {
				t.Fatalf("OpenStore() error = %v", err)
			}
			defer closeFn()

			sess := session.New(store)
			if err := sess.SetToken("tok"); err != nil {
				t.Fatalf("SetToken() error = %v", err)
			}
			if got, ok := sess.Token(); !ok || got != "tok" {
				t.Errorf("Token() = %q, %v", got, ok)
			}
		})
	}
}

func TestOpenStore_BadSealKey(t *testing.T) {
	cfg := Config{Store: StoreMemory, StoreHashKey: "not-hex"}
	if _, _, err := cfg.OpenStore(); !errors.Is(err, session.ErrInvalidSealKey) {
		t.Errorf("expected ErrInvalidSealKey, got %v", err)
	}
}
