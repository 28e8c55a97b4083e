package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"nexus/internal/api"
	"nexus/internal/client/config"
)

const testToken = "tok_123"

// backend is a fake API that requires testToken on protected routes.
type backend struct {
	mu       sync.Mutex
	bodies   map[string]string
	queries  map[string]string
	unlinked []string
	srv      *httptest.Server
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{bodies: map[string]string{}, queries: map[string]string{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		body := b.record(r)
		if !strings.Contains(body, `"password":"secret"`) {
			writeJSON(w, http.StatusUnauthorized, `{"detail":"Invalid credentials"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"access":"`+testToken+`","refresh":"r"}`)
	})
	mux.HandleFunc("GET /api/auth/me", b.protected(`{"id":1,"username":"ana","email":"ana@example.com","role":"EDITOR"}`))
	mux.HandleFunc("PATCH /api/auth/me", b.protected(`{"id":1,"username":"ana","full_name":"Ana Lima"}`))
	mux.HandleFunc("GET /api/campaigns", b.protected(`[{"id":3,"title":"Summer clips","platform":"TIKTOK","payout_rate":"2.50","total_budget":"100","used_budget":"40"}]`))
	mux.HandleFunc("GET /api/integrations/connected-accounts/", b.protected(`{"count":2,"results":[
		{"id":1,"platform":"YOUTUBE","handle":"@ana","status":"VERIFIED"},
		{"id":2,"platform":"TIKTOK","handle":"ana.clips","status":"PENDING","verification_code":"NX-42"}]}`))
	mux.HandleFunc("GET /api/integrations/connected-accounts/1/metrics/", b.protected(`{"views":1000,"likes":40,"comments":10}`))
	mux.HandleFunc("GET /api/integrations/connected-accounts/2/metrics/", b.protected(`{"views":"500","subscribers":7}`))
	mux.HandleFunc("DELETE /api/integrations/connected-accounts/{id}/", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, `{"detail":"Not authenticated"}`)
			return
		}
		b.mu.Lock()
		b.unlinked = append(b.unlinked, r.PathValue("id"))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/chat/message", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeJSON(w, http.StatusOK, `{"user_message":{"id":1,"message":"hi"},"bot_message":{"id":2,"message":"Hello from Nexus","is_bot":true}}`)
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"healthy"}`)
	})

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) record(r *http.Request) string {
	data, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	defer b.mu.Unlock()
	key := r.Method + " " + r.URL.Path
	b.bodies[key] = string(data)
	b.queries[key] = r.URL.RawQuery
	return string(data)
}

func (b *backend) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+testToken
}

func (b *backend) protected(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		if !b.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, `{"detail":"Not authenticated"}`)
			return
		}
		writeJSON(w, http.StatusOK, body)
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func testConfig(t *testing.T, apiURL string) *config.Config {
	t.Helper()
	return &config.Config{
		APIURL:      apiURL,
		HTTPTimeout: 5 * time.Second,
		Store:       config.StoreFile,
		StorePath:   filepath.Join(t.TempDir(), "session.yaml"),
	}
}

func runCLI(t *testing.T, cfg *config.Config, stdin string, args ...string) (string, error) {
	t.Helper()
	root, a := newRootCmd(cfg)
	defer a.close()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func login(t *testing.T, cfg *config.Config) {
	t.Helper()
	if _, err := runCLI(t, cfg, "", "login", "-u", "ana", "-p", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestLogin_PersistsTokenAcrossRuns(t *testing.T) {
	b := newBackend(t)
	cfg := testConfig(t, b.srv.URL)

	out, err := runCLI(t, cfg, "", "login", "--username", "ana", "--password", "secret")
	if err != nil {
		t.Fatalf("login error = %v", err)
	}
	if !strings.Contains(out, "Logged in as ana") {
		t.Errorf("login output = %q", out)
	}

	out, err = runCLI(t, cfg, "", "me")
	if err != nil {
		t.Fatalf("me error = %v", err)
	}
	if !strings.Contains(out, "ana@example.com") {
		t.Errorf("me output = %q", out)
	}
}

func TestLogin_PromptsForMissingCredentials(t *testing.T) {
	b := newBackend(t)
	cfg := testConfig(t, b.srv.URL)

	out, err := runCLI(t, cfg, "ana\nsecret\n", "login")
	if err != nil {
		t.Fatalf("login error = %v", err)
	}
	if !strings.Contains(out, "Username: ") || !strings.Contains(out, "Password: ") {
		t.Errorf("expected prompts, got %q", out)
	}
	if body := b.bodies["POST /api/auth/login/"]; !strings.Contains(body, `"username":"ana"`) {
		t.Errorf("login body = %s", body)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	b := newBackend(t)
	cfg := testConfig(t, b.srv.URL)

	_, err := runCLI(t, cfg, "", "login", "-u", "ana", "-p", "wrong")
	if api.Message(err) != "Invalid credentials" {
		t.Errorf("error = %v, want Invalid credentials", err)
	}
}

func TestLogout_ForgetsToken(t *testing.T) {
	b := newBackend(t)
	cfg := testConfig(t, b.srv.URL)
	login(t, cfg)

	if _, err := runCLI(t, cfg, "", "logout"); err != nil {
		t.Fatalf("logout error = %v", err)
	}
	_, err := runCLI(t, cfg, "", "me")
	if !api.IsUnauthorized(err) {
		t.Errorf("me after logout: error = %v, want 401", err)
	}
}

func TestProfile_SendsOnlyChangedFields(t *testing.T) {
	b := newBackend(t)
	cfg := testConfig(t, b.srv.URL)
	login(t, cfg)

	if _, err := runCLI(t, cfg, "", "profile", "--full-name", "Ana Lima"); err != nil {
		t.Fatalf("profile error = %v", err)
	}
	if body := b.bodies["PATCH /api/auth/me"]; body != `{"full_name":"Ana Lima"}` {
		t.Errorf("PATCH body = %s", body)
	}

	if _, err := runCLI(t, cfg, "", "profile"); err == nil {
		t.Error("profile without flags should fail")
	}
}

func TestCampaignsList_FilterQuery(t *testing.T) {
	b := newBackend(t)
	cfg := testConfig(t, b.srv.URL)
	login(t, cfg)

	out, err := runCLI(t, cfg, "", "campaigns", "list", "--platform", "TIKTOK", "--active-only")
	if err != nil {
		t.Fatalf("campaigns list error = %v", err)
	}
	if q := b.queries["GET /api/campaigns"]; q != "platform=TIKTOK&active_only=true" {
		t.Errorf("query = %q", q)
	}
	if !strings.Contains(out, "Summer clips") || !strings.Contains(out, "$60.00") {
		t.Errorf("output = %q", out)
	}
}

func TestAccountsOverview(t *testing.T) {
	b := newBackend(t)
	cfg := testConfig(t, b.srv.URL)
	login(t, cfg)

	out, err := runCLI(t, cfg, "", "accounts", "overview")
	if err != nil {
		t.Fatalf("accounts overview error = %v", err)
	}
	for _, want := range []string{"@ana", "ana.clips", "5.00%", "1500"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAccountsUnlink(t *testing.T) {
	b := newBackend(t)
	cfg := testConfig(t, b.srv.URL)
	login(t, cfg)

	out, err := runCLI(t, cfg, "", "accounts", "unlink", "2")
	if err != nil {
		t.Fatalf("unlink error = %v", err)
	}
	if len(b.unlinked) != 1 || b.unlinked[0] != "2" {
		t.Errorf("unlinked = %v", b.unlinked)
	}
	if !strings.Contains(out, "Account #2 unlinked") {
		t.Errorf("output = %q", out)
	}

	if _, err := runCLI(t, cfg, "", "accounts", "unlink", "abc"); err == nil {
		t.Error("non-numeric id should fail")
	}
}

func TestAccountsCallback_MissingCode(t *testing.T) {
	b := newBackend(t)
	cfg := testConfig(t, b.srv.URL)

	out, err := runCLI(t, cfg, "", "accounts", "callback", "http://localhost:3000/oauth/callback?state=youtube_1")
	if !errors.Is(err, api.ErrMissingAuthorizationCode) {
		t.Errorf("error = %v, want ErrMissingAuthorizationCode", err)
	}
	if !strings.Contains(out, "Authorization code not found. Connection failed.") {
		t.Errorf("output = %q", out)
	}
}

func TestAccountsConnect_UnknownPlatform(t *testing.T) {
	b := newBackend(t)
	cfg := testConfig(t, b.srv.URL)

	if _, err := runCLI(t, cfg, "", "accounts", "connect", "myspace"); err == nil {
		t.Error("unknown platform should fail")
	}
}

func TestChatSend_ReusesSessionID(t *testing.T) {
	b := newBackend(t)
	cfg := testConfig(t, b.srv.URL)

	out, err := runCLI(t, cfg, "", "chat", "send", "hi", "there")
	if err != nil {
		t.Fatalf("chat send error = %v", err)
	}
	if strings.TrimSpace(out) != "Hello from Nexus" {
		t.Errorf("output = %q", out)
	}
	first := b.bodies["POST /api/chat/message"]
	if !strings.Contains(first, `"message":"hi there"`) || !strings.Contains(first, `"session_id":"session_`) {
		t.Errorf("chat body = %s", first)
	}

	if _, err := runCLI(t, cfg, "", "chat", "send", "again"); err != nil {
		t.Fatalf("second chat send error = %v", err)
	}
	second := b.bodies["POST /api/chat/message"]
	if sessionOf(first) != sessionOf(second) {
		t.Errorf("session id changed: %s vs %s", sessionOf(first), sessionOf(second))
	}
}

func sessionOf(body string) string {
	_, rest, _ := strings.Cut(body, `"session_id":"`)
	id, _, _ := strings.Cut(rest, `"`)
	return id
}

func TestHealth(t *testing.T) {
	b := newBackend(t)
	cfg := testConfig(t, "http://127.0.0.1:1")

	out, err := runCLI(t, cfg, "", "health", "--api-url", b.srv.URL+"/")
	if err != nil {
		t.Fatalf("health error = %v", err)
	}
	if !strings.Contains(out, "is healthy") {
		t.Errorf("output = %q", out)
	}
	if cfg.APIURL != b.srv.URL {
		t.Errorf("APIURL = %q, want trimmed override %q", cfg.APIURL, b.srv.URL)
	}
}

func TestParseID(t *testing.T) {
	for _, in := range []string{"", "0", "-3", "x1"} {
		if _, err := parseID(in); err == nil {
			t.Errorf("parseID(%q) should fail", in)
		}
	}
	if id, err := parseID("42"); err != nil || id != 42 {
		t.Errorf("parseID(42) = %d, %v", id, err)
	}
}
