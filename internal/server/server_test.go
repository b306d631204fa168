package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ConstantineIIII/WhatsappClone/internal/app"
	"github.com/ConstantineIIII/WhatsappClone/pkg/cache"
	"github.com/ConstantineIIII/WhatsappClone/pkg/store"
	"github.com/ConstantineIIII/WhatsappClone/pkg/token"
)

type testEnv struct {
	t      *testing.T
	server *httptest.Server
	store  *store.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemoryStore()
	tokens, err := token.NewIssuer("test-secret", token.NewMemoryRevoker(), token.Options{})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := app.New(st, tokens, cache.NoopCache{}, nil, log)
	srv := httptest.NewServer(New(a, nil, log).Handler())
	t.Cleanup(srv.Close)
	return &testEnv{t: t, server: srv, store: st}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
}

func (e *testEnv) do(method, path, bearer string, body any) (int, apiResponse) {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	if err != nil {
		e.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		e.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		e.t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func (e *testEnv) register(username, email string) (string, string) {
	e.t.Helper()
	status, resp := e.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": username,
		"email":    email,
		"password": "password123",
		"fullName": "Test " + username,
	})
	if status != http.StatusCreated {
		e.t.Fatalf("register %s: status %d (%s)", username, status, resp.Message)
	}
	var data struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		e.t.Fatalf("decode register data: %v", err)
	}
	return data.User.ID, data.Token
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.register("alice", "alice@example.com")

	status, resp := env.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if status != http.StatusOK || !resp.Success {
		t.Fatalf("login failed: %d %s", status, resp.Message)
	}

	status, _ = env.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "nope",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	status, resp := env.do(http.MethodGet, "/api/chats", "", nil)
	if status != http.StatusUnauthorized || resp.Success {
		t.Fatalf("expected 401 envelope, got %d success=%v", status, resp.Success)
	}

	status, _ = env.do(http.MethodGet, "/api/chats", "garbage-token", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", status)
	}
}

func TestChatAndMessageFlow(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.register("alice", "alice@example.com")
	bobID, bobToken := env.register("bob", "bob@example.com")

	status, resp := env.do(http.MethodPost, "/api/chats", aliceToken, map[string]any{
		"participantIds": []string{bobID},
	})
	if status != http.StatusCreated {
		t.Fatalf("create chat: %d %s", status, resp.Message)
	}
	var chat struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &chat); err != nil {
		t.Fatalf("decode chat: %v", err)
	}

	// Creating the same pair again returns the existing chat with 409.
	status, resp = env.do(http.MethodPost, "/api/chats", bobToken, map[string]any{
		"participantIds": []string{mustUserID(t, env, aliceToken)},
	})
	if status != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate pair, got %d", status)
	}
	var dup struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &dup); err != nil {
		t.Fatalf("decode duplicate chat: %v", err)
	}
	if dup.ID != chat.ID {
		t.Fatalf("duplicate create should return the existing chat")
	}

	status, resp = env.do(http.MethodPost, "/api/messages", aliceToken, map[string]any{
		"chatId":  chat.ID,
		"content": "hello bob",
	})
	if status != http.StatusCreated {
		t.Fatalf("send message: %d %s", status, resp.Message)
	}

	status, resp = env.do(http.MethodGet, "/api/messages/chat/"+chat.ID, bobToken, nil)
	if status != http.StatusOK {
		t.Fatalf("feed: %d %s", status, resp.Message)
	}
	var feed struct {
		Messages []struct {
			Content string `json:"content"`
			Status  string `json:"messageStatus"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(resp.Data, &feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if len(feed.Messages) != 1 || feed.Messages[0].Content != "hello bob" {
		t.Fatalf("unexpected feed: %+v", feed.Messages)
	}
	if feed.Messages[0].Status != "read" {
		t.Fatalf("fetching the feed should mark messages read, got %q", feed.Messages[0].Status)
	}
}

func mustUserID(t *testing.T, env *testEnv, bearer string) string {
	t.Helper()
	status, resp := env.do(http.MethodGet, "/api/auth/profile", bearer, nil)
	if status != http.StatusOK {
		t.Fatalf("profile: %d", status)
	}
	var user struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &user); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	return user.ID
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	userID, userToken := env.register("alice", "alice@example.com")

	status, _ := env.do(http.MethodGet, "/api/admin/stats", userToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", status)
	}

	// Flip the admin flag directly and try again.
	if err := env.store.UpdateUserFields(context.Background(), userID, map[string]any{"is_admin": true}); err != nil {
		t.Fatalf("promote: %v", err)
	}
	status, resp := env.do(http.MethodGet, "/api/admin/stats", userToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d (%s)", status, resp.Message)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	env := newTestEnv(t)
	_, tokenStr := env.register("alice", "alice@example.com")

	status, _ := env.do(http.MethodPost, "/api/auth/logout", tokenStr, nil)
	if status != http.StatusOK {
		t.Fatalf("logout: %d", status)
	}
	status, _ = env.do(http.MethodGet, "/api/auth/profile", tokenStr, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", status)
	}
}

func TestPublicProfileHidesPrivateFields(t *testing.T) {
	env := newTestEnv(t)
	userID, _ := env.register("alice", "alice@example.com")

	status, resp := env.do(http.MethodGet, fmt.Sprintf("/api/users/%s", userID), "", nil)
	if status != http.StatusOK {
		t.Fatalf("public profile: %d", status)
	}
	var raw map[string]any
	if err := json.Unmarshal(resp.Data, &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := raw["email"]; ok && raw["email"] != "" {
		t.Fatalf("public profile must not expose the email, got %v", raw["email"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	status, resp := env.do(http.MethodGet, "/health", "", nil)
	if status != http.StatusOK || !resp.Success {
		t.Fatalf("health: %d success=%v", status, resp.Success)
	}
}
