package chatsvc_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/otebot/otebot-api/internal/domain"
	"github.com/otebot/otebot-api/internal/infra/logging"
	"github.com/otebot/otebot-api/internal/svc/authsvc"
	"github.com/otebot/otebot-api/internal/svc/chatsvc"
)

type relayFixture struct {
	srv           *httptest.Server
	tokens        *authsvc.TokenService
	upstreamCalls *atomic.Int64
}

// setupRelay wires the chat transport against a fake upstream and a real
// token service, mirroring the production wiring.
func setupRelay(t *testing.T, upstreamHandler http.HandlerFunc) relayFixture {
	t.Helper()

	upstream, calls := newFakeUpstream(t, upstreamHandler)

	tokens := &authsvc.TokenService{
		Config: authsvc.TokenConfig{Secret: "test-secret", TokenTTL: 21600},
		Log:    logging.NewNopLogger(),
	}

	chatSvc := newTestChatService(t, upstream.URL)

	srv := httptest.NewServer(chatsvc.NewHTTPTransport(chatSvc, tokens))
	t.Cleanup(srv.Close)

	return relayFixture{srv: srv, tokens: tokens, upstreamCalls: calls}
}

func happyUpstream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"choices":[{"message":{"content":"hi there"}}]}`))
}

func (f relayFixture) postChat(t *testing.T, token, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/chat", strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /chat: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func (f relayFixture) validToken(t *testing.T) string {
	t.Helper()

	token, err := f.tokens.Issue(context.Background(), "admin@otebot.re", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	return "Bearer " + token
}

//nolint:paralleltest
func TestHTTPTransport_Health(t *testing.T) {
	// Health must succeed with nothing configured at all.
	chatSvc := &chatsvc.ChatService{
		Config:     chatsvc.ChatConfig{},
		HTTPClient: http.DefaultClient,
		Log:        logging.NewNopLogger(),
	}
	tokens := authsvc.NewTokenService(authsvc.TokenConfig{})

	srv := httptest.NewServer(chatsvc.NewHTTPTransport(chatSvc, tokens))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health chatsvc.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q, want %q", health.Status, "ok")
	}
	if health.App != "otebot-api" {
		t.Errorf("app = %q, want %q", health.App, "otebot-api")
	}
}

//nolint:paralleltest
func TestHTTPTransport_Chat_Unauthorized(t *testing.T) {
	fixture := setupRelay(t, happyUpstream)

	otherTokens := &authsvc.TokenService{
		Config: authsvc.TokenConfig{Secret: "other-secret", TokenTTL: 21600},
		Log:    logging.NewNopLogger(),
	}

	foreignToken, err := otherTokens.Issue(context.Background(), "admin@otebot.re", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	expiredTokens := &authsvc.TokenService{
		Config: authsvc.TokenConfig{Secret: "test-secret", TokenTTL: -3600},
		Log:    logging.NewNopLogger(),
	}

	expiredToken, err := expiredTokens.Issue(context.Background(), "admin@otebot.re", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name      string
		token     string
		wantError string
	}{
		{name: "no header", token: "", wantError: "missing token"},
		{name: "not a bearer scheme", token: "Basic abc", wantError: "missing token"},
		{name: "empty bearer", token: "Bearer ", wantError: "missing token"},
		{name: "garbage token", token: "Bearer garbage", wantError: "invalid or expired token"},
		{name: "wrong signing secret", token: "Bearer " + foreignToken, wantError: "invalid or expired token"},
		{name: "expired token", token: "Bearer " + expiredToken, wantError: "invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := fixture.postChat(t, tt.token, `{"message":"hello"}`)

			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
			}

			var errResp struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if errResp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", errResp.Error, tt.wantError)
			}
		})
	}

	if calls := fixture.upstreamCalls.Load(); calls != 0 {
		t.Errorf("upstream called %d times for unauthorized requests, want 0", calls)
	}
}

//nolint:paralleltest
func TestHTTPTransport_Chat_Success(t *testing.T) {
	fixture := setupRelay(t, happyUpstream)

	resp := fixture.postChat(t, fixture.validToken(t), `{"message":"hello"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var reply domain.ChatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if reply.Reply != "hi there" {
		t.Errorf("reply = %q, want %q", reply.Reply, "hi there")
	}
}

//nolint:paralleltest
func TestHTTPTransport_Chat_BadRequest(t *testing.T) {
	fixture := setupRelay(t, happyUpstream)
	token := fixture.validToken(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "empty message", body: `{"message":""}`},
		{name: "missing message", body: `{}`},
		{name: "malformed json", body: `{"message"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := fixture.postChat(t, token, tt.body)

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}

			var errResp struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if errResp.Error != "message is required" {
				t.Errorf("error = %q, want %q", errResp.Error, "message is required")
			}
		})
	}

	if calls := fixture.upstreamCalls.Load(); calls != 0 {
		t.Errorf("upstream called %d times for bad requests, want 0", calls)
	}
}

//nolint:paralleltest
func TestHTTPTransport_Chat_UpstreamErrorNotLeaked(t *testing.T) {
	const upstreamDetail = "insufficient_quota: check billing"

	fixture := setupRelay(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(upstreamDetail))
	})

	resp := fixture.postChat(t, fixture.validToken(t), `{"message":"hello"}`)

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	if strings.Contains(string(raw), "insufficient_quota") {
		t.Errorf("response leaks upstream error text: %q", raw)
	}

	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &errResp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errResp.Error != "upstream completion failed" {
		t.Errorf("error = %q, want generic upstream message", errResp.Error)
	}
}

//nolint:paralleltest
func TestHTTPTransport_Chat_FallbackReply(t *testing.T) {
	fixture := setupRelay(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	})

	resp := fixture.postChat(t, fixture.validToken(t), `{"message":"hello"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var reply domain.ChatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if reply.Reply != "unable to generate a reply at this time" {
		t.Errorf("reply = %q, want fallback", reply.Reply)
	}
}
