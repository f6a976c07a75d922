package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskly/taskly/internal/auth"
	"github.com/taskly/taskly/internal/metrics"
)

type guardEnv struct {
	handler http.Handler
	tokens  *auth.TokenManager
	metrics *metrics.InMemoryRecorder
	logs    *bytes.Buffer
	reached *bool
	userID  *string
}

func newGuardEnv(t *testing.T, transport auth.Transport) guardEnv {
	t.Helper()

	tokens, err := auth.NewTokenManager("test-secret")
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}

	var logs bytes.Buffer
	reached := false
	userID := ""
	rec := metrics.NewInMemory()

	guard := RequireSession(SessionConfig{
		Logger:   slog.New(slog.NewJSONHandler(&logs, nil)),
		Sessions: auth.NewSessions(auth.SessionOptions{Transport: transport}),
		Tokens:   tokens,
		Metrics:  rec,
	})

	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		userID = auth.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	return guardEnv{handler: handler, tokens: tokens, metrics: rec, logs: &logs, reached: &reached, userID: &userID}
}

func decodeMessage(t *testing.T, body io.Reader) string {
	t.Helper()
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return resp.Message
}

func TestRequireSession_CookieValid(t *testing.T) {
	t.Parallel()
	env := newGuardEnv(t, auth.TransportCookie)

	token, _, err := env.tokens.Issue("01HZXAMY")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !*env.reached || *env.userID != "01HZXAMY" {
		t.Errorf("handler reached=%v userID=%q", *env.reached, *env.userID)
	}
}

func TestRequireSession_HeaderValid(t *testing.T) {
	t.Parallel()
	env := newGuardEnv(t, auth.TransportHeader)

	token, _, err := env.tokens.Issue("01HZXAMY")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || *env.userID != "01HZXAMY" {
		t.Errorf("status = %d userID = %q", rec.Code, *env.userID)
	}
}

func TestRequireSession_Rejections(t *testing.T) {
	t.Parallel()

	tokens, err := auth.NewTokenManager("test-secret")
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	past := time.Now().Add(-48 * time.Hour)
	expired, _, err := tokens.WithClock(func() time.Time { return past }).Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	valid, _, err := tokens.Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	parts := strings.Split(valid, ".")
	forged := parts[0] + "." + parts[1] + ".AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS384, auth.Claims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	tests := []struct {
		name       string
		cookie     string
		header     string
		wantMsg    string
		wantReason string
	}{
		{name: "no credential", wantMsg: "Unauthorized", wantReason: "missing_token"},
		{name: "header ignored in cookie mode", header: "Bearer " + valid, wantMsg: "Unauthorized", wantReason: "missing_token"},
		{name: "expired", cookie: expired, wantMsg: "Invalid token", wantReason: "expired"},
		{name: "tampered signature", cookie: forged, wantMsg: "Invalid token", wantReason: "bad_signature"},
		{name: "wrong algorithm", cookie: wrongAlg, wantMsg: "Invalid token"},
		{name: "garbage", cookie: "garbage", wantMsg: "Invalid token", wantReason: "malformed"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newGuardEnv(t, auth.TransportCookie)

			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			env.handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if got := decodeMessage(t, rec.Body); got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
			if *env.reached {
				t.Error("handler must not run for a rejected session")
			}
			if env.metrics.Snapshot().SessionsRejected != 1 {
				t.Error("rejection should be counted")
			}
			logs := env.logs.String()
			if tt.wantReason != "" && !strings.Contains(logs, `"reason":"`+tt.wantReason+`"`) {
				t.Errorf("expected reason %q in logs: %s", tt.wantReason, logs)
			}
			if tt.cookie != "" && strings.Contains(logs, tt.cookie) {
				t.Error("token must never be logged")
			}
		})
	}
}
