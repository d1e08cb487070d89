package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/placeshare/placeshare/internal/auth"
)

// staticVerifier accepts exactly one token.
type staticVerifier struct {
	token   string
	subject string
}

func (v staticVerifier) Verify(raw string) (string, error) {
	if raw != v.token {
		return "", auth.ErrInvalidToken
	}
	return v.subject, nil
}

func TestAuth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		header        string
		wantStatus    int
		wantPrincipal string
	}{
		{"valid token", http.MethodPost, "Bearer good", http.StatusOK, "u1"},
		{"lowercase scheme", http.MethodPost, "bearer good", http.StatusOK, "u1"},
		{"missing header", http.MethodPost, "", http.StatusUnauthorized, ""},
		{"wrong scheme", http.MethodPost, "Basic good", http.StatusUnauthorized, ""},
		{"bad token", http.MethodPost, "Bearer bad", http.StatusUnauthorized, ""},
		{"preflight passes through", http.MethodOptions, "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotPrincipal string
			handler := Auth(AuthConfig{
				Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
				Verifier: staticVerifier{token: "good", subject: "u1"},
			})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPrincipal = auth.PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/api/places", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotPrincipal != tt.wantPrincipal {
				t.Errorf("principal = %q, want %q", gotPrincipal, tt.wantPrincipal)
			}
			if tt.wantStatus == http.StatusUnauthorized && !strings.Contains(rec.Body.String(), `"code":"UNAUTHORIZED"`) {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	handler := Recoverer(slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("boom"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"code":"INTERNAL_ERROR"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	handler.ServeHTTP(rec, req)
	if seen != "req-123" || rec.Header().Get(RequestIDHeader) != "req-123" {
		t.Errorf("request id = %q / %q, want req-123", seen, rec.Header().Get(RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))
	handler.ServeHTTP(rec, req)
	if len(seen) != 36 {
		t.Errorf("oversized id should be replaced by a UUID, got %q", seen)
	}
}
