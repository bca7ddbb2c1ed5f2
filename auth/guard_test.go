package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty", Config{}, false},
		{"api key", Config{APIKeys: []string{"k1"}}, false},
		{"blank api key", Config{APIKeys: []string{" "}}, true},
		{"strong secret", Config{JWTSecret: string(testSecret)}, false},
		{"weak secret", Config{JWTSecret: "short"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	if err := (Config{JWTSecret: "short"}).Validate(); !errors.Is(err, ErrWeakSecret) {
		t.Errorf("Validate() error = %v, want ErrWeakSecret", err)
	}
}

func guarded(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	g, err := NewGuard(cfg, nil)
	if err != nil {
		t.Fatalf("NewGuard() error = %v", err)
	}
	return g.Require(ActionClearCache)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Principal", PrincipalFromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestGuard_Require(t *testing.T) {
	h := guarded(t, Config{APIKeys: []string{"fw-key"}, JWTSecret: string(testSecret)})

	operatorToken := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub": "alice", "exp": time.Now().Add(time.Hour).Unix(), "roles": []string{"operator"},
	})
	viewerToken := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub": "bob", "exp": time.Now().Add(time.Hour).Unix(), "roles": []string{"viewer"},
	})

	tests := []struct {
		name      string
		header    string
		value     string
		want      int
		principal string
	}{
		{"no credentials", "", "", http.StatusUnauthorized, ""},
		{"api key", "X-API-Key", "fw-key", http.StatusNoContent, "api_key:" + KeyID("fw-key")},
		{"bad api key", "X-API-Key", "nope", http.StatusUnauthorized, ""},
		{"operator jwt", "Authorization", "Bearer " + operatorToken, http.StatusNoContent, "alice"},
		{"viewer jwt", "Authorization", "Bearer " + viewerToken, http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/cache/clear", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			if got := rec.Header().Get("X-Principal"); got != tt.principal {
				t.Errorf("principal = %q, want %q", got, tt.principal)
			}
			if tt.want == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate on 401")
			}
			if tt.want >= 400 && !strings.Contains(rec.Body.String(), `"error"`) {
				t.Errorf("body = %s, want JSON error", rec.Body.String())
			}
		})
	}
}

func TestGuard_DisabledAllowsAll(t *testing.T) {
	h := guarded(t, Config{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cache/clear", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("X-Principal"); got != "anonymous" {
		t.Errorf("principal = %q, want anonymous", got)
	}
}

func TestNewGuard_RejectsWeakSecret(t *testing.T) {
	if _, err := NewGuard(Config{JWTSecret: "short"}, nil); !errors.Is(err, ErrWeakSecret) {
		t.Errorf("NewGuard() error = %v, want ErrWeakSecret", err)
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrMissingCredentials, http.StatusUnauthorized},
		{ErrTokenExpired, http.StatusUnauthorized},
		{&AuthzError{Reason: "x"}, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusCode(tt.err); got != tt.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
