// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/catclube/registry/internal/core"
)

type stubVerifier struct {
	claims map[string]*SessionClaims
	err    error
}

func (v stubVerifier) VerifySessionToken(_ context.Context, token string) (*SessionClaims, error) {
	if v.err != nil {
		return nil, v.err
	}
	if c, ok := v.claims[token]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("verify: %w", core.ErrTokenInvalid)
}

func (stubVerifier) CookieName() string { return "session" }

type stubResolver map[string]*Identity

func (r stubResolver) ResolveIdentity(_ context.Context, userID string) (*Identity, error) {
	if id, ok := r[userID]; ok {
		return id, nil
	}
	return nil, fmt.Errorf("resolve: %w", core.ErrNotFound)
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body core.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error == nil {
		return ""
	}
	return body.Error.Code
}

func TestAuthenticator(t *testing.T) {
	verifier := stubVerifier{claims: map[string]*SessionClaims{
		"good":    {UserID: "u1", TokenVersion: 2},
		"stale":   {UserID: "u1", TokenVersion: 1},
		"orphan":  {UserID: "gone", TokenVersion: 1},
		"cookied": {UserID: "u1", TokenVersion: 2},
	}}
	resolver := stubResolver{"u1": {UserID: "u1", Email: "ana@example.com", TokenVersion: 2}}

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantStatus int
		wantCode   string
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"bearer", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer good")
		}, http.StatusOK, ""},
		{"cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "session", Value: "cookied"})
		}, http.StatusOK, ""},
		{"non bearer scheme", func(r *http.Request) {
			r.Header.Set("Authorization", "Basic good")
		}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unknown token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer forged")
		}, http.StatusUnauthorized, "SESSION_INVALID"},
		{"stale version", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer stale")
		}, http.StatusUnauthorized, "TOKEN_REVOKED"},
		{"deleted user", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer orphan")
		}, http.StatusUnauthorized, "SESSION_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *Identity
			h := Authenticator(verifier, resolver)(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					seen = CurrentIdentity(r.Context())
					if CurrentClaims(r.Context()) == nil {
						t.Error("claims missing from context")
					}
					w.WriteHeader(http.StatusOK)
				},
			))

			req := httptest.NewRequest(http.MethodGet, "/v1/cats", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if seen == nil || seen.UserID != "u1" {
					t.Errorf("identity = %+v", seen)
				}
				return
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestAuthenticatorExpiredSession(t *testing.T) {
	verifier := stubVerifier{err: fmt.Errorf("verify: %w", core.ErrTokenExpired)}
	h := Authenticator(verifier, stubResolver{})(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if code := errorCode(t, rec); code != "SESSION_EXPIRED" {
		t.Errorf("code = %q, want SESSION_EXPIRED", code)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		identity   *Identity
		wantStatus int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"member", &Identity{UserID: "u1"}, http.StatusForbidden},
		{"admin", &Identity{UserID: "u2", IsAdmin: true}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodGet, "/v1/admin/cats", nil)
			if tt.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), tt.identity))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
