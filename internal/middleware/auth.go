// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/catclube/registry/internal/core"
)

const (
	identityKey contextKey = "identity"
	claimsKey   contextKey = "session_claims"
)

type SessionClaims struct {
	UserID       string
	TokenID      string
	TokenVersion int
	ExpiresAt    time.Time
}

type TokenVerifier interface {
	VerifySessionToken(ctx context.Context, token string) (*SessionClaims, error)
	CookieName() string
}

// Identity is the acting user, loaded from storage once per request.
type Identity struct {
	UserID       string
	Email        string
	Name         string
	IsAdmin      bool
	TokenVersion int
}

type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID string) (*Identity, error)
}

// Authenticator verifies the session token from the Authorization header or
// the session cookie and stores the resolved Identity in the request context.
// Tokens minted before the user's last credential change are refused.
func Authenticator(
	verifier TokenVerifier,
	resolver IdentityResolver,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r, verifier.CookieName())
			if token == "" {
				core.JSONError(w, core.UnauthorizedError("missing session token"))
				return
			}

			claims, err := verifier.VerifySessionToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			identity, err := resolver.ResolveIdentity(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					core.JSONError(w, core.SessionInvalidError())
					return
				}
				core.WriteError(w, r, err)
				return
			}

			if claims.TokenVersion < identity.TokenVersion {
				slog.InfoContext(r.Context(), "stale session rejected",
					"user_id", identity.UserID,
				)
				core.JSONError(w, core.TokenRevokedError())
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			ctx = context.WithValue(ctx, claimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after Authenticator.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := CurrentIdentity(r.Context())

		if identity == nil {
			core.JSONError(w, core.UnauthorizedError("authentication required"))
			return
		}

		if !identity.IsAdmin {
			core.JSONError(w, core.ForbiddenError("administrator access required"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ExtractToken prefers a bearer token and falls back to the named cookie.
func ExtractToken(r *http.Request, cookieName string) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookieName == "" {
		return ""
	}

	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.SessionExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	default:
		core.JSONError(w, core.SessionInvalidError())
	}
}

func CurrentIdentity(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(identityKey).(*Identity); ok {
		return identity
	}
	return nil
}

func CurrentClaims(ctx context.Context) *SessionClaims {
	if claims, ok := ctx.Value(claimsKey).(*SessionClaims); ok {
		return claims
	}
	return nil
}

// WithIdentity returns ctx carrying identity; used by background callers
// and tests that bypass the HTTP guard.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
