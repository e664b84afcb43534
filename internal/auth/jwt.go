// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/catclube/registry/internal/config"
	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/middleware"
)

const (
	sessionTokenType = "session"

	claimType         = "typ"
	claimTokenVersion = "ver"
)

// JWTManager signs and verifies the ES256 session tokens that carry the
// member id between requests.
type JWTManager struct {
	privateKey  jwk.Key
	publicKey   jwk.Key
	publicJWKS  jwk.Set
	keyID       string
	config      config.SessionConfig
	revocations RevocationList
}

func NewJWTManager(
	cfg config.SessionConfig,
	revocations RevocationList,
) (*JWTManager, error) {
	pemBytes, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	key, err := jwk.ParseKey(pemBytes, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return newJWTManager(key, cfg, revocations)
}

// NewEphemeralJWTManager signs with a freshly generated key that lives only
// in memory. Sessions do not survive a restart.
func NewEphemeralJWTManager(
	cfg config.SessionConfig,
	revocations RevocationList,
) (*JWTManager, error) {
	key, err := newSigningKey()
	if err != nil {
		return nil, err
	}
	return newJWTManager(key, cfg, revocations)
}

func newSigningKey() (jwk.Key, error) {
	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	key, err := jwk.Import(raw)
	if err != nil {
		return nil, fmt.Errorf("import key: %w", err)
	}
	return key, nil
}

// keyIDFor derives the kid from the RFC 7638 thumbprint, so a key loaded
// from disk keeps its id across restarts.
func keyIDFor(key jwk.Key) (string, error) {
	sum, err := key.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("key thumbprint: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(sum[:12]), nil
}

func newJWTManager(
	privateKey jwk.Key,
	cfg config.SessionConfig,
	revocations RevocationList,
) (*JWTManager, error) {
	keyID, err := keyIDFor(privateKey)
	if err != nil {
		return nil, err
	}

	for name, value := range map[string]any{
		jwk.AlgorithmKey: jwa.ES256(),
		jwk.KeyIDKey:     keyID,
	} {
		if setErr := privateKey.Set(name, value); setErr != nil {
			return nil, fmt.Errorf("set %s: %w", name, setErr)
		}
	}

	publicKey, err := privateKey.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	if setErr := publicKey.Set(jwk.KeyUsageKey, "sig"); setErr != nil {
		return nil, fmt.Errorf("set key usage: %w", setErr)
	}

	publicJWKS := jwk.NewSet()
	if addErr := publicJWKS.AddKey(publicKey); addErr != nil {
		return nil, fmt.Errorf("add key to set: %w", addErr)
	}

	if revocations == nil {
		revocations = NewMemoryRevocationList()
	}

	return &JWTManager{
		privateKey:  privateKey,
		publicKey:   publicKey,
		publicJWKS:  publicJWKS,
		keyID:       keyID,
		config:      cfg,
		revocations: revocations,
	}, nil
}

// GenerateKeyPair writes a new P-256 key pair as PEM: the private key
// readable by the owner only, the public key world-readable.
func GenerateKeyPair(privateKeyPath, publicKeyPath string) error {
	key, err := newSigningKey()
	if err != nil {
		return err
	}

	privatePEM, err := jwk.Pem(key)
	if err != nil {
		return fmt.Errorf("encode private key: %w", err)
	}

	public, err := key.PublicKey()
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}
	publicPEM, err := jwk.Pem(public)
	if err != nil {
		return fmt.Errorf("encode public key: %w", err)
	}

	if err := os.WriteFile(privateKeyPath, privatePEM, 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}
	//nolint:gosec // G306: public key is meant to be readable
	if err := os.WriteFile(publicKeyPath, publicPEM, 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}
	return nil
}

type IssuedSession struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// CreateSessionToken signs a session for user. Only the id and the
// credential version travel in the token; admin rights are looked up on
// every request.
func (m *JWTManager) CreateSessionToken(user *UserInfo) (*IssuedSession, error) {
	now := time.Now()
	session := &IssuedSession{
		TokenID:   uuid.New().String(),
		ExpiresAt: now.Add(m.config.Expire),
	}

	token, err := jwt.NewBuilder().
		JwtID(session.TokenID).
		Issuer(m.config.Issuer).
		Audience([]string{m.config.Audience}).
		Subject(user.ID).
		IssuedAt(now).
		NotBefore(now).
		Expiration(session.ExpiresAt).
		Claim(claimType, sessionTokenType).
		Claim(claimTokenVersion, user.TokenVersion).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), m.privateKey))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	session.Token = string(signed)
	return session, nil
}

func (m *JWTManager) VerifySessionToken(
	ctx context.Context,
	raw string,
) (*middleware.SessionClaims, error) {
	token, err := m.parse(raw)
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}

	claims, err := sessionClaims(token)
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}

	revoked, err := m.revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("verify session: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}

// parse verifies the signature and registered claims. A correctly signed
// token that failed validation is re-read without it to tell expiry apart
// from other failures.
func (m *JWTManager) parse(raw string) (jwt.Token, error) {
	opts := []jwt.ParseOption{
		jwt.WithKey(jwa.ES256(), m.publicKey),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
	}

	token, err := jwt.Parse([]byte(raw), append(opts, jwt.WithValidate(true))...)
	if err == nil {
		return token, nil
	}

	signed, sigErr := jwt.Parse([]byte(raw), append(opts, jwt.WithValidate(false))...)
	if sigErr == nil {
		if exp, ok := signed.Expiration(); ok && !exp.After(time.Now()) {
			return nil, core.ErrTokenExpired
		}
	}
	return nil, core.ErrTokenInvalid
}

func sessionClaims(token jwt.Token) (*middleware.SessionClaims, error) {
	var typ string
	if err := token.Get(claimType, &typ); err != nil || typ != sessionTokenType {
		return nil, fmt.Errorf("token type: %w", core.ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf("missing subject: %w", core.ErrTokenInvalid)
	}

	tokenID, ok := token.JwtID()
	if !ok || tokenID == "" {
		return nil, fmt.Errorf("missing token id: %w", core.ErrTokenInvalid)
	}

	// JSON numbers come back as float64.
	var version float64
	if err := token.Get(claimTokenVersion, &version); err != nil {
		return nil, fmt.Errorf("missing version: %w", core.ErrTokenInvalid)
	}

	expiresAt, _ := token.Expiration()

	return &middleware.SessionClaims{
		UserID:       subject,
		TokenID:      tokenID,
		TokenVersion: int(version),
		ExpiresAt:    expiresAt,
	}, nil
}

func (m *JWTManager) Revoke(ctx context.Context, claims *middleware.SessionClaims) error {
	if claims == nil {
		return errors.New("revoke session: no claims")
	}
	return m.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
}

func (m *JWTManager) CookieName() string {
	return m.config.CookieName
}

// GetJWKSHandler publishes the verification key for other services.
func (m *JWTManager) GetJWKSHandler() http.HandlerFunc {
	body, err := json.Marshal(m.publicJWKS)
	return func(w http.ResponseWriter, _ *http.Request) {
		if err != nil {
			core.JSONError(w, fmt.Errorf("encode jwks: %w", err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		//nolint:errcheck // best-effort response write
		_, _ = w.Write(body)
	}
}

func (m *JWTManager) GetKeyID() string {
	return m.keyID
}

var _ middleware.TokenVerifier = (*JWTManager)(nil)
