// AngelaMos | 2026
// server_test.go

package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/catclube/registry/internal/auth"
	"github.com/catclube/registry/internal/config"
	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/health"
	"github.com/catclube/registry/internal/server"
	"github.com/catclube/registry/internal/storage"
	"github.com/catclube/registry/internal/storage/memory"
	"github.com/catclube/registry/internal/user"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-secret"
)

type outbox struct {
	mu   sync.Mutex
	sent []string
}

func (o *outbox) Dispatch(_ context.Context, to, _, _ string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, to)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   *core.ErrorBody `json:"error"`
}

type client struct {
	t       *testing.T
	handler http.Handler
}

func (c client) do(method, path, token string, body any) (int, envelope) {
	c.t.Helper()

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
		payload = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:4000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			c.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, env
}

func (c client) expect(method, path, token string, body any, want int) envelope {
	c.t.Helper()
	status, env := c.do(method, path, token, body)
	if status != want {
		c.t.Fatalf("%s %s = %d (%+v), want %d", method, path, status, env.Error, want)
	}
	return env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return out
}

func newClient(t *testing.T) (client, *outbox) {
	t.Helper()

	store := memory.New()
	backend := storage.Memory(store)

	hash, err := core.HashPassword(adminPassword)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := store.Users().Create(context.Background(), &user.User{
		ID:           "0b6f3c1e-3d1a-4c55-9a7e-8d9c0b1a2f30",
		Email:        adminEmail,
		PasswordHash: hash,
		Profile:      user.Profile{Name: "Club Admin"},
		IsAdmin:      true,
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	validate, err := server.NewValidator()
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}

	sessionCfg := config.SessionConfig{
		Expire:     time.Hour,
		Issuer:     "catclub-test",
		Audience:   "catclub-test",
		CookieName: "catclub_session",
	}
	sessions, err := auth.NewEphemeralJWTManager(sessionCfg, nil)
	if err != nil {
		t.Fatalf("NewEphemeralJWTManager() error = %v", err)
	}

	mail := &outbox{}
	srv := server.New(server.Config{
		ServerConfig:  config.ServerConfig{Host: "127.0.0.1", Port: 0},
		HealthHandler: health.NewHandler(health.Dependency{Name: "storage", Checker: backend}),
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	srv.Mount(server.NewRoutes(server.Deps{
		Backend:  backend,
		Sessions: sessions,
		Validate: validate,
		Notifier: mail,
		Session:  sessionCfg,
		Reset:    config.ResetConfig{BaseURL: "https://club.example.com", TokenTTL: time.Hour},
	}))

	return client{t: t, handler: srv.Router()}, mail
}

type session struct {
	User    auth.UserResponse    `json:"user"`
	Session auth.SessionResponse `json:"session"`
}

type catBody struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	OwnerName string `json:"owner_name"`
}

func (c client) login(email, password string) session {
	c.t.Helper()
	env := c.expect(http.MethodPost, "/v1/auth/login", "",
		map[string]string{"email": email, "password": password}, http.StatusOK)
	return decode[session](c.t, env.Data)
}

func (c client) register(email string) session {
	c.t.Helper()
	env := c.expect(http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email":            email,
		"password":         "secret1",
		"password_confirm": "secret1",
		"name":             "Ana Souza",
	}, http.StatusCreated)
	return decode[session](c.t, env.Data)
}

func TestRegistrationAndModerationFlow(t *testing.T) {
	c, _ := newClient(t)

	member := c.register("ana@example.com")
	admin := c.login(adminEmail, adminPassword)
	memberToken := member.Session.Token
	adminToken := admin.Session.Token

	created := decode[catBody](t, c.expect(http.MethodPost, "/v1/cats", memberToken,
		map[string]string{"name": "Mimi", "sex": "Fêmea"}, http.StatusCreated).Data)
	if created.Status != "pending" {
		t.Fatalf("new cat status = %q, want pending", created.Status)
	}

	c.expect(http.MethodGet, "/v1/admin/cats/pending", memberToken, nil, http.StatusForbidden)

	pending := decode[[]catBody](t, c.expect(http.MethodGet, "/v1/admin/cats/pending", adminToken, nil, http.StatusOK).Data)
	if len(pending) != 1 || pending[0].ID != created.ID || pending[0].OwnerName != "Ana Souza" {
		t.Fatalf("pending = %+v", pending)
	}

	c.expect(http.MethodPost, "/v1/admin/cats/"+created.ID+"/approve", adminToken, nil, http.StatusOK)
	c.expect(http.MethodPost, "/v1/admin/cats/"+created.ID+"/approve", adminToken, nil, http.StatusOK)
	c.expect(http.MethodPost, "/v1/admin/cats/"+created.ID+"/reject", adminToken, nil, http.StatusConflict)
	c.expect(http.MethodPost, "/v1/admin/cats/"+created.ID+"/archive", adminToken, nil, http.StatusBadRequest)

	dashboard := decode[[]catBody](t, c.expect(http.MethodGet, "/v1/cats", memberToken, nil, http.StatusOK).Data)
	if len(dashboard) != 1 || dashboard[0].Status != "approved" {
		t.Fatalf("dashboard = %+v, want Mimi approved", dashboard)
	}

	other := c.register("bia@example.com")
	c.expect(http.MethodGet, "/v1/cats/"+created.ID, other.Session.Token, nil, http.StatusNotFound)
	c.expect(http.MethodGet, "/v1/cats/"+created.ID, memberToken, nil, http.StatusOK)
}

func TestGuards(t *testing.T) {
	c, _ := newClient(t)

	env := c.expect(http.MethodGet, "/v1/cats", "", nil, http.StatusUnauthorized)
	if env.Error == nil || env.Error.Code == "" {
		t.Errorf("error body = %+v", env.Error)
	}

	c.expect(http.MethodGet, "/v1/cats", "not-a-token", nil, http.StatusUnauthorized)
	c.expect(http.MethodGet, "/v1/admin/stats", c.register("ana@example.com").Session.Token, nil, http.StatusForbidden)
	c.expect(http.MethodGet, "/v1/nowhere", "", nil, http.StatusNotFound)
	c.expect(http.MethodGet, "/readyz", "", nil, http.StatusOK)
}

func TestLogout(t *testing.T) {
	c, _ := newClient(t)
	token := c.register("ana@example.com").Session.Token

	c.expect(http.MethodGet, "/v1/auth/me", token, nil, http.StatusOK)
	c.expect(http.MethodPost, "/v1/auth/logout", token, nil, http.StatusNoContent)
	c.expect(http.MethodGet, "/v1/auth/me", token, nil, http.StatusUnauthorized)
}

func TestDuplicateRegistration(t *testing.T) {
	c, _ := newClient(t)
	c.register("ana@example.com")

	_, env := c.do(http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email":            "ANA@example.com",
		"password":         "secret1",
		"password_confirm": "secret1",
		"name":             "Ana Again",
	})
	if env.Error == nil || env.Error.Code != "DUPLICATE" {
		t.Errorf("error = %+v, want DUPLICATE", env.Error)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	c, mail := newClient(t)

	member := c.register("ana@example.com")
	adminToken := c.login(adminEmail, adminPassword).Session.Token

	issued := decode[struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	}](t, c.expect(http.MethodPost, "/v1/admin/users/"+member.User.ID+"/password-reset",
		adminToken, nil, http.StatusCreated).Data)

	if len(mail.sent) != 1 || mail.sent[0] != "ana@example.com" {
		t.Errorf("mail = %v", mail.sent)
	}

	c.expect(http.MethodGet, "/v1/password-reset/"+issued.Token, "", nil, http.StatusOK)
	c.expect(http.MethodPost, "/v1/password-reset/"+issued.Token, "",
		map[string]string{"password": "new-secret", "password_confirm": "other"}, http.StatusBadRequest)
	c.expect(http.MethodPost, "/v1/password-reset/"+issued.Token, "",
		map[string]string{"password": "new-secret", "password_confirm": "new-secret"}, http.StatusNoContent)

	env := c.expect(http.MethodPost, "/v1/password-reset/"+issued.Token, "",
		map[string]string{"password": "again1", "password_confirm": "again1"}, http.StatusGone)
	if env.Error.Code != "TOKEN_EXPIRED" {
		t.Errorf("reuse error = %+v", env.Error)
	}
	c.expect(http.MethodGet, "/v1/password-reset/unknown-token", "", nil, http.StatusBadRequest)

	c.expect(http.MethodGet, "/v1/auth/me", member.Session.Token, nil, http.StatusUnauthorized)
	c.login("ana@example.com", "new-secret")

	c.expect(http.MethodPost, "/v1/admin/users/00000000-0000-4000-8000-000000000000/password-reset",
		adminToken, nil, http.StatusNotFound)
}

func TestTaxonomyAdministration(t *testing.T) {
	c, _ := newClient(t)
	adminToken := c.login(adminEmail, adminPassword).Session.Token
	memberToken := c.register("ana@example.com").Session.Token

	type idBody struct {
		ID string `json:"id"`
	}

	breed := decode[idBody](t, c.expect(http.MethodPost, "/v1/admin/breeds", adminToken,
		map[string]string{"name": "Ragdoll"}, http.StatusCreated).Data)
	c.expect(http.MethodPost, "/v1/admin/breeds", adminToken,
		map[string]string{"name": "RAGDOLL"}, http.StatusConflict)

	color := decode[idBody](t, c.expect(http.MethodPost, "/v1/admin/breeds/"+breed.ID+"/colors", adminToken,
		map[string]string{"name": "Seal Point", "ems_code": "RAG n"}, http.StatusCreated).Data)

	colors := decode[[]idBody](t, c.expect(http.MethodGet, "/v1/colors?breed_id="+breed.ID, memberToken, nil, http.StatusOK).Data)
	if len(colors) != 1 || colors[0].ID != color.ID {
		t.Errorf("colors = %+v", colors)
	}
	empty := decode[[]idBody](t, c.expect(http.MethodGet, "/v1/colors?breed_id=nope", memberToken, nil, http.StatusOK).Data)
	if len(empty) != 0 {
		t.Errorf("colors for unknown breed = %+v", empty)
	}

	c.expect(http.MethodPost, "/v1/cats", memberToken,
		map[string]string{"name": "Mimi", "breed_id": breed.ID, "color_id": color.ID}, http.StatusCreated)

	c.expect(http.MethodDelete, "/v1/admin/breeds/"+breed.ID, adminToken, nil, http.StatusConflict)
	c.expect(http.MethodDelete, "/v1/admin/colors/"+color.ID, adminToken, nil, http.StatusConflict)

	stats := decode[struct {
		Members struct {
			Total int `json:"total"`
		} `json:"members"`
		Cats struct {
			Pending int `json:"pending"`
		} `json:"cats"`
	}](t, c.expect(http.MethodGet, "/v1/admin/stats", adminToken, nil, http.StatusOK).Data)
	if stats.Members.Total != 2 || stats.Cats.Pending != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
