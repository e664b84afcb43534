// AngelaMos | 2026
// routes.go

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/catclube/registry/internal/admin"
	"github.com/catclube/registry/internal/auth"
	"github.com/catclube/registry/internal/cat"
	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/metrics"
	"github.com/catclube/registry/internal/middleware"
	"github.com/catclube/registry/internal/reset"
	"github.com/catclube/registry/internal/taxonomy"
	"github.com/catclube/registry/internal/user"
)

// Routes is everything the versioned API needs.
type Routes struct {
	Sessions   *auth.JWTManager
	Identities middleware.IdentityResolver

	Auth     *auth.Handler
	Users    *user.Handler
	Reset    *reset.Handler
	Cats     *cat.Handler
	Taxonomy *taxonomy.Handler
	Admin    *admin.Handler

	// CredentialLimiter guards login, registration and reset redemption.
	CredentialLimiter func(http.Handler) http.Handler
	// MetricsPath exposes Prometheus when non-empty.
	MetricsPath string
}

// Mount adds the JWKS document, the metrics endpoint and /v1.
//
//	/v1/auth/*            public + session
//	/v1/password-reset/*  public, rate limited
//	/v1/cats, /v1/breeds  member session
//	/v1/admin/*           member session + admin flag
func (s *Server) Mount(rt Routes) {
	if rt.MetricsPath != "" {
		metrics.MustRegister()
		s.router.Handle(rt.MetricsPath, metrics.Handler())
	}

	s.router.Get("/.well-known/jwks.json", rt.Sessions.GetJWKSHandler())

	limiter := rt.CredentialLimiter
	if limiter == nil {
		limiter = passthrough
	}
	authenticator := middleware.Authenticator(rt.Sessions, rt.Identities)

	s.router.Route("/v1", func(r chi.Router) {
		rt.Auth.RegisterRoutes(r, authenticator, limiter)
		rt.Reset.RegisterRoutes(r, limiter)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			rt.Cats.RegisterRoutes(r)
			rt.Taxonomy.RegisterRoutes(r)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				rt.Cats.RegisterAdminRoutes(r)
				rt.Taxonomy.RegisterAdminRoutes(r)
				rt.Users.RegisterAdminRoutes(r, rt.Reset.RegisterUserRoutes)
				rt.Admin.RegisterRoutes(r)
			})
		})
	})
}

func passthrough(next http.Handler) http.Handler {
	return next
}

func writeRouteError(w http.ResponseWriter, status int, code, message string) {
	core.JSON(w, status, core.Response{
		Error: &core.ErrorBody{Code: code, Message: message},
	})
}
