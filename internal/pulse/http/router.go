package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/pulse/internal/pulse/service"
	"github.com/aussiebroadwan/pulse/internal/pulse/store"
	"github.com/aussiebroadwan/pulse/pkg/httpx"
	"github.com/aussiebroadwan/pulse/pkg/jwtx"
	"github.com/aussiebroadwan/pulse/pkg/slogx"

	_ "github.com/aussiebroadwan/pulse/api/pulse" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store         store.Store
	UserService   *service.UserService
	RolesService  *service.RolesService
	InviteService *service.InviteService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerRoles()
	r.registerAssignments()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Pulse API
//	@version		0.1.0
//	@description	Company, role and sub-role management with role based access control.
//	@description
//	@description				Access tokens are EdDSA signed JWTs and can be verified using the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/pulse
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps h with bearer authentication and a per-user rate limit.
func (r *Router) secured(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{
		UserService:   r.UserService,
		InviteService: r.InviteService,
	}

	// Credential endpoints - strict rate limit by IP
	r.Mux.Handle("POST /v1/users/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup), httpx.RateLimitByIP(httpx.StrictLimit)),
	)
	r.Mux.Handle("POST /v1/users/auth",
		httpx.Chain(http.HandlerFunc(h.HandleAuth), httpx.RateLimitByIP(httpx.StrictLimit)),
	)
	r.Mux.Handle("POST /v1/users/accept-invite",
		httpx.Chain(http.HandlerFunc(h.HandleAcceptInvite), httpx.RateLimitByIP(httpx.StrictLimit)),
	)

	// Invite lookup is unauthenticated; the token is the credential
	r.Mux.Handle("GET /v1/users/invite",
		httpx.Chain(http.HandlerFunc(h.HandleGetInvite), httpx.RateLimitByIP(httpx.ModerateLimit)),
	)

	r.Mux.Handle("GET /v1/users/me", r.secured(h.HandleMe, httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/users/settings", r.secured(h.HandleSettings, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/users/invite", r.secured(h.HandleInvite, httpx.ModerateLimit))
}

func (r *Router) registerRoles() {
	h := &RolesHandler{
		RolesService: r.RolesService,
		UserService:  r.UserService,
	}

	r.Mux.Handle("POST /v1/roles", r.secured(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/roles", r.secured(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/roles/{id}", r.secured(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/roles/{id}", r.secured(h.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/roles/{id}", r.secured(h.HandleDelete, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/roles/{id}/sub-roles", r.secured(h.HandleCreateSubRole, httpx.ModerateLimit))

	r.Mux.Handle("GET /v1/sub-roles/{id}", r.secured(h.HandleGetSubRole, httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/sub-roles/{id}", r.secured(h.HandleUpdateSubRole, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/sub-roles/{id}", r.secured(h.HandleDeleteSubRole, httpx.ModerateLimit))
}

func (r *Router) registerAssignments() {
	h := &RolesHandler{
		RolesService: r.RolesService,
		UserService:  r.UserService,
	}

	// Literal "assignments" segments take precedence over the {id} wildcard
	r.Mux.Handle("POST /v1/roles/assignments", r.secured(h.HandleAssignRole, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/roles/assignments", r.secured(h.HandleRemoveRole, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/sub-roles/assignments", r.secured(h.HandleAssignSubRole, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/sub-roles/assignments", r.secured(h.HandleRemoveSubRole, httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys), httpx.RateLimitByIP(httpx.LenientLimit)),
	)

	// Health checks - lenient, monitoring systems poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion), httpx.RateLimitByIP(httpx.LenientLimit)),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys), httpx.RateLimitByIP(httpx.LenientLimit)),
	)
}
