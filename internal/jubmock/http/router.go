package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/openjub/internal/jubmock/service"
	"github.com/aussiebroadwan/openjub/pkg/httpx"
	"github.com/aussiebroadwan/openjub/pkg/slogx"
	"github.com/go-chi/cors"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	publicURL    string
	trustProxy   bool
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	Directory *service.DirectoryService
	Tokens    *service.TokenService
	Campus    *service.CampusService
}

// NewRouter builds a router. publicURL is the absolute base used in paging
// links; when empty it is derived from each request.
func NewRouter(publicURL, buildVersion string, trustProxy bool, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		publicURL:    publicURL,
		trustProxy:   trustProxy,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		corsMiddleware(),
	}

	return r
}

// corsMiddleware lets browser clients on any origin call the API. Tokens
// travel in the query string, so credentials are never needed.
func corsMiddleware() httpx.Middleware {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", slogx.RequestIDHeader},
		ExposedHeaders:   []string{slogx.RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerDirectory()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) directoryLimit() httpx.Middleware {
	return httpx.RateLimitMiddleware(httpx.DirectoryLimit,
		httpx.CompositeKeyExtractor("|", httpx.IPKeyExtractor, httpx.QueryKeyExtractor("token")),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Directory:  r.Directory,
		Tokens:     r.Tokens,
		Campus:     r.Campus,
		TrustProxy: r.trustProxy,
	}

	// Credential checks are brute-force targets.
	r.Mux.Handle("POST /auth/signin",
		httpx.Chain(http.HandlerFunc(h.SignIn),
			httpx.RateLimitByIP(httpx.SignInLimit),
		),
	)

	r.Mux.HandleFunc("GET /auth/signout", h.SignOut)
	r.Mux.HandleFunc("GET /auth/status", h.Status)
	r.Mux.HandleFunc("GET /auth/isoncampus", h.IsOnCampus)
}

func (r *Router) registerUsers() {
	h := &UserHandler{Directory: r.Directory, Tokens: r.Tokens}
	limit := r.directoryLimit()

	r.Mux.Handle("GET /user/me", httpx.Chain(http.HandlerFunc(h.Me), limit))
	r.Mux.Handle("GET /user/id/{id}", httpx.Chain(http.HandlerFunc(h.ByID), limit))
	r.Mux.Handle("GET /user/name/{name}", httpx.Chain(http.HandlerFunc(h.ByName), limit))
}

func (r *Router) registerDirectory() {
	limit := r.directoryLimit()

	for _, kind := range []string{KindQuery, KindSearch} {
		h := &ListHandler{
			Kind:      kind,
			Directory: r.Directory,
			Tokens:    r.Tokens,
			PublicURL: r.publicURL,
		}
		r.Mux.Handle("GET /"+kind+"/{expr}", httpx.Chain(h, limit))
	}
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.HandleFunc("GET /view/login", LoginPageHandler)
}
