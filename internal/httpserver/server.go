// internal/httpserver/server.go
//
// HTTP server wiring for the Hero of Habits backend.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, timeouts,
//     CORS, JSON content type, request logging + metrics).
//   - Public endpoints: "/", "/health", "/metrics", /catalog/*.
//   - Auth endpoints: /auth/signup, /auth/login, /auth/logout, /auth/me.
//   - Player endpoints (optional auth): progress, levels, missions, boss,
//     scores, achievements, play sessions, habits, parent settings.
//
// Notes:
//   - Optional auth decorates requests with the user id when a valid token is
//     present. Handlers never check for a user themselves; the progression
//     service rejects anonymous callers and the error maps to 401.
//   - CORS is origin-aware and credentials-enabled so cookies work.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/robalobadob/hero-of-habits/internal/auth"
	"github.com/robalobadob/hero-of-habits/internal/metrics"
	"github.com/robalobadob/hero-of-habits/internal/minigame"
	"github.com/robalobadob/hero-of-habits/internal/progression"
)

// Options tunes transport concerns.
type Options struct {
	ClientOrigins  []string
	RequestTimeout time.Duration
}

// Server bundles the router and the services handlers call into.
type Server struct {
	r        *chi.Mux
	svc      *progression.Service
	auth     *auth.Manager
	sessions *minigame.Sessions
	plays    *playResults
}

// New constructs a Server, installs middleware, and registers routes.
func New(svc *progression.Service, am *auth.Manager, sessions *minigame.Sessions, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if len(opts.ClientOrigins) == 0 {
		opts.ClientOrigins = []string{"http://localhost:5173"}
	}
	metrics.Init()

	s := &Server{
		r:        chi.NewRouter(),
		svc:      svc,
		auth:     am,
		sessions: sessions,
		plays:    newPlayResults(),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                      // access log + http metrics
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.RequestTimeout)) // bound handler time
	s.r.Use(corsHandler(opts.ClientOrigins))    // credentials-friendly CORS
	s.r.Use(jsonContentType)                    // default JSON responses
	s.r.Use(s.withOptionalAuth())               // user id in context when signed in

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "hero-of-habits",
			"endpoints": []string{"/health", "/metrics", "/catalog/*", "/auth/*", "/progress", "/levels/*", "/missions/*", "/play/*", "/habits", "/parent/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.mountAuthRoutes()
	s.mountCatalogRoutes()
	s.mountGameRoutes()
	s.mountPlayRoutes()
	s.mountParentRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorCode(w, http.StatusNotFound, codeNotFound, "no route for "+r.URL.Path)
	})

	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsHandler enables credentialed CORS for the configured origins.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler
}

// withOptionalAuth decorates requests with the user id if a valid JWT is
// present. It never 401s.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := s.auth.TokenFromRequest(r); tok != "" {
				if u, err := s.auth.CurrentUser(r.Context(), tok); err == nil {
					r = r.WithContext(auth.WithUserID(r.Context(), u.ID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth rejects requests without an authenticated user.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.UserIDFromContext(r.Context()) == "" {
			writeError(w, progression.ErrNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}
