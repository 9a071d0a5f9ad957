// internal/httpserver/routes_auth.go
//
// Account endpoints:
//   - POST /auth/signup → create account, set cookie
//   - POST /auth/login  → set cookie, redirectTo /profile
//   - POST /auth/logout → clear cookie, redirectTo /auth/login
//   - GET  /auth/me     → current user (requires auth)

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/hero-of-habits/internal/auth"
	"github.com/robalobadob/hero-of-habits/internal/store"
)

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionRes is returned by signup and login. The token is also set as an
// HttpOnly cookie; clients without cookies send it as a bearer token.
type sessionRes struct {
	User       *store.User `json:"user"`
	Token      string      `json:"token"`
	ExpiresAt  time.Time   `json:"expiresAt"`
	RedirectTo string      `json:"redirectTo"`
}

func (s *Server) mountAuthRoutes() {
	s.r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.With(requireAuth).Get("/me", s.handleMe)
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in auth.SignUpInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.auth.SignUp(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	s.auth.SetCookie(w, sess)
	writeJSON(w, http.StatusCreated, sessionRes{
		User: sess.User, Token: sess.Token, ExpiresAt: sess.ExpiresAt, RedirectTo: auth.RedirectAfterSignIn,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.auth.SignIn(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	s.auth.SetCookie(w, sess)
	writeJSON(w, http.StatusOK, sessionRes{
		User: sess.User, Token: sess.Token, ExpiresAt: sess.ExpiresAt, RedirectTo: auth.RedirectAfterSignIn,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "redirectTo": auth.RedirectAfterSignOut})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.auth.CurrentUser(r.Context(), s.auth.TokenFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
