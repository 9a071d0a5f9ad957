// internal/auth/auth.go
//
// Identity for the game server.
// Responsibilities:
//   - Sign up / sign in against the Users store (bcrypt password hashes).
//   - Issue and verify HS256 JWTs carrying the user id as subject.
//   - Token transport: Authorization bearer header or an HttpOnly cookie.
//   - Carry the authenticated user id through request contexts.
//
// Notes:
//   - Sign-out is cookie clearing; tokens are stateless.
//   - Emails are trimmed and lower-cased before every lookup.

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/hero-of-habits/internal/store"
)

// Redirect targets returned by sign-in and sign-out.
const (
	RedirectAfterSignIn  = "/profile"
	RedirectAfterSignOut = "/auth/login"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
)

// Config controls token lifetime and cookie attributes.
type Config struct {
	Secret        string
	TTL           time.Duration
	CookieName    string
	SecureCookies bool
}

// Claims are the JWT claims issued at sign-in. Subject holds the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SignUpInput is the payload accepted by SignUp.
type SignUpInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=100"`
	FirstName string `json:"firstName" validate:"max=60"`
	LastName  string `json:"lastName" validate:"max=60"`
}

// Session is a freshly issued token.
type Session struct {
	User      *store.User
	Token     string
	ExpiresAt time.Time
}

// Manager implements sign up, sign in and token verification.
type Manager struct {
	users    store.Users
	cfg      Config
	validate *validator.Validate
	now      func() time.Time
}

// NewManager builds a Manager. Empty config fields get development defaults.
func NewManager(users store.Users, cfg Config) *Manager {
	if cfg.Secret == "" {
		cfg.Secret = "dev_secret_change_me"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 14 * 24 * time.Hour
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "hoh_token"
	}
	return &Manager{users: users, cfg: cfg, validate: validator.New(), now: time.Now}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// SignUp validates input, stores a new user and issues a token.
func (m *Manager) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := m.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid sign-up: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &store.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	if err := m.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return m.issue(u)
}

// SignIn checks the password and issues a token.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	u, err := m.users.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return m.issue(u)
}

func (m *Manager) issue(u *store.User) (*Session, error) {
	now := m.now()
	exp := now.Add(m.cfg.TTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := t.SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: ss, ExpiresAt: exp}, nil
}

// ParseToken verifies signature and expiry and returns the claims.
func (m *Manager) ParseToken(tok string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(m.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !t.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CurrentUser resolves a token to a stored user. A valid token for a deleted
// user is rejected.
func (m *Manager) CurrentUser(ctx context.Context, tok string) (*store.User, error) {
	claims, err := m.ParseToken(tok)
	if err != nil {
		return nil, err
	}
	u, err := m.users.UserByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return u, err
}

// ------------------------------ transport ----------------------------------

// TokenFromRequest extracts a bearer token or the auth cookie.
func (m *Manager) TokenFromRequest(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(m.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// SetCookie writes the auth cookie.
func (m *Manager) SetCookie(w http.ResponseWriter, s *Session) {
	http.SetCookie(w, m.cookie(s.Token, s.ExpiresAt, 0))
}

// ClearCookie deletes the auth cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie("", time.Time{}, -1))
}

func (m *Manager) cookie(value string, exp time.Time, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if m.cfg.SecureCookies {
		sameSite = http.SameSiteNoneMode // cross-site requests need None + Secure
	}
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.SecureCookies,
		SameSite: sameSite,
		Expires:  exp,
		MaxAge:   maxAge,
	}
}

// ------------------------------- context -----------------------------------

type ctxUserKey struct{}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, userID)
}

// UserIDFromContext returns the authenticated user id, or "" for guests.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxUserKey{}).(string)
	return id
}
