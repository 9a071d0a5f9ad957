package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/robalobadob/hero-of-habits/internal/store"
)

func newTestManager() *Manager {
	return NewManager(store.NewMemory(), Config{Secret: "test-secret", TTL: time.Hour, CookieName: "tok"})
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	s, err := m.SignUp(ctx, SignUpInput{Email: "  Ben@Example.com ", Password: "omnitrix10", FirstName: "Ben"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if s.User.Email != "ben@example.com" || s.Token == "" || s.User.PasswordHash == "omnitrix10" {
		t.Fatalf("session = %+v", s)
	}

	if _, err := m.SignUp(ctx, SignUpInput{Email: "ben@example.com", Password: "different1"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate sign-up err = %v", err)
	}

	in, err := m.SignIn(ctx, "BEN@example.com", "omnitrix10")
	if err != nil || in.User.ID != s.User.ID {
		t.Fatalf("SignIn = %+v, %v", in, err)
	}
	if _, err := m.SignIn(ctx, "ben@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := m.SignIn(ctx, "nobody@example.com", "omnitrix10"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v", err)
	}
}

func TestSignUpValidation(t *testing.T) {
	m := newTestManager()
	for _, in := range []SignUpInput{
		{Email: "not-an-email", Password: "longenough"},
		{Email: "a@b.co", Password: "short"},
		{Email: "", Password: "longenough"},
	} {
		if _, err := m.SignUp(context.Background(), in); err == nil {
			t.Fatalf("SignUp(%+v) should fail", in)
		}
	}
}

func TestTokens(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	s, err := m.SignUp(ctx, SignUpInput{Email: "gwen@example.com", Password: "spellbook"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	claims, err := m.ParseToken(s.Token)
	if err != nil || claims.Subject != s.User.ID || claims.Email != "gwen@example.com" {
		t.Fatalf("ParseToken = %+v, %v", claims, err)
	}
	u, err := m.CurrentUser(ctx, s.Token)
	if err != nil || u.ID != s.User.ID {
		t.Fatalf("CurrentUser = %+v, %v", u, err)
	}

	other := NewManager(store.NewMemory(), Config{Secret: "another-secret"})
	if _, err := other.ParseToken(s.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign secret err = %v", err)
	}
	if _, err := other.CurrentUser(ctx, "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token err = %v", err)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := m.ParseToken(s.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token err = %v", err)
	}
}

func TestTokenFromRequestAndCookies(t *testing.T) {
	m := newTestManager()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer abc.def")
	if got := m.TokenFromRequest(r); got != "abc.def" {
		t.Fatalf("bearer token = %q", got)
	}

	w := httptest.NewRecorder()
	m.SetCookie(w, &Session{Token: "cookie-token", ExpiresAt: time.Now().Add(time.Hour)})
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "tok" || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	if got := m.TokenFromRequest(r); got != "cookie-token" {
		t.Fatalf("cookie token = %q", got)
	}

	w = httptest.NewRecorder()
	m.ClearCookie(w)
	if c := w.Result().Cookies(); len(c) != 1 || c[0].MaxAge >= 0 {
		t.Fatalf("clear cookie = %+v", c)
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if UserIDFromContext(ctx) != "" {
		t.Fatalf("empty context should have no user")
	}
	if got := UserIDFromContext(WithUserID(ctx, "u1")); got != "u1" {
		t.Fatalf("UserIDFromContext = %q", got)
	}
}
