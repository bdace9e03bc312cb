// internal/httpserver/routes_auth.go
//
// Account endpoints and the auth middleware.
//   - POST /api/register → validate, create user, sign JWT, set cookie (201)
//   - POST /api/login    → verify password, sign JWT, set cookie
//   - POST /api/logout   → clear cookie (auth required)
//   - GET  /api/user     → current user (auth required)

package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/robalobadob/battleship/internal/auth"
	"github.com/robalobadob/battleship/internal/store"
)

// ctxIdentityKey is the context key type for the authenticated identity.
type ctxIdentityKey struct{}

func identityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(ctxIdentityKey{}).(auth.Identity)
	return id, ok
}

type sessionRes struct {
	User  *auth.User `json:"user"`
	Token string     `json:"token"`
}

func (s *Server) mountAuth(r chi.Router) {
	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	r.With(s.requireAuth).Post("/logout", s.handleLogout)
	r.With(s.requireAuth).Get("/user", s.handleUser)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if !s.bind(w, r, &in) {
		return
	}
	u, err := s.svc.Accounts.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.startSession(w, r, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if !s.bind(w, r, &in) {
		return
	}
	u, err := s.svc.Accounts.Authenticate(r.Context(), in.Username, in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.startSession(w, r, http.StatusOK, u)
}

// startSession signs a token for u, sets the auth cookie and writes the
// session response.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, status int, u *auth.User) {
	tok, exp, err := s.opts.Signer.Sign(u.ID, u.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.setAuthCookie(w, tok, exp)
	writeJSON(w, status, sessionRes{User: u, Token: tok})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	writeMessage(w, http.StatusOK, "Logged out.")
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	me, _ := identityFrom(r.Context())
	u, err := s.svc.Accounts.User(r.Context(), me.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ------------------------------ cookies ------------------------------------

func (s *Server) cookie(value string) *http.Cookie {
	c := &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if c.Secure {
		c.SameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	return c
}

// setAuthCookie writes the auth token cookie.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	c := s.cookie(token)
	c.Expires = exp
	http.SetCookie(w, c)
}

// clearAuthCookie deletes the auth token cookie.
func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	c := s.cookie("")
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- auth middleware ------------------------------

// requireAuth enforces a valid JWT for a user that still exists and puts the
// identity into the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := s.bearerOrCookie(r)
		if tok == "" {
			writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		id, err := s.opts.Signer.Parse(tok)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Invalid token.")
			return
		}
		if _, err := s.svc.Accounts.User(r.Context(), id.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeMessage(w, http.StatusUnauthorized, "Invalid token.")
				return
			}
			writeError(w, r, err)
			return
		}
		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("user", id.ID)
		})
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxIdentityKey{}, id)))
	})
}
