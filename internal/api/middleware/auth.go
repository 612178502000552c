package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/arise-roster/internal/api/apierr"
	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/services/auth"
)

// SessionCookie is the name of the session cookie
const SessionCookie = "roster_session"

type contextKey string

const sessionContextKey contextKey = "session"

// Auth rejects requests without a valid session
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := authService.ValidateSession(r.Context(), token)
			if err != nil {
				if errors.Is(err, model.ErrSessionExpired) {
					ClearSessionCookie(w, false)
				}
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// OptionalAuth attaches the session if one is valid and otherwise lets the
// request through anonymously
func OptionalAuth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := ExtractToken(r); token != "" {
				if session, err := authService.ValidateSession(r.Context(), token); err == nil {
					r = r.WithContext(WithSession(r.Context(), session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ExtractToken returns the bearer token or, failing that, the session cookie
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := r.Cookie(SessionCookie)
	if err == nil {
		return cookie.Value
	}

	return ""
}

// SetSessionCookie issues the session cookie
func SetSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// WithSession returns ctx carrying session
func WithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// GetSession returns the session from the request context, or nil
func GetSession(ctx context.Context) *model.Session {
	session, _ := ctx.Value(sessionContextKey).(*model.Session)
	return session
}

// MustGetSession returns the session or panics
func MustGetSession(ctx context.Context) *model.Session {
	session := GetSession(ctx)
	if session == nil {
		panic("no session in context - auth middleware not applied?")
	}
	return session
}
