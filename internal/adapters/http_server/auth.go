package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"travel_cms/internal/domain"
)

const sessionCookie = "session"

type authKey struct{}

// authFrom returns the caller resolved by Authenticate; anonymous otherwise.
func authFrom(r *http.Request) domain.AuthContext {
	if ac, ok := r.Context().Value(authKey{}).(domain.AuthContext); ok {
		return ac
	}
	return domain.Anonymous()
}

func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// principals re-reads the stored user for a verified session.
type principals interface {
	Current(ctx context.Context, p domain.Principal) (domain.Principal, error)
}

// Authenticate resolves the session token into an AuthContext. The role comes
// from the user directory, not the token, so demotions apply to live sessions.
// A bad or expired token, or a user that no longer resolves, leaves the
// request anonymous.
func Authenticate(sessions domain.Sessions, users principals) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := domain.Anonymous()
			if tok := sessionToken(r); tok != "" {
				ac = resolve(r, sessions, users, tok)
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authKey{}, ac)))
		})
	}
}

func resolve(r *http.Request, sessions domain.Sessions, users principals, tok string) domain.AuthContext {
	p, err := sessions.Verify(tok)
	if err != nil {
		log.Debug().Err(err).Str("route", routeOf(r)).Msg("session rejected")
		return domain.Anonymous()
	}
	cur, err := users.Current(r.Context(), p)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		log.Debug().Str("user_id", p.UserID).Msg("session for unknown user")
		return domain.Anonymous()
	case err != nil:
		log.Warn().Err(err).Str("user_id", p.UserID).Msg("session user lookup failed")
		return domain.Anonymous()
	}
	return domain.Authenticated(cur)
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// RequireAdmin gates the admin area. Browsers are redirected, API clients get a problem.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac := authFrom(r)
		switch {
		case !ac.IsAuthenticated():
			if wantsHTML(r) {
				http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
				return
			}
			writeProblem(w, http.StatusUnauthorized, "Unauthorized", domain.ErrUnauthenticated.Error())
		case !ac.IsAdmin():
			if wantsHTML(r) {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			writeProblem(w, http.StatusForbidden, "Forbidden", domain.ErrNotAuthorized.Error())
		default:
			next.ServeHTTP(w, r)
		}
	})
}
