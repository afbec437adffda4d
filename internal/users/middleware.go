package users

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// SessionCookieName is the cookie the browser client stores its token
// in; the Authorization header takes precedence when both are present.
const SessionCookieName = "jstream_session"

const sessionContextKey = "session"

// ExtractToken pulls the session token from a request, preferring a
// Bearer Authorization header over the session cookie. A non-Bearer
// header is ignored so proxies injecting their own auth scheme do not
// mask the cookie.
func ExtractToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return token
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireSession is echo middleware that rejects requests without an
// active session and stores the session on the context otherwise.
func (s *Service) RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ExtractToken(c.Request())
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			session := s.GetSession(c.Request().Context(), token)
			if session == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}

			c.Set(sessionContextKey, session)
			return next(c)
		}
	}
}

// SessionFromContext returns the session stored by RequireSession, or
// nil when the request is unauthenticated.
func SessionFromContext(c echo.Context) *Session {
	if session, ok := c.Get(sessionContextKey).(*Session); ok {
		return session
	}
	return nil
}
