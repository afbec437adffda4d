package api

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Kayushan/JSTREAM/internal/users"
)

// RegisterFrontend serves the embedded browser client. Every path that
// is not an API route or a real asset falls back to index.html so the
// SPA router can take over.
func (s *Server) RegisterFrontend(distFS fs.FS) {
	fileServer := http.FileServer(http.FS(distFS))

	s.echo.GET("/*", func(c echo.Context) error {
		path := c.Request().URL.Path

		if strings.HasPrefix(path, "/api/") || path == "/ws" {
			return echo.ErrNotFound
		}

		if s.mobileGateRedirect(c, path) {
			return c.Redirect(http.StatusFound, "/login")
		}

		if path != "/" {
			cleanPath := strings.TrimPrefix(path, "/")
			if file, err := distFS.Open(cleanPath); err == nil {
				file.Close()
				fileServer.ServeHTTP(c.Response(), c.Request())
				return nil
			}
		}

		indexFile, err := distFS.Open("index.html")
		if err != nil {
			return echo.ErrNotFound
		}
		defer indexFile.Close()

		if _, err := indexFile.Stat(); err != nil {
			return echo.ErrNotFound
		}

		return c.Stream(http.StatusOK, "text/html; charset=utf-8", indexFile)
	})
}

// mobileGateRedirect reports whether a mobile page request must bounce
// to the login page. Watch deep links pass through; the client gates
// them after loading so the intended title survives the login redirect.
func (s *Server) mobileGateRedirect(c echo.Context, path string) bool {
	if !strings.HasPrefix(path, "/mobile") {
		return false
	}
	if strings.HasPrefix(path, "/mobile/watch") {
		return false
	}

	token := users.ExtractToken(c.Request())
	if token == "" {
		return true
	}
	return s.userService.GetSession(c.Request().Context(), token) == nil
}
