package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Kayushan/JSTREAM/internal/users"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	session, err := s.userService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		s.logger.Error().Err(err).Msg("login failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	c.SetCookie(&http.Cookie{
		Name:     users.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, map[string]interface{}{"session": session})
}

func (s *Server) logout(c echo.Context) error {
	// The cookie is cleared before revocation is attempted, so the
	// browser ends up signed out even when the delete fails.
	c.SetCookie(&http.Cookie{
		Name:     users.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	token := users.ExtractToken(c.Request())
	if token != "" {
		if session := s.userService.GetSession(c.Request().Context(), token); session != nil {
			s.previews.Drop(session.ID)
		}
		if err := s.userService.SignOut(c.Request().Context(), token); err != nil {
			s.logger.Error().Err(err).Msg("logout failed")
			return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "signed out"})
}

// getSession reports the current session, or a null session when the
// request carries no valid token. Missing sessions are not errors.
func (s *Server) getSession(c echo.Context) error {
	token := users.ExtractToken(c.Request())
	if token == "" {
		return c.JSON(http.StatusOK, map[string]interface{}{"session": nil})
	}

	session := s.userService.GetSession(c.Request().Context(), token)
	if session == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"session": nil})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"session": session})
}
