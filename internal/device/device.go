// Package device classifies requests as desktop or mobile so watch
// routes and the embedded client agree on which surface to serve.
package device

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Kayushan/JSTREAM/internal/catalog"
)

// Mode is the resolved device class for a request.
type Mode string

const (
	ModeDesktop Mode = "desktop"
	ModeMobile  Mode = "mobile"
)

// Viewport widths at or below this are treated as mobile.
const MobileWidthMax = 768

// contextKey is the echo context key the middleware stores the Mode under.
const contextKey = "device_mode"

var mobileUA = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

// Resolve classifies a request from its user agent and viewport width.
// Width 0 means unknown and leaves the decision to the user agent alone.
func Resolve(userAgent string, viewportWidth int) Mode {
	if mobileUA.MatchString(userAgent) {
		return ModeMobile
	}
	if viewportWidth > 0 && viewportWidth <= MobileWidthMax {
		return ModeMobile
	}
	return ModeDesktop
}

// Middleware resolves the device mode once per request and stores it on
// the echo context. The browser client reports its viewport width in
// the X-Viewport-Width header (or a vw query parameter as fallback).
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			width := 0
			raw := c.Request().Header.Get("X-Viewport-Width")
			if raw == "" {
				raw = c.QueryParam("vw")
			}
			if raw != "" {
				if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
					width = parsed
				}
			}

			c.Set(contextKey, Resolve(c.Request().UserAgent(), width))
			return next(c)
		}
	}
}

// FromContext returns the mode the middleware resolved, defaulting to
// desktop when the middleware did not run.
func FromContext(c echo.Context) Mode {
	if mode, ok := c.Get(contextKey).(Mode); ok {
		return mode
	}
	return ModeDesktop
}

// WatchPath returns the client route for playing a title on the given
// device surface.
func WatchPath(mode Mode, mediaType catalog.MediaType, id int) string {
	if mode == ModeMobile {
		return fmt.Sprintf("/mobile/watch/%s/%d", mediaType, id)
	}
	return fmt.Sprintf("/watch/%s/%d", mediaType, id)
}

// EpisodeWatchPath returns the client route for playing a specific
// episode of a show.
func EpisodeWatchPath(mode Mode, id, season, episode int) string {
	if mode == ModeMobile {
		return fmt.Sprintf("/mobile/watch/tv/%d/%d/%d", id, season, episode)
	}
	return fmt.Sprintf("/watch/tv/%d/%d/%d", id, season, episode)
}
