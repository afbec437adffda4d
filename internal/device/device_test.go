package device

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/Kayushan/JSTREAM/internal/catalog"
)

const (
	iphoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15"
	desktopUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		ua    string
		width int
		want  Mode
	}{
		{"iphone ua", iphoneUA, 0, ModeMobile},
		{"android ua", "Mozilla/5.0 (Linux; Android 14; Pixel 8)", 0, ModeMobile},
		{"opera mini ua", "Opera/9.80 (Android; Opera Mini/7.5)", 0, ModeMobile},
		{"desktop ua wide viewport", desktopUA, 1920, ModeDesktop},
		{"desktop ua narrow viewport", desktopUA, 390, ModeMobile},
		{"desktop ua boundary width", desktopUA, 768, ModeMobile},
		{"desktop ua just above boundary", desktopUA, 769, ModeDesktop},
		{"unknown width stays desktop", desktopUA, 0, ModeDesktop},
		{"mobile ua wins over wide viewport", iphoneUA, 1920, ModeMobile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.ua, tt.width))
		})
	}
}

func TestMiddleware(t *testing.T) {
	e := echo.New()

	run := func(ua, header, query string) Mode {
		target := "/"
		if query != "" {
			target += "?vw=" + query
		}
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("User-Agent", ua)
		if header != "" {
			req.Header.Set("X-Viewport-Width", header)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var got Mode
		handler := Middleware()(func(c echo.Context) error {
			got = FromContext(c)
			return nil
		})
		assert.NoError(t, handler(c))
		return got
	}

	assert.Equal(t, ModeMobile, run(iphoneUA, "", ""))
	assert.Equal(t, ModeDesktop, run(desktopUA, "1280", ""))
	assert.Equal(t, ModeMobile, run(desktopUA, "400", ""))
	assert.Equal(t, ModeMobile, run(desktopUA, "", "500"))
	// Header takes precedence over the query fallback.
	assert.Equal(t, ModeDesktop, run(desktopUA, "1280", "400"))
	// Garbage width hints are ignored.
	assert.Equal(t, ModeDesktop, run(desktopUA, "not-a-number", ""))
}

func TestFromContextDefault(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, ModeDesktop, FromContext(c))
}

func TestWatchPath(t *testing.T) {
	assert.Equal(t, "/watch/movie/550", WatchPath(ModeDesktop, catalog.MediaTypeMovie, 550))
	assert.Equal(t, "/mobile/watch/tv/1399", WatchPath(ModeMobile, catalog.MediaTypeTV, 1399))
	assert.Equal(t, "/watch/tv/1399/2/9", EpisodeWatchPath(ModeDesktop, 1399, 2, 9))
	assert.Equal(t, "/mobile/watch/tv/1399/2/9", EpisodeWatchPath(ModeMobile, 1399, 2, 9))
}
