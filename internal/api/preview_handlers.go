package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Kayushan/JSTREAM/internal/catalog"
	"github.com/Kayushan/JSTREAM/internal/device"
	"github.com/Kayushan/JSTREAM/internal/playback"
	"github.com/Kayushan/JSTREAM/internal/users"
)

// How long a background trailer fetch may take before the preview is
// marked failed.
const previewFetchTimeout = 10 * time.Second

type previewRequest struct {
	MediaType catalog.MediaType `json:"media_type"`
	TmdbID    int               `json:"tmdb_id"`
}

// openPreview starts a preview and kicks off the trailer fetch in the
// background. The response is the loading-state preview; the client
// polls GET /preview (or keeps the WS open) for the result.
func (s *Server) openPreview(c echo.Context) error {
	session := users.SessionFromContext(c)

	var req previewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !req.MediaType.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "media type must be movie or tv")
	}

	generation := s.previews.Open(session.ID, req.MediaType, req.TmdbID)

	go func(sessionID string, generation int, mediaType catalog.MediaType, tmdbID int) {
		ctx, cancel := context.WithTimeout(context.Background(), previewFetchTimeout)
		defer cancel()

		result, err := s.trailerService.Lookup(ctx, mediaType, tmdbID)
		if err != nil {
			s.previews.SetError(sessionID, generation, "trailer lookup failed")
			return
		}
		if result == nil {
			s.previews.SetError(sessionID, generation, "no trailer available")
			return
		}
		s.previews.SetTrailer(sessionID, generation, result)
	}(session.ID, generation, req.MediaType, req.TmdbID)

	return c.JSON(http.StatusAccepted, s.previews.Get(session.ID))
}

func (s *Server) getPreview(c echo.Context) error {
	session := users.SessionFromContext(c)

	current := s.previews.Get(session.ID)
	if current == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no active preview")
	}
	return c.JSON(http.StatusOK, current)
}

func (s *Server) closePreview(c echo.Context) error {
	session := users.SessionFromContext(c)
	s.previews.Close(session.ID)
	return c.NoContent(http.StatusNoContent)
}

// getWatchURL resolves where playback happens for the requesting
// device: the SPA route to navigate to plus the provider embed URL the
// player iframe loads.
func (s *Server) getWatchURL(c echo.Context) error {
	mediaType, id, err := pathMediaKey(c)
	if err != nil {
		return err
	}

	mode := device.FromContext(c)
	opts := playback.Options{Subtitles: c.QueryParam("subtitles") == "true"}

	season, _ := strconv.Atoi(c.QueryParam("season"))
	episode, _ := strconv.Atoi(c.QueryParam("episode"))

	var watchPath, embedURL string
	if mediaType == catalog.MediaTypeTV && season > 0 && episode > 0 {
		watchPath = device.EpisodeWatchPath(mode, id, season, episode)
		embedURL = s.playback.EpisodeEmbedURL(id, season, episode, opts)
	} else {
		watchPath = device.WatchPath(mode, mediaType, id)
		embedURL = s.playback.EmbedURL(mediaType, id, opts)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"mode":       string(mode),
		"watch_path": watchPath,
		"embed_url":  embedURL,
	})
}
