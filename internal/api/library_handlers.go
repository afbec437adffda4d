package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Kayushan/JSTREAM/internal/catalog"
	"github.com/Kayushan/JSTREAM/internal/events"
	"github.com/Kayushan/JSTREAM/internal/library"
	"github.com/Kayushan/JSTREAM/internal/users"
)

func (s *Server) listFavorites(c echo.Context) error {
	session := users.SessionFromContext(c)

	favorites, err := s.favorites.List(c.Request().Context(), session.UserID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list favorites")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list favorites")
	}
	return c.JSON(http.StatusOK, favorites)
}

type favoriteRequest struct {
	TmdbID     int               `json:"tmdb_id"`
	MediaType  catalog.MediaType `json:"media_type"`
	Title      string            `json:"title"`
	PosterPath string            `json:"poster_path"`
	Overview   string            `json:"overview"`
}

func (s *Server) addFavorite(c echo.Context) error {
	session := users.SessionFromContext(c)

	var req favoriteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !req.MediaType.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "media type must be movie or tv")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	fav, err := s.favorites.Add(c.Request().Context(), library.Favorite{
		UserID:     session.UserID,
		TmdbID:     req.TmdbID,
		MediaType:  req.MediaType,
		Title:      req.Title,
		PosterPath: req.PosterPath,
		Overview:   req.Overview,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to add favorite")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to add favorite")
	}

	s.hub.Publish(session.UserID, events.EventFavoriteAdded, fav)
	return c.JSON(http.StatusCreated, fav)
}

func (s *Server) removeFavorite(c echo.Context) error {
	session := users.SessionFromContext(c)
	mediaType, id, err := pathMediaKey(c)
	if err != nil {
		return err
	}

	err = s.favorites.Remove(c.Request().Context(), session.UserID, id, mediaType)
	if errors.Is(err, library.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "favorite not found")
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to remove favorite")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to remove favorite")
	}

	s.hub.Publish(session.UserID, events.EventFavoriteRemoved, map[string]interface{}{
		"tmdb_id":    id,
		"media_type": mediaType,
	})
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) checkFavorite(c echo.Context) error {
	session := users.SessionFromContext(c)
	mediaType, id, err := pathMediaKey(c)
	if err != nil {
		return err
	}

	saved, err := s.favorites.IsFavorite(c.Request().Context(), session.UserID, id, mediaType)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check favorite")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to check favorite")
	}
	return c.JSON(http.StatusOK, map[string]bool{"favorite": saved})
}

func (s *Server) listProgress(c echo.Context) error {
	session := users.SessionFromContext(c)

	records, err := s.progress.List(c.Request().Context(), session.UserID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list watch progress")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list watch progress")
	}
	return c.JSON(http.StatusOK, records)
}

type progressRequest struct {
	TmdbID        int               `json:"tmdb_id"`
	MediaType     catalog.MediaType `json:"media_type"`
	Title         string            `json:"title"`
	PosterPath    string            `json:"poster_path"`
	Progress      float64           `json:"progress"`
	SeasonNumber  int               `json:"season_number"`
	EpisodeNumber int               `json:"episode_number"`
	EpisodeID     int               `json:"episode_id"`
}

func (s *Server) upsertProgress(c echo.Context) error {
	session := users.SessionFromContext(c)

	var req progressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !req.MediaType.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "media type must be movie or tv")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	rec, err := s.progress.Upsert(c.Request().Context(), library.WatchProgress{
		UserID:        session.UserID,
		TmdbID:        req.TmdbID,
		MediaType:     req.MediaType,
		Title:         req.Title,
		PosterPath:    req.PosterPath,
		Progress:      req.Progress,
		SeasonNumber:  req.SeasonNumber,
		EpisodeNumber: req.EpisodeNumber,
		EpisodeID:     req.EpisodeID,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to save watch progress")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save watch progress")
	}

	s.hub.Publish(session.UserID, events.EventProgressUpdated, rec)
	return c.JSON(http.StatusOK, rec)
}
