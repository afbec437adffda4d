// Package api exposes the HTTP surface: the versioned JSON API the
// embedded browser client talks to, the WebSocket endpoint, and the
// SPA fallback.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/Kayushan/JSTREAM/internal/catalog"
	"github.com/Kayushan/JSTREAM/internal/config"
	"github.com/Kayushan/JSTREAM/internal/device"
	"github.com/Kayushan/JSTREAM/internal/events"
	"github.com/Kayushan/JSTREAM/internal/library"
	"github.com/Kayushan/JSTREAM/internal/playback"
	"github.com/Kayushan/JSTREAM/internal/preview"
	"github.com/Kayushan/JSTREAM/internal/scheduler"
	"github.com/Kayushan/JSTREAM/internal/trailer"
	"github.com/Kayushan/JSTREAM/internal/users"
)

// Server handles HTTP requests for the JSTREAM API.
type Server struct {
	echo   *echo.Echo
	db     *sql.DB
	hub    *events.Hub
	logger zerolog.Logger
	cfg    *config.Config

	catalogClient  *catalog.Client
	trailerService *trailer.Service
	userService    *users.Service
	favorites      *library.Favorites
	progress       *library.Progress
	previews       *preview.Store
	playback       *playback.Builder
	sched          *scheduler.Scheduler
}

// NewServer creates a new API server instance.
func NewServer(db *sql.DB, hub *events.Hub, cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		db:     db,
		hub:    hub,
		logger: logger,
		cfg:    cfg,
	}

	s.catalogClient = catalog.NewClient(cfg.Catalog, logger)
	s.trailerService = trailer.NewService(s.catalogClient, logger)
	s.favorites = library.NewFavorites(db, logger)
	s.progress = library.NewProgress(db, logger)
	s.previews = preview.NewStore()
	s.playback = playback.NewBuilder(cfg.Embed)

	userService, err := users.NewService(db, cfg.Auth.JWTSecret, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize user service: %w", err)
	}
	s.userService = userService

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// SetScheduler attaches the task runner so /health can report job state.
func (s *Server) SetScheduler(sched *scheduler.Scheduler) {
	s.sched = sched
}

// UserService exposes the user service for startup wiring.
func (s *Server) UserService() *users.Service {
	return s.userService
}

// ProgressStore exposes the continue-watching store for startup wiring.
func (s *Server) ProgressStore() *library.Progress {
	return s.progress
}

// PreviewStore exposes the preview store for startup wiring.
func (s *Server) PreviewStore() *preview.Store {
	return s.previews
}

// Echo returns the underlying echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Viewport-Width"},
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Skip compression for WebSocket
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))

	s.echo.Use(device.Middleware())
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")
	api.GET("/health", s.healthCheck)

	// Catalog browsing
	api.GET("/home", s.getHome)
	api.GET("/search", s.search)
	api.GET("/trending", s.getTrending)

	api.GET("/movies/popular", s.listCatalog(s.catalogClient.PopularMovies))
	api.GET("/movies/top-rated", s.listCatalog(s.catalogClient.TopRatedMovies))
	api.GET("/movies/upcoming", s.listCatalog(s.catalogClient.UpcomingMovies))
	api.GET("/movies/now-playing", s.listCatalog(s.catalogClient.NowPlayingMovies))
	api.GET("/movies/:id", s.getMovieDetails)

	api.GET("/shows/popular", s.listCatalog(s.catalogClient.PopularShows))
	api.GET("/shows/top-rated", s.listCatalog(s.catalogClient.TopRatedShows))
	api.GET("/shows/airing-today", s.listCatalog(s.catalogClient.AiringTodayShows))
	api.GET("/shows/on-the-air", s.listCatalog(s.catalogClient.OnTheAirShows))
	api.GET("/shows/:id", s.getShowDetails)
	api.GET("/shows/:id/seasons", s.getShowSeasons)
	api.GET("/shows/:id/seasons/:season", s.getSeasonDetails)
	api.GET("/shows/:id/seasons/:season/episodes/:episode", s.getEpisodeDetails)

	api.GET("/discover/movies", s.discoverMovies)
	api.GET("/discover/shows", s.discoverShows)
	api.GET("/anime", s.getAnime)
	api.GET("/anime/movies", s.listCatalog(s.catalogClient.AnimeMovies))
	api.GET("/anime/shows", s.listCatalog(s.catalogClient.AnimeShows))
	api.GET("/genres/movies", s.getMovieGenres)
	api.GET("/genres/shows", s.getShowGenres)

	api.GET("/trailers/:mediaType/:id", s.getTrailer)

	// Auth
	auth := api.Group("/auth")
	auth.POST("/login", s.login)
	auth.POST("/logout", s.logout)
	auth.GET("/session", s.getSession)

	// Everything below needs a signed-in user.
	authed := api.Group("", s.userService.RequireSession())
	authed.GET("/favorites", s.listFavorites)
	authed.POST("/favorites", s.addFavorite)
	authed.GET("/favorites/:mediaType/:id", s.checkFavorite)
	authed.DELETE("/favorites/:mediaType/:id", s.removeFavorite)
	authed.GET("/continue-watching", s.listProgress)
	authed.PUT("/continue-watching", s.upsertProgress)
	authed.POST("/preview", s.openPreview)
	authed.GET("/preview", s.getPreview)
	authed.DELETE("/preview", s.closePreview)
	authed.GET("/watch-url/:mediaType/:id", s.getWatchURL)

	s.echo.GET("/ws", s.serveWS, s.userService.RequireSession())
}

// Start starts the HTTP server.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("Starting API server")
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down API server")
	return s.echo.Shutdown(ctx)
}

func (s *Server) serveWS(c echo.Context) error {
	session := users.SessionFromContext(c)
	return s.hub.Serve(c, session.UserID)
}

func (s *Server) healthCheck(c echo.Context) error {
	payload := map[string]interface{}{
		"status":             "ok",
		"catalog_configured": s.catalogClient.IsConfigured(),
		"ws_clients":         s.hub.ClientCount(),
	}
	if s.sched != nil {
		payload["tasks"] = s.sched.ListTasks()
	}
	return c.JSON(http.StatusOK, payload)
}
