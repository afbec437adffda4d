package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/Kayushan/JSTREAM/internal/catalog"
)

// Search queries shorter than this never reach the catalog.
const minSearchRunes = 2

type listFunc func(ctx context.Context, page int) (*catalog.Page, error)

// homeResponse is the aggregate payload for the landing page.
type homeResponse struct {
	Trending      *catalog.Page `json:"trending"`
	PopularMovies *catalog.Page `json:"popular_movies"`
	TopMovies     *catalog.Page `json:"top_rated_movies"`
	Upcoming      *catalog.Page `json:"upcoming_movies"`
	PopularShows  *catalog.Page `json:"popular_shows"`
	TopShows      *catalog.Page `json:"top_rated_shows"`
}

// getHome fetches the six landing-page sections concurrently. Any
// section failing fails the whole aggregate.
func (s *Server) getHome(c echo.Context) error {
	ctx := c.Request().Context()

	var resp homeResponse
	sections := []struct {
		dest  **catalog.Page
		fetch func() (*catalog.Page, error)
	}{
		{&resp.Trending, func() (*catalog.Page, error) { return s.catalogClient.Trending(ctx, "week", 1) }},
		{&resp.PopularMovies, func() (*catalog.Page, error) { return s.catalogClient.PopularMovies(ctx, 1) }},
		{&resp.TopMovies, func() (*catalog.Page, error) { return s.catalogClient.TopRatedMovies(ctx, 1) }},
		{&resp.Upcoming, func() (*catalog.Page, error) { return s.catalogClient.UpcomingMovies(ctx, 1) }},
		{&resp.PopularShows, func() (*catalog.Page, error) { return s.catalogClient.PopularShows(ctx, 1) }},
		{&resp.TopShows, func() (*catalog.Page, error) { return s.catalogClient.TopRatedShows(ctx, 1) }},
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, section := range sections {
		wg.Add(1)
		go func(dest **catalog.Page, fetch func() (*catalog.Page, error)) {
			defer wg.Done()
			page, err := fetch()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			*dest = page
		}(section.dest, section.fetch)
	}
	wg.Wait()

	if firstErr != nil {
		s.logger.Error().Err(firstErr).Msg("home aggregate failed")
		return echo.NewHTTPError(http.StatusBadGateway, "catalog unavailable")
	}
	return c.JSON(http.StatusOK, resp)
}

// getAnime merges the anime movie and show lists for a page into one
// list ordered by rating. Either list failing fails the aggregate.
func (s *Server) getAnime(c echo.Context) error {
	ctx := c.Request().Context()
	pageNum := queryPage(c)

	var (
		wg            sync.WaitGroup
		mu            sync.Mutex
		firstErr      error
		movies, shows *catalog.Page
	)
	fetch := func(dest **catalog.Page, list listFunc) {
		defer wg.Done()
		page, err := list(ctx, pageNum)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		*dest = page
	}
	wg.Add(2)
	go fetch(&movies, s.catalogClient.AnimeMovies)
	go fetch(&shows, s.catalogClient.AnimeShows)
	wg.Wait()

	if firstErr != nil {
		return s.catalogError(firstErr)
	}

	merged := catalog.Page{
		Page:         pageNum,
		TotalPages:   max(movies.TotalPages, shows.TotalPages),
		TotalResults: movies.TotalResults + shows.TotalResults,
		Results:      make([]catalog.Media, 0, len(movies.Results)+len(shows.Results)),
	}
	merged.Results = append(merged.Results, movies.Results...)
	merged.Results = append(merged.Results, shows.Results...)
	sort.SliceStable(merged.Results, func(i, j int) bool {
		return merged.Results[i].VoteAverage > merged.Results[j].VoteAverage
	})
	return c.JSON(http.StatusOK, merged)
}

func (s *Server) search(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("query"))
	if utf8.RuneCountInString(query) < minSearchRunes {
		return c.JSON(http.StatusOK, catalog.Page{Page: 1, TotalPages: 1, Results: []catalog.Media{}})
	}

	page, err := s.catalogClient.SearchMulti(c.Request().Context(), query, queryPage(c))
	if err != nil {
		return s.catalogError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (s *Server) getTrending(c echo.Context) error {
	page, err := s.catalogClient.Trending(c.Request().Context(), c.QueryParam("window"), queryPage(c))
	if err != nil {
		return s.catalogError(err)
	}
	return c.JSON(http.StatusOK, page)
}

// listCatalog adapts a catalog list operation into a handler.
func (s *Server) listCatalog(fetch listFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		page, err := fetch(c.Request().Context(), queryPage(c))
		if err != nil {
			return s.catalogError(err)
		}
		return c.JSON(http.StatusOK, page)
	}
}

func (s *Server) discoverMovies(c echo.Context) error {
	genreID, err := strconv.Atoi(c.QueryParam("genre"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "genre is required")
	}
	page, err := s.catalogClient.MoviesByGenre(c.Request().Context(), genreID, queryPage(c))
	if err != nil {
		return s.catalogError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (s *Server) discoverShows(c echo.Context) error {
	genreID, err := strconv.Atoi(c.QueryParam("genre"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "genre is required")
	}
	page, err := s.catalogClient.ShowsByGenre(c.Request().Context(), genreID, queryPage(c))
	if err != nil {
		return s.catalogError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (s *Server) getMovieGenres(c echo.Context) error {
	list, err := s.catalogClient.MovieGenres(c.Request().Context())
	if err != nil {
		return s.catalogError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) getShowGenres(c echo.Context) error {
	list, err := s.catalogClient.ShowGenres(c.Request().Context())
	if err != nil {
		return s.catalogError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) getMovieDetails(c echo.Context) error {
	id, err := pathInt(c, "id")
	if err != nil {
		return err
	}
	details, err := s.catalogClient.MovieDetails(c.Request().Context(), id)
	if err != nil {
		return s.catalogError(err)
	}
	return c.JSON(http.StatusOK, details)
}

func (s *Server) getShowDetails(c echo.Context) error {
	id, err := pathInt(c, "id")
	if err != nil {
		return err
	}
	details, err := s.catalogClient.ShowDetails(c.Request().Context(), id)
	if err != nil {
		return s.catalogError(err)
	}
	return c.JSON(http.StatusOK, details)
}

func (s *Server) getShowSeasons(c echo.Context) error {
	id, err := pathInt(c, "id")
	if err != nil {
		return err
	}
	seasons, err := s.catalogClient.ShowSeasons(c.Request().Context(), id)
	if err != nil {
		return s.catalogError(err)
	}
	return c.JSON(http.StatusOK, seasons)
}

func (s *Server) getSeasonDetails(c echo.Context) error {
	id, err := pathInt(c, "id")
	if err != nil {
		return err
	}
	season, err := pathInt(c, "season")
	if err != nil {
		return err
	}
	details, err := s.catalogClient.SeasonDetails(c.Request().Context(), id, season)
	if err != nil {
		return s.catalogError(err)
	}
	return c.JSON(http.StatusOK, details)
}

func (s *Server) getEpisodeDetails(c echo.Context) error {
	id, err := pathInt(c, "id")
	if err != nil {
		return err
	}
	season, err := pathInt(c, "season")
	if err != nil {
		return err
	}
	episode, err := pathInt(c, "episode")
	if err != nil {
		return err
	}
	details, err := s.catalogClient.EpisodeDetails(c.Request().Context(), id, season, episode)
	if err != nil {
		return s.catalogError(err)
	}
	return c.JSON(http.StatusOK, details)
}

func (s *Server) getTrailer(c echo.Context) error {
	mediaType, id, err := pathMediaKey(c)
	if err != nil {
		return err
	}

	result, err := s.trailerService.Lookup(c.Request().Context(), mediaType, id)
	if err != nil {
		return s.catalogError(err)
	}
	if result == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no trailer available")
	}
	return c.JSON(http.StatusOK, result)
}

// catalogError maps catalog client errors onto HTTP statuses.
func (s *Server) catalogError(err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "title not found")
	case errors.Is(err, catalog.ErrTokenMissing):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "catalog is not configured")
	case errors.Is(err, catalog.ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, "catalog rate limited")
	default:
		return echo.NewHTTPError(http.StatusBadGateway, "catalog unavailable")
	}
}

func queryPage(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func pathInt(c echo.Context, name string) (int, error) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return value, nil
}

func pathMediaKey(c echo.Context) (catalog.MediaType, int, error) {
	mediaType := catalog.MediaType(c.Param("mediaType"))
	if !mediaType.Valid() {
		return "", 0, echo.NewHTTPError(http.StatusBadRequest, "media type must be movie or tv")
	}
	id, err := pathInt(c, "id")
	if err != nil {
		return "", 0, err
	}
	return mediaType, id, nil
}
