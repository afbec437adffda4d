package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kayushan/JSTREAM/internal/config"
)

var (
	ErrTokenMissing = errors.New("catalog API token is not configured")
	ErrNotFound     = errors.New("title not found")
	ErrAPIError     = errors.New("catalog API error")
	ErrRateLimited  = errors.New("catalog API rate limited")
)

// Fixed discover filter for anime: the Animation genre plus the anime
// keyword. Static constants, not a classifier.
const (
	animationGenreID = "16"
	animeKeywordID   = "210024"
)

// Client is a catalog API client. It is stateless and safe for
// concurrent use; every call issues one GET and decodes the response.
type Client struct {
	httpClient *http.Client
	cfg        config.CatalogConfig
	logger     zerolog.Logger
}

// NewClient creates a new catalog client.
func NewClient(cfg config.CatalogConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		cfg:    cfg,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// IsConfigured returns true if the bearer token is set.
func (c *Client) IsConfigured() bool {
	return c.cfg.BearerToken != ""
}

// Trending returns trending movies and shows for a time window
// ("day" or "week"; anything else falls back to "week").
func (c *Client) Trending(ctx context.Context, window string, page int) (*Page, error) {
	if window != "day" && window != "week" {
		window = "week"
	}
	return c.getPage(ctx, fmt.Sprintf("/trending/all/%s", window), pageParams(page))
}

// SearchMulti searches movies and shows by free-text query. Query
// length policy lives in the caller; this layer sends whatever it gets.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) (*Page, error) {
	params := pageParams(page)
	params.Set("query", query)
	params.Set("include_adult", "false")
	return c.getPage(ctx, "/search/multi", params)
}

// PopularMovies returns the popular movies list.
func (c *Client) PopularMovies(ctx context.Context, page int) (*Page, error) {
	return c.getPage(ctx, "/movie/popular", pageParams(page))
}

// TopRatedMovies returns the top rated movies list.
func (c *Client) TopRatedMovies(ctx context.Context, page int) (*Page, error) {
	return c.getPage(ctx, "/movie/top_rated", pageParams(page))
}

// UpcomingMovies returns the upcoming movies list.
func (c *Client) UpcomingMovies(ctx context.Context, page int) (*Page, error) {
	return c.getPage(ctx, "/movie/upcoming", pageParams(page))
}

// NowPlayingMovies returns the now playing movies list.
func (c *Client) NowPlayingMovies(ctx context.Context, page int) (*Page, error) {
	return c.getPage(ctx, "/movie/now_playing", pageParams(page))
}

// PopularShows returns the popular TV shows list.
func (c *Client) PopularShows(ctx context.Context, page int) (*Page, error) {
	return c.getPage(ctx, "/tv/popular", pageParams(page))
}

// TopRatedShows returns the top rated TV shows list.
func (c *Client) TopRatedShows(ctx context.Context, page int) (*Page, error) {
	return c.getPage(ctx, "/tv/top_rated", pageParams(page))
}

// AiringTodayShows returns the airing today TV shows list.
func (c *Client) AiringTodayShows(ctx context.Context, page int) (*Page, error) {
	return c.getPage(ctx, "/tv/airing_today", pageParams(page))
}

// OnTheAirShows returns the on the air TV shows list.
func (c *Client) OnTheAirShows(ctx context.Context, page int) (*Page, error) {
	return c.getPage(ctx, "/tv/on_the_air", pageParams(page))
}

// MoviesByGenre returns movies for a genre, most popular first.
func (c *Client) MoviesByGenre(ctx context.Context, genreID, page int) (*Page, error) {
	params := pageParams(page)
	params.Set("with_genres", strconv.Itoa(genreID))
	params.Set("sort_by", "popularity.desc")
	return c.getPage(ctx, "/discover/movie", params)
}

// ShowsByGenre returns TV shows for a genre, most popular first.
func (c *Client) ShowsByGenre(ctx context.Context, genreID, page int) (*Page, error) {
	params := pageParams(page)
	params.Set("with_genres", strconv.Itoa(genreID))
	params.Set("sort_by", "popularity.desc")
	return c.getPage(ctx, "/discover/tv", params)
}

// AnimeMovies returns animated movies constrained by the anime keyword.
func (c *Client) AnimeMovies(ctx context.Context, page int) (*Page, error) {
	params := pageParams(page)
	params.Set("with_genres", animationGenreID)
	params.Set("with_keywords", animeKeywordID)
	params.Set("sort_by", "popularity.desc")
	return c.getPage(ctx, "/discover/movie", params)
}

// AnimeShows returns animated TV shows constrained by the anime keyword.
func (c *Client) AnimeShows(ctx context.Context, page int) (*Page, error) {
	params := pageParams(page)
	params.Set("with_genres", animationGenreID)
	params.Set("with_keywords", animeKeywordID)
	params.Set("sort_by", "popularity.desc")
	return c.getPage(ctx, "/discover/tv", params)
}

// MovieGenres returns the movie genre list.
func (c *Client) MovieGenres(ctx context.Context) (*GenreList, error) {
	if !c.IsConfigured() {
		return nil, ErrTokenMissing
	}
	var list GenreList
	if err := c.doRequest(ctx, "/genre/movie/list", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ShowGenres returns the TV genre list.
func (c *Client) ShowGenres(ctx context.Context) (*GenreList, error) {
	if !c.IsConfigured() {
		return nil, ErrTokenMissing
	}
	var list GenreList
	if err := c.doRequest(ctx, "/genre/tv/list", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// MovieDetails returns the full movie record by catalog ID.
func (c *Client) MovieDetails(ctx context.Context, id int) (*MovieDetails, error) {
	if !c.IsConfigured() {
		return nil, ErrTokenMissing
	}
	var details MovieDetails
	if err := c.doRequest(ctx, fmt.Sprintf("/movie/%d", id), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// ShowDetails returns the full TV show record by catalog ID.
func (c *Client) ShowDetails(ctx context.Context, id int) (*ShowDetails, error) {
	if !c.IsConfigured() {
		return nil, ErrTokenMissing
	}
	var details ShowDetails
	if err := c.doRequest(ctx, fmt.Sprintf("/tv/%d", id), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// ShowSeasons returns the season summaries for a show.
func (c *Client) ShowSeasons(ctx context.Context, id int) ([]Season, error) {
	details, err := c.ShowDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	return details.Seasons, nil
}

// SeasonDetails returns a season with all of its episodes.
func (c *Client) SeasonDetails(ctx context.Context, showID, seasonNumber int) (*SeasonDetails, error) {
	if !c.IsConfigured() {
		return nil, ErrTokenMissing
	}
	var details SeasonDetails
	endpoint := fmt.Sprintf("/tv/%d/season/%d", showID, seasonNumber)
	if err := c.doRequest(ctx, endpoint, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// EpisodeDetails returns a single episode record.
func (c *Client) EpisodeDetails(ctx context.Context, showID, seasonNumber, episodeNumber int) (*EpisodeDetails, error) {
	if !c.IsConfigured() {
		return nil, ErrTokenMissing
	}
	var details EpisodeDetails
	endpoint := fmt.Sprintf("/tv/%d/season/%d/episode/%d", showID, seasonNumber, episodeNumber)
	if err := c.doRequest(ctx, endpoint, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// Videos returns the video list (trailers, teasers, clips) for a title.
func (c *Client) Videos(ctx context.Context, mediaType MediaType, id int) (*VideoList, error) {
	if !c.IsConfigured() {
		return nil, ErrTokenMissing
	}
	if !mediaType.Valid() {
		return nil, fmt.Errorf("%w: unknown media type %q", ErrAPIError, mediaType)
	}
	var list VideoList
	endpoint := fmt.Sprintf("/%s/%d/videos", mediaType, id)
	if err := c.doRequest(ctx, endpoint, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ImageURL returns a full image URL for a given path and size.
// Size options: "w92", "w154", "w185", "w342", "w500", "w780", "original"
func (c *Client) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", c.cfg.ImageBaseURL, size, path)
}

// getPage fetches a list endpoint and filters out undiscriminated items.
func (c *Client) getPage(ctx context.Context, endpoint string, params url.Values) (*Page, error) {
	if !c.IsConfigured() {
		return nil, ErrTokenMissing
	}

	var page Page
	if err := c.doRequest(ctx, endpoint, params, &page); err != nil {
		return nil, err
	}
	page.normalize()

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("page", page.Page).
		Int("results", len(page.Results)).
		Msg("catalog page fetched")

	return &page, nil
}

// doRequest performs an HTTP GET request with bearer auth and decodes
// the JSON response. Any transport error or non-2xx status is returned
// to the caller; there are no retries.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	reqURL := c.cfg.BaseURL + endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			c.logger.Error().
				Int("status", resp.StatusCode).
				Str("message", errResp.StatusMessage).
				Str("endpoint", endpoint).
				Msg("catalog API error")
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: invalid bearer token", ErrAPIError)
		case http.StatusTooManyRequests:
			return ErrRateLimited
		default:
			return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// pageParams builds the common page query. Pages below 1 default to 1.
func pageParams(page int) url.Values {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	return params
}
