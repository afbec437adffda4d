// Package trailer selects the best YouTube trailer for a title from
// the catalog's video list.
package trailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Kayushan/JSTREAM/internal/catalog"
)

const youtubeSite = "YouTube"

// VideoSource is the slice of the catalog client the lookup needs.
type VideoSource interface {
	Videos(ctx context.Context, mediaType catalog.MediaType, id int) (*catalog.VideoList, error)
}

// Trailer is a playable YouTube video for a title.
type Trailer struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Site         string `json:"site"`
	EmbedURL     string `json:"embed_url"`
	WatchURL     string `json:"watch_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Service looks up trailers through a catalog video source.
type Service struct {
	source VideoSource
	logger zerolog.Logger
}

// NewService creates a trailer lookup service.
func NewService(source VideoSource, logger zerolog.Logger) *Service {
	return &Service{
		source: source,
		logger: logger.With().Str("component", "trailer").Logger(),
	}
}

// Lookup returns the best trailer for a title, or nil when the title
// has no YouTube videos at all. Catalog errors pass through.
func (s *Service) Lookup(ctx context.Context, mediaType catalog.MediaType, id int) (*Trailer, error) {
	list, err := s.source.Videos(ctx, mediaType, id)
	if err != nil {
		return nil, err
	}

	best := Select(list.Results)
	if best == nil {
		s.logger.Debug().
			Str("media_type", string(mediaType)).
			Int("id", id).
			Msg("no trailer available")
		return nil, nil
	}

	return &Trailer{
		Key:          best.Key,
		Name:         best.Name,
		Type:         best.Type,
		Site:         best.Site,
		EmbedURL:     EmbedURL(best.Key),
		WatchURL:     WatchURL(best.Key),
		ThumbnailURL: ThumbnailURL(best.Key),
	}, nil
}

// Select picks the best video from a raw result list. Only YouTube
// entries are considered. Preference order within type "Trailer" is the
// name substring "official trailer", then "trailer", then "teaser";
// after that any type "Trailer" entry, then whatever is left. Ties go
// to the earliest entry, so the choice is stable for a fixed input.
func Select(videos []catalog.Video) *catalog.Video {
	var candidates []catalog.Video
	for _, v := range videos {
		if v.Site == youtubeSite && v.Key != "" {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	for _, substr := range []string{"official trailer", "trailer", "teaser"} {
		for i := range candidates {
			if candidates[i].Type == "Trailer" &&
				strings.Contains(strings.ToLower(candidates[i].Name), substr) {
				return &candidates[i]
			}
		}
	}
	for i := range candidates {
		if candidates[i].Type == "Trailer" {
			return &candidates[i]
		}
	}
	return &candidates[0]
}

// Embeddable reports whether a video can be shown in the trailer
// player. Selection fallback and the HTTP layer share this predicate.
func Embeddable(v catalog.Video) bool {
	return v.Site == youtubeSite && v.Type == "Trailer" && v.Key != ""
}

// EmbedURL returns the YouTube iframe embed URL for a video key.
func EmbedURL(key string) string {
	return fmt.Sprintf("https://www.youtube.com/embed/%s?autoplay=1&rel=0", key)
}

// WatchURL returns the plain YouTube watch URL for a video key.
func WatchURL(key string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", key)
}

// ThumbnailURL returns the high quality YouTube thumbnail for a key.
func ThumbnailURL(key string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", key)
}
