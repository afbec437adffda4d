// Package playback builds URLs for the external video embed provider.
// The server never proxies stream bytes; it only hands the client an
// iframe URL to load.
package playback

import (
	"fmt"

	"github.com/Kayushan/JSTREAM/internal/catalog"
	"github.com/Kayushan/JSTREAM/internal/config"
)

// Options tune the embed player.
type Options struct {
	Subtitles bool
}

// Builder constructs embed provider URLs from configuration.
type Builder struct {
	baseURL string
}

// NewBuilder creates a URL builder for the configured embed provider.
func NewBuilder(cfg config.EmbedConfig) *Builder {
	return &Builder{baseURL: cfg.BaseURL}
}

// EmbedURL returns the iframe URL that plays a movie or a whole show.
func (b *Builder) EmbedURL(mediaType catalog.MediaType, id int, opts Options) string {
	url := fmt.Sprintf("%s/%s/%d?autoPlay=true", b.baseURL, mediaType, id)
	if opts.Subtitles {
		url += "&subtitles=true"
	}
	return url
}

// EpisodeEmbedURL returns the iframe URL for one episode of a show.
func (b *Builder) EpisodeEmbedURL(id, season, episode int, opts Options) string {
	url := fmt.Sprintf("%s/tv/%d/%d/%d?autoPlay=true", b.baseURL, id, season, episode)
	if opts.Subtitles {
		url += "&subtitles=true"
	}
	return url
}
