package trailer

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Kayushan/JSTREAM/internal/catalog"
)

type stubSource struct {
	list *catalog.VideoList
	err  error
}

func (s *stubSource) Videos(ctx context.Context, mediaType catalog.MediaType, id int) (*catalog.VideoList, error) {
	return s.list, s.err
}

func TestSelectPriority(t *testing.T) {
	tests := []struct {
		name    string
		videos  []catalog.Video
		wantKey string
	}{
		{
			"official trailer beats plain trailer",
			[]catalog.Video{
				{Key: "plain", Name: "Final Trailer", Site: "YouTube", Type: "Trailer"},
				{Key: "official", Name: "Official Trailer", Site: "YouTube", Type: "Trailer"},
			},
			"official",
		},
		{
			"trailer name beats teaser name",
			[]catalog.Video{
				{Key: "tease", Name: "Teaser", Site: "YouTube", Type: "Trailer"},
				{Key: "trail", Name: "Main Trailer", Site: "YouTube", Type: "Trailer"},
			},
			"trail",
		},
		{
			"case insensitive name match",
			[]catalog.Video{
				{Key: "clip", Name: "Clip", Site: "YouTube", Type: "Trailer"},
				{Key: "loud", Name: "OFFICIAL TRAILER #2", Site: "YouTube", Type: "Trailer"},
			},
			"loud",
		},
		{
			"any trailer type over other types",
			[]catalog.Video{
				{Key: "featurette", Name: "Behind the Scenes", Site: "YouTube", Type: "Featurette"},
				{Key: "untitled", Name: "Sneak Peek", Site: "YouTube", Type: "Trailer"},
			},
			"untitled",
		},
		{
			"first remaining when no trailer type",
			[]catalog.Video{
				{Key: "first", Name: "Featurette", Site: "YouTube", Type: "Featurette"},
				{Key: "second", Name: "Clip", Site: "YouTube", Type: "Clip"},
			},
			"first",
		},
		{
			"non-youtube entries ignored",
			[]catalog.Video{
				{Key: "vimeo", Name: "Official Trailer", Site: "Vimeo", Type: "Trailer"},
				{Key: "yt", Name: "Clip", Site: "YouTube", Type: "Clip"},
			},
			"yt",
		},
		{
			"empty keys ignored",
			[]catalog.Video{
				{Key: "", Name: "Official Trailer", Site: "YouTube", Type: "Trailer"},
				{Key: "ok", Name: "Trailer", Site: "YouTube", Type: "Trailer"},
			},
			"ok",
		},
		{
			"first match wins among equals",
			[]catalog.Video{
				{Key: "a", Name: "Official Trailer", Site: "YouTube", Type: "Trailer"},
				{Key: "b", Name: "Official Trailer", Site: "YouTube", Type: "Trailer"},
			},
			"a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.videos)
			if got == nil {
				t.Fatal("expected a selection, got nil")
			}
			if got.Key != tt.wantKey {
				t.Errorf("expected key %q, got %q", tt.wantKey, got.Key)
			}
		})
	}
}

func TestSelectEmpty(t *testing.T) {
	if got := Select(nil); got != nil {
		t.Errorf("expected nil for empty input, got %+v", got)
	}
	only := []catalog.Video{{Key: "x", Site: "Vimeo", Type: "Trailer"}}
	if got := Select(only); got != nil {
		t.Errorf("expected nil when no YouTube entries, got %+v", got)
	}
}

func TestEmbeddable(t *testing.T) {
	good := catalog.Video{Key: "abc", Site: "YouTube", Type: "Trailer"}
	if !Embeddable(good) {
		t.Error("expected YouTube trailer with key to be embeddable")
	}

	for _, v := range []catalog.Video{
		{Key: "", Site: "YouTube", Type: "Trailer"},
		{Key: "abc", Site: "Vimeo", Type: "Trailer"},
		{Key: "abc", Site: "YouTube", Type: "Teaser"},
	} {
		if Embeddable(v) {
			t.Errorf("expected %+v to not be embeddable", v)
		}
	}
}

func TestLookup(t *testing.T) {
	source := &stubSource{list: &catalog.VideoList{Results: []catalog.Video{
		{Key: "key1", Name: "Official Trailer", Site: "YouTube", Type: "Trailer"},
	}}}
	svc := NewService(source, zerolog.Nop())

	trailer, err := svc.Lookup(context.Background(), catalog.MediaTypeMovie, 550)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trailer == nil {
		t.Fatal("expected a trailer")
	}
	if trailer.EmbedURL != "https://www.youtube.com/embed/key1?autoplay=1&rel=0" {
		t.Errorf("unexpected embed URL %q", trailer.EmbedURL)
	}
	if trailer.WatchURL != "https://www.youtube.com/watch?v=key1" {
		t.Errorf("unexpected watch URL %q", trailer.WatchURL)
	}
	if trailer.ThumbnailURL != "https://img.youtube.com/vi/key1/hqdefault.jpg" {
		t.Errorf("unexpected thumbnail URL %q", trailer.ThumbnailURL)
	}
}

func TestLookupNoTrailer(t *testing.T) {
	svc := NewService(&stubSource{list: &catalog.VideoList{}}, zerolog.Nop())

	trailer, err := svc.Lookup(context.Background(), catalog.MediaTypeTV, 1399)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trailer != nil {
		t.Errorf("expected nil trailer, got %+v", trailer)
	}
}

func TestLookupPropagatesError(t *testing.T) {
	svc := NewService(&stubSource{err: catalog.ErrRateLimited}, zerolog.Nop())

	_, err := svc.Lookup(context.Background(), catalog.MediaTypeMovie, 1)
	if !errors.Is(err, catalog.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}
