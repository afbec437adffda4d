package catalog

import "encoding/json"

// MediaType discriminates movies from TV shows. It is part of every
// cross-entity key (favorites, continue watching, embed URLs).
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Valid reports whether t is one of the two known media types.
func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// Media is a movie or TV show summary. The discriminant is assigned
// exactly once, when the API response is decoded: an explicit media_type
// field wins, otherwise presence of a title field marks a movie and
// presence of a name field marks a show. Items that are neither (e.g.
// person results from multi-search) decode with an empty Type and are
// filtered out before a Page is returned.
type Media struct {
	Type         MediaType `json:"media_type"`
	ID           int       `json:"id"`
	Title        string    `json:"-"`
	Overview     string    `json:"overview"`
	PosterPath   string    `json:"poster_path"`
	BackdropPath string    `json:"backdrop_path"`
	ReleaseDate  string    `json:"-"`
	VoteAverage  float64   `json:"vote_average"`
	VoteCount    int       `json:"vote_count"`
	GenreIDs     []int     `json:"genre_ids"`
}

type mediaJSON struct {
	MediaType    string  `json:"media_type,omitempty"`
	ID           int     `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	GenreIDs     []int   `json:"genre_ids"`
}

// UnmarshalJSON decodes a raw catalog item and pins down the media type.
func (m *Media) UnmarshalJSON(data []byte) error {
	var raw mediaJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Media{
		ID:           raw.ID,
		Overview:     raw.Overview,
		PosterPath:   raw.PosterPath,
		BackdropPath: raw.BackdropPath,
		VoteAverage:  raw.VoteAverage,
		VoteCount:    raw.VoteCount,
		GenreIDs:     raw.GenreIDs,
	}

	switch {
	case raw.MediaType == string(MediaTypeMovie), raw.MediaType == "" && raw.Title != "":
		m.Type = MediaTypeMovie
		m.Title = raw.Title
		m.ReleaseDate = raw.ReleaseDate
	case raw.MediaType == string(MediaTypeTV), raw.MediaType == "" && raw.Name != "":
		m.Type = MediaTypeTV
		m.Title = raw.Name
		m.ReleaseDate = raw.FirstAirDate
	}
	// Anything else (person results, malformed rows) keeps Type == "".

	return nil
}

// MarshalJSON emits the wire shape the browser client expects: movies
// carry title/release_date, shows carry name/first_air_date, and
// media_type is always present.
func (m Media) MarshalJSON() ([]byte, error) {
	raw := mediaJSON{
		MediaType:    string(m.Type),
		ID:           m.ID,
		Overview:     m.Overview,
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		VoteAverage:  m.VoteAverage,
		VoteCount:    m.VoteCount,
		GenreIDs:     m.GenreIDs,
	}

	if m.Type == MediaTypeTV {
		raw.Name = m.Title
		raw.FirstAirDate = m.ReleaseDate
	} else {
		raw.Title = m.Title
		raw.ReleaseDate = m.ReleaseDate
	}

	return json.Marshal(raw)
}

// normalize drops undiscriminated items so every result in a returned
// Page is exactly one of movie or tv.
func (p *Page) normalize() {
	kept := p.Results[:0]
	for _, item := range p.Results {
		if item.Type.Valid() {
			kept = append(kept, item)
		}
	}
	p.Results = kept
	if p.Results == nil {
		p.Results = []Media{}
	}
}
