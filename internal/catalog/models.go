package catalog

// Page is the standard paginated list response from the catalog API.
type Page struct {
	Page         int     `json:"page"`
	Results      []Media `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Genre represents a genre from the catalog.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreList is the response from the genre list endpoints.
type GenreList struct {
	Genres []Genre `json:"genres"`
}

// ProductionCompany is a production company credit on a title.
type ProductionCompany struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	LogoPath *string `json:"logo_path"`
}

// SpokenLanguage is a language entry on a detail record.
type SpokenLanguage struct {
	EnglishName string `json:"english_name"`
	ISO639_1    string `json:"iso_639_1"`
}

// MovieDetails is the detailed movie record.
type MovieDetails struct {
	ID                  int                 `json:"id"`
	Title               string              `json:"title"`
	Overview            string              `json:"overview"`
	PosterPath          string              `json:"poster_path"`
	BackdropPath        string              `json:"backdrop_path"`
	ReleaseDate         string              `json:"release_date"`
	VoteAverage         float64             `json:"vote_average"`
	VoteCount           int                 `json:"vote_count"`
	Runtime             int                 `json:"runtime"`
	Genres              []Genre             `json:"genres"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
	SpokenLanguages     []SpokenLanguage    `json:"spoken_languages"`
	Status              string              `json:"status"`
	Tagline             string              `json:"tagline"`
	Budget              int64               `json:"budget"`
	Revenue             int64               `json:"revenue"`
}

// ShowDetails is the detailed TV show record.
type ShowDetails struct {
	ID                  int                 `json:"id"`
	Name                string              `json:"name"`
	Overview            string              `json:"overview"`
	PosterPath          string              `json:"poster_path"`
	BackdropPath        string              `json:"backdrop_path"`
	FirstAirDate        string              `json:"first_air_date"`
	VoteAverage         float64             `json:"vote_average"`
	VoteCount           int                 `json:"vote_count"`
	EpisodeRunTime      []int               `json:"episode_run_time"`
	Genres              []Genre             `json:"genres"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
	SpokenLanguages     []SpokenLanguage    `json:"spoken_languages"`
	Status              string              `json:"status"`
	Tagline             string              `json:"tagline"`
	NumberOfSeasons     int                 `json:"number_of_seasons"`
	NumberOfEpisodes    int                 `json:"number_of_episodes"`
	Seasons             []Season            `json:"seasons"`
}

// Season is a season summary on a show record.
type Season struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	SeasonNumber int    `json:"season_number"`
	AirDate      string `json:"air_date"`
	EpisodeCount int    `json:"episode_count"`
}

// Episode is an episode record within a season.
type Episode struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	StillPath     string `json:"still_path"`
	EpisodeNumber int    `json:"episode_number"`
	SeasonNumber  int    `json:"season_number"`
	AirDate       string `json:"air_date"`
	Runtime       int    `json:"runtime"`
	ShowID        int    `json:"show_id"`
}

// SeasonDetails is a season record with its episodes.
type SeasonDetails struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview"`
	PosterPath   string    `json:"poster_path"`
	SeasonNumber int       `json:"season_number"`
	AirDate      string    `json:"air_date"`
	Episodes     []Episode `json:"episodes"`
}

// CrewMember is a crew credit on an episode.
type CrewMember struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job"`
}

// GuestStar is a guest cast credit on an episode.
type GuestStar struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

// EpisodeDetails is the full episode record.
type EpisodeDetails struct {
	Episode
	Crew       []CrewMember `json:"crew"`
	GuestStars []GuestStar  `json:"guest_stars"`
}

// Video is a video entry (trailer, teaser, clip) attached to a title.
type Video struct {
	ISO639_1    string `json:"iso_639_1"`
	ISO3166_1   string `json:"iso_3166_1"`
	Name        string `json:"name"`
	Key         string `json:"key"`
	Site        string `json:"site"`
	Size        int    `json:"size"`
	Type        string `json:"type"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"published_at"`
	ID          string `json:"id"`
}

// VideoList is the response from the per-title video endpoint.
type VideoList struct {
	ID      int     `json:"id"`
	Results []Video `json:"results"`
}

// ErrorResponse is an error body from the catalog API.
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}
