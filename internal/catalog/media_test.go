package catalog

import (
	"encoding/json"
	"testing"
)

func TestMediaUnmarshalDiscriminant(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType MediaType
		wantName string
	}{
		{
			"explicit movie",
			`{"id": 1, "media_type": "movie", "title": "Heat", "release_date": "1995-12-15"}`,
			MediaTypeMovie,
			"Heat",
		},
		{
			"explicit tv",
			`{"id": 2, "media_type": "tv", "name": "The Wire", "first_air_date": "2002-06-02"}`,
			MediaTypeTV,
			"The Wire",
		},
		{
			"inferred movie from title",
			`{"id": 3, "title": "Alien"}`,
			MediaTypeMovie,
			"Alien",
		},
		{
			"inferred tv from name",
			`{"id": 4, "name": "Severance"}`,
			MediaTypeTV,
			"Severance",
		},
		{
			"explicit type wins over fields",
			`{"id": 5, "media_type": "tv", "title": "Misfiled", "name": "Filed"}`,
			MediaTypeTV,
			"Filed",
		},
		{
			"person stays undiscriminated",
			`{"id": 6, "media_type": "person", "name": "Al Pacino"}`,
			MediaType(""),
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Media
			if err := json.Unmarshal([]byte(tt.input), &m); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if m.Type != tt.wantType {
				t.Errorf("expected type %q, got %q", tt.wantType, m.Type)
			}
			if m.Title != tt.wantName {
				t.Errorf("expected title %q, got %q", tt.wantName, m.Title)
			}
		})
	}
}

func TestMediaMarshalRoundTrip(t *testing.T) {
	movie := Media{Type: MediaTypeMovie, ID: 1, Title: "Heat", ReleaseDate: "1995-12-15"}
	data, err := json.Marshal(movie)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if raw["media_type"] != "movie" {
		t.Errorf("expected media_type movie, got %v", raw["media_type"])
	}
	if raw["title"] != "Heat" {
		t.Errorf("expected title field for movie, got %v", raw["title"])
	}
	if _, ok := raw["name"]; ok {
		t.Error("movie should not emit a name field")
	}
	if raw["release_date"] != "1995-12-15" {
		t.Errorf("expected release_date for movie, got %v", raw["release_date"])
	}

	show := Media{Type: MediaTypeTV, ID: 2, Title: "The Wire", ReleaseDate: "2002-06-02"}
	data, err = json.Marshal(show)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	raw = nil
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if raw["name"] != "The Wire" {
		t.Errorf("expected name field for tv, got %v", raw["name"])
	}
	if _, ok := raw["title"]; ok {
		t.Error("tv show should not emit a title field")
	}
	if raw["first_air_date"] != "2002-06-02" {
		t.Errorf("expected first_air_date for tv, got %v", raw["first_air_date"])
	}
}

func TestPageNormalize(t *testing.T) {
	page := Page{
		Results: []Media{
			{Type: MediaTypeMovie, ID: 1},
			{Type: "", ID: 2},
			{Type: MediaTypeTV, ID: 3},
			{Type: "person", ID: 4},
		},
	}
	page.normalize()

	if len(page.Results) != 2 {
		t.Fatalf("expected 2 results after normalize, got %d", len(page.Results))
	}
	if page.Results[0].ID != 1 || page.Results[1].ID != 3 {
		t.Errorf("unexpected survivors %+v", page.Results)
	}

	empty := Page{}
	empty.normalize()
	if empty.Results == nil {
		t.Error("expected normalize to produce a non-nil results slice")
	}
}
