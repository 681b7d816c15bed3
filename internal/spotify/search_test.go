package spotify

import (
	"testing"

	"github.com/zmb3/spotify/v2"
)

func TestConvertTrack(t *testing.T) {
	full := spotify.FullTrack{
		SimpleTrack: spotify.SimpleTrack{
			ID:   "track123",
			Name: "Test Song",
			Artists: []spotify.SimpleArtist{
				{Name: "Artist A"},
				{Name: "Artist B"},
			},
		},
		Album: spotify.SimpleAlbum{
			ReleaseDate: "1994-06-20",
			Images: []spotify.Image{
				{Height: 640, Width: 640, URL: "https://img/large"},
				{Height: 64, Width: 64, URL: "https://img/small"},
				{Height: 300, Width: 300, URL: "https://img/medium"},
			},
		},
		Popularity: 73,
	}

	got := convertTrack(full)

	if got.ID != "track123" || got.Title != "Test Song" {
		t.Errorf("identity = (%q, %q)", got.ID, got.Title)
	}
	if got.Artist != "Artist A, Artist B" {
		t.Errorf("Artist = %q", got.Artist)
	}
	if got.AlbumArt != "https://img/small" {
		t.Errorf("AlbumArt = %q, want smallest image", got.AlbumArt)
	}
	if got.Popularity != 73 {
		t.Errorf("Popularity = %d", got.Popularity)
	}
	if got.ReleaseYear != 1994 {
		t.Errorf("ReleaseYear = %d", got.ReleaseYear)
	}
}

func TestReleaseYear(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2006-08-25", 2006},
		{"2006-08", 2006},
		{"2006", 2006},
		{"", 0},
		{"19", 0},
		{"soon", 0},
		{"0000", 0},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			if got := releaseYear(tt.date); got != tt.want {
				t.Errorf("releaseYear(%q) = %d, want %d", tt.date, got, tt.want)
			}
		})
	}
}

func TestSmallestImage(t *testing.T) {
	tests := []struct {
		name   string
		images []spotify.Image
		want   string
	}{
		{"empty", nil, ""},
		{"single", []spotify.Image{{Height: 640, Width: 640, URL: "only"}}, "only"},
		{
			"picks smallest area",
			[]spotify.Image{
				{Height: 300, Width: 300, URL: "medium"},
				{Height: 64, Width: 64, URL: "small"},
				{Height: 640, Width: 640, URL: "large"},
			},
			"small",
		},
		{
			"zero-size metadata still resolves",
			[]spotify.Image{
				{Height: 0, Width: 0, URL: "unsized"},
				{Height: 64, Width: 64, URL: "small"},
			},
			"unsized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := smallestImage(tt.images); got != tt.want {
				t.Errorf("smallestImage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvertArtist(t *testing.T) {
	got := convertArtist(spotify.FullArtist{
		SimpleArtist: spotify.SimpleArtist{ID: "artist1", Name: "The Band"},
		Genres:       []string{"indie rock", "shoegaze"},
		Images: []spotify.Image{
			{Height: 640, Width: 640, URL: "big"},
			{Height: 160, Width: 160, URL: "small"},
		},
		Popularity: 55,
	})

	if got.ID != "artist1" || got.Name != "The Band" {
		t.Errorf("identity = (%q, %q)", got.ID, got.Name)
	}
	if len(got.Genres) != 2 || got.Genres[0] != "indie rock" {
		t.Errorf("Genres = %v", got.Genres)
	}
	if got.ImageURL != "small" {
		t.Errorf("ImageURL = %q", got.ImageURL)
	}
	if got.Popularity != 55 {
		t.Errorf("Popularity = %d", got.Popularity)
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(spotify.Error{Status: 404, Message: "Not found."}) {
		t.Error("404 spotify.Error not recognized")
	}
	if isNotFound(spotify.Error{Status: 500}) {
		t.Error("500 treated as not found")
	}
	if isNotFound(nil) {
		t.Error("nil treated as not found")
	}
}
