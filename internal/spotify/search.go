package spotify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zmb3/spotify/v2"
)

// searchLimit caps a track search to one page of results.
const searchLimit = 10

// SearchTracks searches the catalog for tracks matching the query.
func (c *Client) SearchTracks(ctx context.Context, query string) ([]Track, error) {
	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(searchLimit))
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}
	if result.Tracks == nil {
		return nil, nil
	}

	tracks := make([]Track, 0, len(result.Tracks.Tracks))
	for _, t := range result.Tracks.Tracks {
		tracks = append(tracks, convertTrack(t))
	}
	return tracks, nil
}

// Track fetches a single track by ID.
func (c *Client) Track(ctx context.Context, id string) (*Track, error) {
	full, err := c.api.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("fetching track %s: %w", id, err)
	}
	t := convertTrack(*full)
	return &t, nil
}

// convertTrack converts a Spotify FullTrack to a Track.
func convertTrack(t spotify.FullTrack) Track {
	return Track{
		ID:          t.ID.String(),
		Title:       t.Name,
		Artist:      joinArtists(t.Artists),
		AlbumArt:    smallestImage(t.Album.Images),
		Popularity:  int(t.Popularity),
		ReleaseYear: releaseYear(t.Album.ReleaseDate),
	}
}

// joinArtists joins artist names with ", ".
func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// smallestImage picks the URL of the smallest image by area. Album art
// in the queue renders as a thumbnail, so the smallest variant wins.
func smallestImage(images []spotify.Image) string {
	best := ""
	bestArea := -1
	for _, img := range images {
		area := int(img.Height) * int(img.Width)
		if bestArea == -1 || area < bestArea {
			best = img.URL
			bestArea = area
		}
	}
	return best
}

// releaseYear parses the year from a Spotify release date, which can be
// "2006", "2006-08" or "2006-08-25" depending on precision.
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0
	}
	return year
}
