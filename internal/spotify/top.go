package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

const (
	// topLimit is the page size for top-item fetches (Spotify max 50).
	topLimit = 50
	// maxFeaturesPerRequest is the audio-features batch cap.
	maxFeaturesPerRequest = 100
)

// TopTracks returns the user's medium-term top tracks, up to 50.
func (c *Client) TopTracks(ctx context.Context) ([]Track, error) {
	page, err := c.api.CurrentUsersTopTracks(ctx,
		spotify.Limit(topLimit), spotify.Timerange(spotify.MediumTermRange))
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks: %w", err)
	}

	tracks := make([]Track, 0, len(page.Tracks))
	for _, t := range page.Tracks {
		tracks = append(tracks, convertTrack(t))
	}
	return tracks, nil
}

// TopArtists returns the user's medium-term top artists, up to 50.
func (c *Client) TopArtists(ctx context.Context) ([]Artist, error) {
	page, err := c.api.CurrentUsersTopArtists(ctx,
		spotify.Limit(topLimit), spotify.Timerange(spotify.MediumTermRange))
	if err != nil {
		return nil, fmt.Errorf("fetching top artists: %w", err)
	}

	artists := make([]Artist, 0, len(page.Artists))
	for _, a := range page.Artists {
		artists = append(artists, convertArtist(a))
	}
	return artists, nil
}

// AudioFeaturesFor fetches audio features keyed by track ID. Tracks
// Spotify has no analysis for are absent from the result, not errors.
func (c *Client) AudioFeaturesFor(ctx context.Context, trackIDs []string) (map[string]AudioFeatures, error) {
	features := make(map[string]AudioFeatures, len(trackIDs))

	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	for i := 0; i < len(ids); i += maxFeaturesPerRequest {
		end := min(i+maxFeaturesPerRequest, len(ids))

		batch, err := c.api.GetAudioFeatures(ctx, ids[i:end]...)
		if err != nil {
			return nil, fmt.Errorf("fetching audio features (batch %d-%d): %w", i+1, end, err)
		}
		for _, f := range batch {
			if f == nil {
				continue
			}
			features[f.ID.String()] = AudioFeatures{
				Energy:       float64(f.Energy),
				Valence:      float64(f.Valence),
				Danceability: float64(f.Danceability),
				Tempo:        float64(f.Tempo),
			}
		}
	}
	return features, nil
}

// convertArtist converts a Spotify FullArtist to an Artist.
func convertArtist(a spotify.FullArtist) Artist {
	return Artist{
		ID:         a.ID.String(),
		Name:       a.Name,
		Genres:     a.Genres,
		ImageURL:   smallestImage(a.Images),
		Popularity: int(a.Popularity),
	}
}
