package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/zmb3/spotify/v2"
)

// Editorial Top 50 playlists. Spotify occasionally region-gates or
// retires these, hence the fallback chain.
const (
	usTop50Playlist     = "37i9dQZEVXbLRQDuF5jeBp"
	globalTop50Playlist = "37i9dQZEVXbMDoHDwVN2tF"
)

// ChartTracks returns the current US Top 50 playlist, falling back to
// the Global Top 50 when the US chart is not available.
func (c *Client) ChartTracks(ctx context.Context) ([]Track, error) {
	tracks, err := c.playlistTracks(ctx, usTop50Playlist)
	if isNotFound(err) {
		return c.playlistTracks(ctx, globalTop50Playlist)
	}
	return tracks, err
}

func (c *Client) playlistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, fmt.Errorf("fetching playlist %s: %w", playlistID, err)
	}

	tracks := make([]Track, 0, len(page.Items))
	for _, item := range page.Items {
		// Episodes and local files carry no track.
		if item.Track.Track == nil {
			continue
		}
		tracks = append(tracks, convertTrack(*item.Track.Track))
	}
	return tracks, nil
}

func isNotFound(err error) bool {
	var spErr spotify.Error
	return errors.As(err, &spErr) && spErr.Status == http.StatusNotFound
}
