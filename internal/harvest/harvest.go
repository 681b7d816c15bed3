// Package harvest snapshots a guest's Spotify listening history into
// the room's insight tables at connect time.
package harvest

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/crowdqueue/crowdqueue/internal/db"
	"github.com/crowdqueue/crowdqueue/internal/spotify"
)

// DefaultTimeout bounds one background harvest run.
const DefaultTimeout = 30 * time.Second

// Fetcher is the slice of the Spotify client a harvest run needs.
type Fetcher interface {
	TopTracks(ctx context.Context) ([]spotify.Track, error)
	TopArtists(ctx context.Context) ([]spotify.Artist, error)
	AudioFeaturesFor(ctx context.Context, trackIDs []string) (map[string]spotify.AudioFeatures, error)
}

// Store is the harvest persistence.
type Store interface {
	UpsertTracks(ctx context.Context, tracks []db.HarvestedTrack) error
	UpsertArtists(ctx context.Context, artists []db.HarvestedArtist) error
	DeleteForGuest(ctx context.Context, roomID int64, guestID string) error
}

// Service runs listening-history harvests.
type Service struct {
	store    Store
	logger   *log.Logger
	timeout  time.Duration
	observer func(ok bool)
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout sets the per-run deadline for background harvests.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithObserver registers a callback invoked after each background run,
// used for metrics.
func WithObserver(fn func(ok bool)) Option {
	return func(s *Service) { s.observer = fn }
}

// New creates a harvest Service.
func New(store Store, logger *log.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		logger:   logger,
		timeout:  DefaultTimeout,
		observer: func(bool) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Go runs a harvest in the background. The connect flow must not block
// on Spotify's top-items endpoints, and a failed harvest only costs
// insight freshness, so errors are logged and dropped.
func (s *Service) Go(roomID int64, guestID string, client Fetcher) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		err := s.Run(ctx, roomID, guestID, client)
		s.observer(err == nil)
		if err != nil {
			s.logger.Warn("harvest failed", "room", roomID, "guest", guestID, "err", err)
			return
		}
		s.logger.Info("harvest complete", "room", roomID, "guest", guestID)
	}()
}

// Run fetches the guest's medium-term top tracks and artists, enriches
// tracks with audio features, and upserts the snapshot. Reconnecting
// overwrites the previous snapshot row by row.
func (s *Service) Run(ctx context.Context, roomID int64, guestID string, client Fetcher) error {
	tracks, err := client.TopTracks(ctx)
	if err != nil {
		return fmt.Errorf("fetching top tracks: %w", err)
	}
	artists, err := client.TopArtists(ctx)
	if err != nil {
		return fmt.Errorf("fetching top artists: %w", err)
	}

	var features map[string]spotify.AudioFeatures
	if len(tracks) > 0 {
		ids := make([]string, len(tracks))
		for i, t := range tracks {
			ids[i] = t.ID
		}
		features, err = client.AudioFeaturesFor(ctx, ids)
		if err != nil {
			// Vibe averages degrade to "unavailable" without features;
			// the snapshot itself is still worth keeping.
			s.logger.Warn("audio features unavailable", "guest", guestID, "err", err)
			features = nil
		}
	}

	if len(tracks) > 0 {
		rows := make([]db.HarvestedTrack, len(tracks))
		for i, t := range tracks {
			rows[i] = convertTrack(roomID, guestID, i+1, t, features)
		}
		if err := s.store.UpsertTracks(ctx, rows); err != nil {
			return fmt.Errorf("storing harvested tracks: %w", err)
		}
	}

	if len(artists) > 0 {
		rows := make([]db.HarvestedArtist, len(artists))
		for i, a := range artists {
			rows[i] = convertArtist(roomID, guestID, i+1, a)
		}
		if err := s.store.UpsertArtists(ctx, rows); err != nil {
			return fmt.Errorf("storing harvested artists: %w", err)
		}
	}

	return nil
}

// Forget removes the guest's harvested snapshot for the room, used when
// a guest disconnects or leaves.
func (s *Service) Forget(ctx context.Context, roomID int64, guestID string) error {
	if err := s.store.DeleteForGuest(ctx, roomID, guestID); err != nil {
		return fmt.Errorf("deleting harvested data: %w", err)
	}
	return nil
}

func convertTrack(roomID int64, guestID string, rank int, t spotify.Track, features map[string]spotify.AudioFeatures) db.HarvestedTrack {
	row := db.HarvestedTrack{
		RoomID:  roomID,
		GuestID: guestID,
		TrackID: t.ID,
		Title:   t.Title,
		Artist:  t.Artist,
		Rank:    rank,
	}
	if t.AlbumArt != "" {
		art := t.AlbumArt
		row.ImageURL = &art
	}
	if t.ReleaseYear != 0 {
		year := t.ReleaseYear
		row.ReleaseYear = &year
	}
	if f, ok := features[t.ID]; ok {
		row.Energy = &f.Energy
		row.Valence = &f.Valence
		row.Danceability = &f.Danceability
		row.Tempo = &f.Tempo
	}
	return row
}

func convertArtist(roomID int64, guestID string, rank int, a spotify.Artist) db.HarvestedArtist {
	row := db.HarvestedArtist{
		RoomID:   roomID,
		GuestID:  guestID,
		ArtistID: a.ID,
		Name:     a.Name,
		Rank:     rank,
	}
	if a.ImageURL != "" {
		img := a.ImageURL
		row.ImageURL = &img
	}
	if len(a.Genres) > 0 {
		genre := a.Genres[0]
		row.Genre = &genre
	}
	return row
}
