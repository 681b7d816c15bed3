package db

import (
	"time"

	"github.com/google/uuid"
)

// Room represents a time-boxed event scope owned by a host. All
// requests, votes, and harvested data are partitioned by room.
type Room struct {
	ID        int64
	Code      string
	Name      string
	OwnerID   string
	IsActive  bool
	EventDate time.Time
	CreatedAt time.Time
}

// Guest represents a Spotify-connected guest profile. Guests who never
// connect Spotify exist only as cookie-carried ids and have no row.
type Guest struct {
	SpotifyID   string
	RoomID      *int64 // nil when detached from a room
	DisplayName string
	AvatarURL   *string
	ConnectedAt time.Time
}

// SongRequest represents a guest's song request in a room. At most one
// live request exists per (RoomID, TrackID).
type SongRequest struct {
	ID          uuid.UUID
	RoomID      int64
	GuestID     string
	TrackID     string
	Title       string
	Artist      string
	AlbumArt    *string
	Popularity  int
	ReleaseYear *int
	CreatedAt   time.Time
}

// Vote is a guest's single mutable choice on a request. A zero vote is
// represented by the absence of a row, never a stored zero.
type Vote struct {
	RequestID uuid.UUID
	GuestID   string
	Value     int
}

// HarvestedTrack is one entry of a guest's Spotify top-tracks snapshot,
// taken at connect time. Audio features are nil when Spotify had none.
type HarvestedTrack struct {
	RoomID       int64
	GuestID      string
	TrackID      string
	Title        string
	Artist       string
	ImageURL     *string
	Rank         int
	ReleaseYear  *int
	Energy       *float64
	Valence      *float64
	Danceability *float64
	Tempo        *float64
}

// HarvestedArtist is one entry of a guest's Spotify top-artists snapshot.
type HarvestedArtist struct {
	RoomID   int64
	GuestID  string
	ArtistID string
	Name     string
	ImageURL *string
	Genre    *string
	Rank     int
}

// CuratedClassic is a reference chart entry used to cross-check crowd
// listening history. Signature is the normalized "artist:::title" key.
type CuratedClassic struct {
	Signature string
	Category  string
	Title     string
	Artist    string
}
