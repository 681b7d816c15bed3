package spotify

// Track is the slice of Spotify track metadata the rest of the system
// cares about.
type Track struct {
	ID          string
	Title       string
	Artist      string // Comma-separated artist names
	AlbumArt    string // Smallest album image URL, "" when none
	Popularity  int
	ReleaseYear int // 0 when Spotify reports no usable release date
}

// Artist is a listener's top artist.
type Artist struct {
	ID         string
	Name       string
	Genres     []string
	ImageURL   string
	Popularity int
}

// Profile is the authenticated user's public profile.
type Profile struct {
	ID          string
	DisplayName string
	AvatarURL   string
}

// AudioFeatures carries the vibe dimensions used by the insight
// aggregations.
type AudioFeatures struct {
	Energy       float64
	Valence      float64
	Danceability float64
	Tempo        float64
}
