package insights

import (
	"sort"

	"github.com/crowdqueue/crowdqueue/internal/db"
)

// TopLimit caps the top-artist and top-track lists.
const TopLimit = 10

// ArtistCount is an artist ranked by how many distinct guests have it
// in their listening history.
type ArtistCount struct {
	ArtistID string
	Name     string
	ImageURL string
	Guests   int
}

// TrackCount is a track ranked by how many distinct guests have it in
// their listening history.
type TrackCount struct {
	TrackID  string
	Title    string
	Artist   string
	ImageURL string
	Guests   int
}

// Vibe is the average audio-feature profile of a set of tracks.
type Vibe struct {
	Energy       float64
	Valence      float64
	Danceability float64
	Tempo        float64
}

// TopArtists ranks harvested artists by how many distinct guests have
// them in their history, grouped by artist name. A guest counts once
// per artist even when the input repeats the row.
func TopArtists(artists []db.HarvestedArtist) []ArtistCount {
	byName := make(map[string]*ArtistCount)
	counted := make(map[string]bool)
	for _, a := range artists {
		guestKey := a.GuestID + "\x00" + a.Name
		if counted[guestKey] {
			continue
		}
		counted[guestKey] = true

		entry, ok := byName[a.Name]
		if !ok {
			entry = &ArtistCount{ArtistID: a.ArtistID, Name: a.Name}
			if a.ImageURL != nil {
				entry.ImageURL = *a.ImageURL
			}
			byName[a.Name] = entry
		}
		entry.Guests++
	}

	out := make([]ArtistCount, 0, len(byName))
	for _, entry := range byName {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Guests != out[j].Guests {
			return out[i].Guests > out[j].Guests
		}
		return out[i].Name < out[j].Name
	})

	if len(out) > TopLimit {
		out = out[:TopLimit]
	}
	return out
}

// TopTracks ranks harvested tracks by distinct-guest count. A guest
// counts once per track even when the input repeats the row.
func TopTracks(tracks []db.HarvestedTrack) []TrackCount {
	byID := make(map[string]*TrackCount)
	counted := make(map[string]bool)
	for _, t := range tracks {
		guestKey := t.GuestID + "\x00" + t.TrackID
		if counted[guestKey] {
			continue
		}
		counted[guestKey] = true

		entry, ok := byID[t.TrackID]
		if !ok {
			entry = &TrackCount{TrackID: t.TrackID, Title: t.Title, Artist: t.Artist}
			if t.ImageURL != nil {
				entry.ImageURL = *t.ImageURL
			}
			byID[t.TrackID] = entry
		}
		entry.Guests++
	}

	out := make([]TrackCount, 0, len(byID))
	for _, entry := range byID {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Guests != out[j].Guests {
			return out[i].Guests > out[j].Guests
		}
		return out[i].Title < out[j].Title
	})

	if len(out) > TopLimit {
		out = out[:TopLimit]
	}
	return out
}

// DecadeHistogram counts harvested tracks per release decade. Tracks
// without a release year are excluded.
func DecadeHistogram(tracks []db.HarvestedTrack) map[int]int {
	hist := make(map[int]int)
	for _, t := range tracks {
		if t.ReleaseYear == nil {
			continue
		}
		hist[decadeOf(*t.ReleaseYear)]++
	}
	return hist
}

// VibeAverages averages the audio features of tracks that have them.
// The second return is false when no track qualifies; callers must
// report "unavailable" rather than a misleading zero vibe.
func VibeAverages(tracks []db.HarvestedTrack) (Vibe, bool) {
	var sum Vibe
	var n int
	for _, t := range tracks {
		if t.Energy == nil || t.Valence == nil || t.Danceability == nil || t.Tempo == nil {
			continue
		}
		sum.Energy += *t.Energy
		sum.Valence += *t.Valence
		sum.Danceability += *t.Danceability
		sum.Tempo += *t.Tempo
		n++
	}
	if n == 0 {
		return Vibe{}, false
	}
	return Vibe{
		Energy:       sum.Energy / float64(n),
		Valence:      sum.Valence / float64(n),
		Danceability: sum.Danceability / float64(n),
		Tempo:        sum.Tempo / float64(n),
	}, true
}

// TrendScore measures how chart-aligned the crowd's history is: the
// percentage of unique song signatures that appear in the reference
// chart, rounded to the nearest integer. No signatures at all scores
// 0, not an error.
func TrendScore(tracks []db.HarvestedTrack, chart map[string]bool) int {
	unique := make(map[string]bool)
	for _, t := range tracks {
		unique[Signature(t.Artist, t.Title)] = true
	}
	if len(unique) == 0 {
		return 0
	}

	matches := 0
	for sig := range unique {
		if chart[sig] {
			matches++
		}
	}
	return (matches*100 + len(unique)/2) / len(unique)
}

func decadeOf(year int) int {
	return year / 10 * 10
}
