// Package insights computes crowd-level aggregations over harvested
// listening snapshots and the room's request queue.
package insights

import "strings"

// suffixMarkers cut off the junk Spotify appends to track titles, such
// as " - Remastered 2011", " (feat. X)" and " [Deluxe Edition]".
var suffixMarkers = []string{" -", " (", " ["}

// Signature builds the normalized identity key for a song, so the same
// recording matches across releases: lowercase, trimmed, title suffixes
// stripped, joined as "artist:::title".
func Signature(artist, title string) string {
	return normalize(artist) + ":::" + normalize(title)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, marker := range suffixMarkers {
		if i := strings.Index(s, marker); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
