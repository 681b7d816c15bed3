package insights

import (
	"fmt"
	"testing"

	"github.com/crowdqueue/crowdqueue/internal/db"
)

func TestMoodClustersSeparatesVibes(t *testing.T) {
	var tracks []db.HarvestedTrack
	// Two tight groups: a high-energy dance block and a mellow block.
	for i := range 5 {
		jitter := float64(i) * 0.01
		tracks = append(tracks, withVibe(
			harvestedTrack("g1", fmt.Sprintf("up%d", i), "Up", "X"),
			0.9-jitter, 0.8+jitter, 0.9-jitter, 128))
	}
	for i := range 5 {
		jitter := float64(i) * 0.01
		tracks = append(tracks, withVibe(
			harvestedTrack("g1", fmt.Sprintf("down%d", i), "Down", "Y"),
			0.2+jitter, 0.2+jitter, 0.3-jitter, 80))
	}

	moods := MoodClusters(tracks, MoodConfig{NumClusters: 2, MinClusterSize: 2})
	if len(moods) != 2 {
		t.Fatalf("got %d clusters", len(moods))
	}
	for _, m := range moods {
		if len(m.Tracks) != 5 {
			t.Errorf("cluster %q has %d tracks, groups should not mix", m.Name, len(m.Tracks))
		}
	}
}

func TestMoodClustersSkipsFeaturelessTracks(t *testing.T) {
	tracks := []db.HarvestedTrack{
		harvestedTrack("g1", "t1", "A", "X"),
		harvestedTrack("g1", "t2", "B", "X"),
		harvestedTrack("g1", "t3", "C", "X"),
	}

	if moods := MoodClusters(tracks, DefaultMoodConfig()); moods != nil {
		t.Errorf("featureless input produced clusters: %v", moods)
	}
}

func TestMoodClustersTooFewTracks(t *testing.T) {
	tracks := []db.HarvestedTrack{
		withVibe(harvestedTrack("g1", "t1", "A", "X"), 0.5, 0.5, 0.5, 100),
	}

	if moods := MoodClusters(tracks, DefaultMoodConfig()); moods != nil {
		t.Errorf("undersized input produced clusters: %v", moods)
	}
}

func TestMoodName(t *testing.T) {
	tests := []struct {
		name string
		vibe Vibe
		want string
	}{
		{"upbeat party", Vibe{Energy: 0.8, Valence: 0.7}, "Upbeat Party"},
		{"intense dark", Vibe{Energy: 0.8, Valence: 0.3}, "Intense & Dark"},
		{"chill happy", Vibe{Energy: 0.3, Valence: 0.7}, "Chill & Happy"},
		{"melancholy", Vibe{Energy: 0.3, Valence: 0.3}, "Reflective & Melancholy"},
		{"dance modifier", Vibe{Energy: 0.8, Valence: 0.7, Danceability: 0.9}, "Upbeat Party (Dance Floor)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := moodName(tt.vibe); got != tt.want {
				t.Errorf("moodName(%+v) = %q, want %q", tt.vibe, got, tt.want)
			}
		})
	}
}
