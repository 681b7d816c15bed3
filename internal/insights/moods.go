package insights

import (
	"sort"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/crowdqueue/crowdqueue/internal/db"
)

// MoodConfig holds mood-clustering parameters.
type MoodConfig struct {
	NumClusters    int // Number of clusters to create (default: 3)
	MinClusterSize int // Smaller clusters are dropped from the result
}

// DefaultMoodConfig returns the recommended default configuration.
func DefaultMoodConfig() MoodConfig {
	return MoodConfig{
		NumClusters:    3,
		MinClusterSize: 3,
	}
}

// MoodCluster is a group of harvested tracks with a similar vibe.
type MoodCluster struct {
	Name     string
	Centroid Vibe
	Tracks   []db.HarvestedTrack
}

// trackObservation wraps a harvested track to implement the
// clusters.Observation interface.
type trackObservation struct {
	track  *db.HarvestedTrack
	coords clusters.Coordinates
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// MoodClusters groups the room's harvested tracks by audio-feature
// similarity using k-means on energy, valence, and danceability.
// Tracks missing features are skipped; when too few tracks qualify, or
// clustering fails, the result is simply empty.
func MoodClusters(tracks []db.HarvestedTrack, cfg MoodConfig) []MoodCluster {
	if cfg.NumClusters <= 0 {
		cfg.NumClusters = DefaultMoodConfig().NumClusters
	}

	var obs clusters.Observations
	for i := range tracks {
		t := &tracks[i]
		if t.Energy == nil || t.Valence == nil || t.Danceability == nil {
			continue
		}
		obs = append(obs, trackObservation{
			track:  t,
			coords: clusters.Coordinates{*t.Energy, *t.Valence, *t.Danceability},
		})
	}
	if len(obs) < cfg.NumClusters {
		return nil
	}

	km := kmeans.New()
	result, err := km.Partition(obs, cfg.NumClusters)
	if err != nil {
		return nil
	}

	var moods []MoodCluster
	for _, cluster := range result {
		var clusterTracks []db.HarvestedTrack
		for _, o := range cluster.Observations {
			if to, ok := o.(trackObservation); ok {
				clusterTracks = append(clusterTracks, *to.track)
			}
		}
		if len(clusterTracks) < cfg.MinClusterSize {
			continue
		}

		centroid := Vibe{
			Energy:       cluster.Center[0],
			Valence:      cluster.Center[1],
			Danceability: cluster.Center[2],
		}
		moods = append(moods, MoodCluster{
			Name:     moodName(centroid),
			Centroid: centroid,
			Tracks:   clusterTracks,
		})
	}

	// Biggest cluster first.
	sort.Slice(moods, func(i, j int) bool {
		return len(moods[i].Tracks) > len(moods[j].Tracks)
	})
	return moods
}

// moodName labels a centroid using an energy/valence quadrant, with a
// dance-floor modifier when danceability dominates.
func moodName(c Vibe) string {
	highEnergy := c.Energy > 0.6
	highValence := c.Valence > 0.5

	var base string
	switch {
	case highEnergy && highValence:
		base = "Upbeat Party"
	case highEnergy && !highValence:
		base = "Intense & Dark"
	case !highEnergy && highValence:
		base = "Chill & Happy"
	default:
		base = "Reflective & Melancholy"
	}

	if c.Danceability > 0.75 {
		return base + " (Dance Floor)"
	}
	return base
}
