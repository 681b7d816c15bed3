// Package queue implements the per-room song request queue: ranked
// reads, duplicate-aware submission, and the vote write path.
package queue

import (
	"sort"

	"github.com/google/uuid"

	"github.com/crowdqueue/crowdqueue/internal/db"
)

// RankedRequest is a song request annotated with its crowd score.
type RankedRequest struct {
	db.SongRequest

	// Score is the sum of vote values, zero when nobody voted.
	Score int
	// MyVote is the viewing guest's own vote (-1, 0, 1).
	MyVote int
}

// Rank orders requests for display: score descending, then track
// popularity descending, then submission time ascending. The sort is
// stable, so equally-ranked requests keep their input order.
func Rank(requests []db.SongRequest, votes []db.Vote) []RankedRequest {
	scores := make(map[uuid.UUID]int, len(requests))
	for _, v := range votes {
		scores[v.RequestID] += v.Value
	}

	ranked := make([]RankedRequest, len(requests))
	for i, req := range requests {
		ranked[i] = RankedRequest{SongRequest: req, Score: scores[req.ID]}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Popularity != b.Popularity {
			return a.Popularity > b.Popularity
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	return ranked
}
