package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/crowdqueue/crowdqueue/internal/db"
)

func req(id uuid.UUID, popularity int, createdAt time.Time) db.SongRequest {
	return db.SongRequest{ID: id, Popularity: popularity, CreatedAt: createdAt}
}

func TestRankOrdersByScoreThenPopularityThenAge(t *testing.T) {
	base := time.Date(2026, 6, 1, 21, 0, 0, 0, time.UTC)
	idA, idB, idC := uuid.New(), uuid.New(), uuid.New()

	// A: score 1, popularity 80. B: score 2, popularity 10.
	// C: score 1, popularity 80, submitted after A.
	requests := []db.SongRequest{
		req(idA, 80, base),
		req(idB, 10, base.Add(time.Minute)),
		req(idC, 80, base.Add(2*time.Minute)),
	}
	votes := []db.Vote{
		{RequestID: idA, GuestID: "g1", Value: 1},
		{RequestID: idB, GuestID: "g1", Value: 1},
		{RequestID: idB, GuestID: "g2", Value: 1},
		{RequestID: idC, GuestID: "g2", Value: 1},
	}

	ranked := Rank(requests, votes)

	want := []uuid.UUID{idB, idA, idC}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Fatalf("position %d = %s, want %s (order %v)", i, ranked[i].ID, id, rankedIDs(ranked))
		}
	}
	if ranked[0].Score != 2 || ranked[1].Score != 1 {
		t.Errorf("scores = %d, %d", ranked[0].Score, ranked[1].Score)
	}
}

func TestRankDownvotesLowerScore(t *testing.T) {
	idA, idB := uuid.New(), uuid.New()
	base := time.Now()

	requests := []db.SongRequest{req(idA, 50, base), req(idB, 50, base.Add(time.Second))}
	votes := []db.Vote{
		{RequestID: idA, GuestID: "g1", Value: -1},
		{RequestID: idA, GuestID: "g2", Value: -1},
		{RequestID: idB, GuestID: "g1", Value: -1},
		{RequestID: idB, GuestID: "g2", Value: 1},
	}

	ranked := Rank(requests, votes)
	if ranked[0].ID != idB || ranked[0].Score != 0 {
		t.Errorf("top = (%s, %d), want B with score 0", ranked[0].ID, ranked[0].Score)
	}
	if ranked[1].Score != -2 {
		t.Errorf("bottom score = %d, want -2", ranked[1].Score)
	}
}

func TestRankUnvotedFallsBackToPopularity(t *testing.T) {
	idA, idB := uuid.New(), uuid.New()
	base := time.Now()

	// B is newer but more popular; with no votes popularity decides.
	ranked := Rank([]db.SongRequest{
		req(idA, 30, base),
		req(idB, 90, base.Add(time.Hour)),
	}, nil)

	if ranked[0].ID != idB {
		t.Errorf("top = %s, want the more popular track", ranked[0].ID)
	}
}

func TestRankFullTieBreaksOnAge(t *testing.T) {
	idOld, idNew := uuid.New(), uuid.New()
	base := time.Now()

	ranked := Rank([]db.SongRequest{
		req(idNew, 50, base.Add(time.Minute)),
		req(idOld, 50, base),
	}, nil)

	if ranked[0].ID != idOld {
		t.Errorf("top = %s, want the older request", ranked[0].ID)
	}
}

func TestRankEmpty(t *testing.T) {
	if got := Rank(nil, nil); len(got) != 0 {
		t.Errorf("Rank(nil, nil) = %v", got)
	}
}

func rankedIDs(ranked []RankedRequest) []uuid.UUID {
	ids := make([]uuid.UUID, len(ranked))
	for i, r := range ranked {
		ids[i] = r.ID
	}
	return ids
}
