package insights

import (
	"sort"

	"github.com/crowdqueue/crowdqueue/internal/db"
)

// pickLimit caps each report list.
const pickLimit = 10

// Pick is a song surfaced by the vibe report, with how many guests
// back it.
type Pick struct {
	Title  string
	Artist string
	Count  int
}

// Report is the host-facing vibe report for a room.
type Report struct {
	// WinningDecade is 0 when no track carries a release year.
	WinningDecade int
	// SureThings were explicitly requested and sit in guests' history.
	SureThings []Pick
	// HiddenGems recur in history (2+ guests) but nobody requested.
	HiddenGems []Pick
	// VerifiedBangers recur in history and match the curated classics.
	VerifiedBangers []Pick
}

// BuildReport derives the vibe report from the room's requests, the
// harvested history, and the curated classics reference.
func BuildReport(requests []db.SongRequest, history []db.HarvestedTrack, classics []db.CuratedClassic) *Report {
	requested := make(map[string]bool, len(requests))
	for _, r := range requests {
		requested[Signature(r.Artist, r.Title)] = true
	}

	classicSigs := make(map[string]bool, len(classics))
	for _, c := range classics {
		classicSigs[c.Signature] = true
	}

	type tally struct {
		title  string
		artist string
		count  int
	}
	historyBySig := make(map[string]*tally)
	for _, t := range history {
		sig := Signature(t.Artist, t.Title)
		entry, ok := historyBySig[sig]
		if !ok {
			entry = &tally{title: t.Title, artist: t.Artist}
			historyBySig[sig] = entry
		}
		entry.count++
	}

	report := &Report{WinningDecade: winningDecade(requests, history)}
	for sig, entry := range historyBySig {
		pick := Pick{Title: entry.title, Artist: entry.artist, Count: entry.count}
		switch {
		case requested[sig]:
			report.SureThings = append(report.SureThings, pick)
		case entry.count > 1 && classicSigs[sig]:
			report.VerifiedBangers = append(report.VerifiedBangers, pick)
		case entry.count > 1:
			report.HiddenGems = append(report.HiddenGems, pick)
		}
	}

	sortPicks(report.SureThings)
	sortPicks(report.HiddenGems)
	sortPicks(report.VerifiedBangers)
	report.SureThings = capPicks(report.SureThings)
	report.HiddenGems = capPicks(report.HiddenGems)
	report.VerifiedBangers = capPicks(report.VerifiedBangers)
	return report
}

// winningDecade finds the decade the room leans toward. Explicit
// requests are a stronger signal than passive history, so they count
// double.
func winningDecade(requests []db.SongRequest, history []db.HarvestedTrack) int {
	weights := make(map[int]int)
	for _, r := range requests {
		if r.ReleaseYear != nil {
			weights[decadeOf(*r.ReleaseYear)] += 2
		}
	}
	for _, t := range history {
		if t.ReleaseYear != nil {
			weights[decadeOf(*t.ReleaseYear)]++
		}
	}

	best, bestWeight := 0, 0
	for decade, weight := range weights {
		if weight > bestWeight || (weight == bestWeight && decade > best) {
			best, bestWeight = decade, weight
		}
	}
	return best
}

func sortPicks(picks []Pick) {
	sort.Slice(picks, func(i, j int) bool {
		if picks[i].Count != picks[j].Count {
			return picks[i].Count > picks[j].Count
		}
		return picks[i].Title < picks[j].Title
	})
}

func capPicks(picks []Pick) []Pick {
	if len(picks) > pickLimit {
		return picks[:pickLimit]
	}
	return picks
}
