package insights

import (
	"testing"

	"github.com/crowdqueue/crowdqueue/internal/db"
)

func request(title, artist string, year *int) db.SongRequest {
	return db.SongRequest{Title: title, Artist: artist, ReleaseYear: year}
}

func yearPtr(y int) *int { return &y }

func TestBuildReportCategories(t *testing.T) {
	requests := []db.SongRequest{
		request("Dancing Queen", "ABBA", yearPtr(1976)),
	}
	history := []db.HarvestedTrack{
		// Requested and in history: sure thing.
		harvestedTrack("g1", "t1", "Dancing Queen", "ABBA"),
		// In two guests' history, not requested, a classic: verified banger.
		harvestedTrack("g1", "t2", "Mr. Brightside", "The Killers"),
		harvestedTrack("g2", "t2b", "Mr. Brightside - Live", "The Killers"),
		// In two guests' history, not requested, not a classic: hidden gem.
		harvestedTrack("g1", "t3", "Obscure Banger", "Deep Cut"),
		harvestedTrack("g2", "t3", "Obscure Banger", "Deep Cut"),
		// Single listener, unrequested: surfaces nowhere.
		harvestedTrack("g1", "t4", "One Off", "Nobody"),
	}
	classics := []db.CuratedClassic{
		{Signature: Signature("The Killers", "Mr. Brightside"), Category: "wedding"},
	}

	report := BuildReport(requests, history, classics)

	if len(report.SureThings) != 1 || report.SureThings[0].Title != "Dancing Queen" {
		t.Errorf("SureThings = %+v", report.SureThings)
	}
	if len(report.VerifiedBangers) != 1 || report.VerifiedBangers[0].Title != "Mr. Brightside" {
		t.Errorf("VerifiedBangers = %+v", report.VerifiedBangers)
	}
	if report.VerifiedBangers[0].Count != 2 {
		t.Errorf("banger count = %d, variant titles should collapse", report.VerifiedBangers[0].Count)
	}
	if len(report.HiddenGems) != 1 || report.HiddenGems[0].Title != "Obscure Banger" {
		t.Errorf("HiddenGems = %+v", report.HiddenGems)
	}
}

func TestWinningDecadeWeighsRequestsDouble(t *testing.T) {
	// Two 90s requests (weight 4) against three 2010s history tracks
	// (weight 3).
	requests := []db.SongRequest{
		request("A", "X", yearPtr(1995)),
		request("B", "Y", yearPtr(1992)),
	}
	history := []db.HarvestedTrack{
		withYear(harvestedTrack("g1", "t1", "C", "Z"), 2012),
		withYear(harvestedTrack("g1", "t2", "D", "Z"), 2014),
		withYear(harvestedTrack("g2", "t3", "E", "Z"), 2017),
	}

	report := BuildReport(requests, history, nil)
	if report.WinningDecade != 1990 {
		t.Errorf("WinningDecade = %d, want 1990", report.WinningDecade)
	}
}

func TestWinningDecadeUnknown(t *testing.T) {
	history := []db.HarvestedTrack{
		harvestedTrack("g1", "t1", "A", "X"), // no release year
	}

	report := BuildReport(nil, history, nil)
	if report.WinningDecade != 0 {
		t.Errorf("WinningDecade = %d, want 0 when nothing is dated", report.WinningDecade)
	}
}
