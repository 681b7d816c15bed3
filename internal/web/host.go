package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/crowdqueue/crowdqueue/internal/db"
	"github.com/crowdqueue/crowdqueue/internal/insights"
	"github.com/crowdqueue/crowdqueue/internal/session"
)

type createRoomRequest struct {
	Name      string    `json:"name"`
	EventDate time.Time `json:"eventDate"`
}

type hostRoomResponse struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	EventDate time.Time `json:"eventDate"`
	CreatedAt time.Time `json:"createdAt"`
}

func hostRoom(room *db.Room) hostRoomResponse {
	return hostRoomResponse{
		ID:        room.ID,
		Code:      room.Code,
		Name:      room.Name,
		IsActive:  room.IsActive,
		EventDate: room.EventDate,
		CreatedAt: room.CreatedAt,
	}
}

// CreateRoom makes a new room owned by the caller's guest identity.
func (h *Handlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var body createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{"a room name is required"})
		return
	}
	if body.EventDate.IsZero() {
		body.EventDate = time.Now()
	}

	s, err := h.ensureGuest(w, r, "")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	room, err := h.rooms.Create(r.Context(), s.GuestID, body.Name, body.EventDate)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.metrics.RecordRoomCreated()
	writeJSON(w, http.StatusCreated, hostRoom(room))
}

// ListRooms returns the caller's rooms.
func (h *Handlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	s := session.FromRequest(r)
	if s.GuestID == "" {
		writeJSON(w, http.StatusOK, []hostRoomResponse{})
		return
	}

	list, err := h.rooms.ListForOwner(r.Context(), s.GuestID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]hostRoomResponse, len(list))
	for i := range list {
		out[i] = hostRoom(&list[i])
	}
	writeJSON(w, http.StatusOK, out)
}

type roomDetailResponse struct {
	hostRoomResponse
	Guests   int `json:"guests"`
	Requests int `json:"requests"`
}

// RoomDetail returns one of the caller's rooms with live counts.
func (h *Handlers) RoomDetail(w http.ResponseWriter, r *http.Request) {
	room, ok := h.ownedRoomFromPath(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	guests, err := h.database.Guests().CountByRoom(ctx, room.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	requests, err := h.database.Requests().CountByRoom(ctx, room.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, roomDetailResponse{
		hostRoomResponse: hostRoom(room),
		Guests:           guests,
		Requests:         requests,
	})
}

type vibeResponse struct {
	Available    bool    `json:"available"`
	Energy       float64 `json:"energy,omitempty"`
	Valence      float64 `json:"valence,omitempty"`
	Danceability float64 `json:"danceability,omitempty"`
	Tempo        float64 `json:"tempo,omitempty"`
}

type moodResponse struct {
	Name   string `json:"name"`
	Tracks int    `json:"tracks"`
}

type insightsResponse struct {
	TopArtists []insights.ArtistCount `json:"topArtists"`
	TopTracks  []insights.TrackCount  `json:"topTracks"`
	Decades    map[int]int            `json:"decades"`
	Vibe       vibeResponse           `json:"vibe"`
	TrendScore int                    `json:"trendScore"`
	Moods      []moodResponse         `json:"moods"`
}

// Insights aggregates the room's harvested snapshots into the crowd
// picture: who the guests listen to, what decades they lean toward,
// the average vibe, chart alignment, and mood clusters.
func (h *Handlers) Insights(w http.ResponseWriter, r *http.Request) {
	room, ok := h.ownedRoomFromPath(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	tracks, err := h.database.Harvest().TracksByRoom(ctx, room.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	artists, err := h.database.Harvest().ArtistsByRoom(ctx, room.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp := insightsResponse{
		TopArtists: insights.TopArtists(artists),
		TopTracks:  insights.TopTracks(tracks),
		Decades:    insights.DecadeHistogram(tracks),
	}

	if vibe, ok := insights.VibeAverages(tracks); ok {
		resp.Vibe = vibeResponse{
			Available:    true,
			Energy:       vibe.Energy,
			Valence:      vibe.Valence,
			Danceability: vibe.Danceability,
			Tempo:        vibe.Tempo,
		}
	}

	// Chart comparison rides on the app token; a chart outage costs the
	// trend score, not the whole insight view.
	if chart, err := h.appClient(ctx).ChartTracks(ctx); err != nil {
		h.logger.Warn("chart fetch failed", "err", err)
	} else {
		sigs := make(map[string]bool, len(chart))
		for _, t := range chart {
			sigs[insights.Signature(t.Artist, t.Title)] = true
		}
		resp.TrendScore = insights.TrendScore(tracks, sigs)
	}

	for _, mood := range insights.MoodClusters(tracks, insights.DefaultMoodConfig()) {
		resp.Moods = append(resp.Moods, moodResponse{Name: mood.Name, Tracks: len(mood.Tracks)})
	}

	writeJSON(w, http.StatusOK, resp)
}

type reportResponse struct {
	WinningDecade   int             `json:"winningDecade,omitempty"`
	SureThings      []insights.Pick `json:"sureThings"`
	HiddenGems      []insights.Pick `json:"hiddenGems"`
	VerifiedBangers []insights.Pick `json:"verifiedBangers"`
}

// Report builds the host's pre-party vibe report.
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	room, ok := h.ownedRoomFromPath(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	requests, err := h.database.Requests().ListByRoom(ctx, room.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	history, err := h.database.Harvest().TracksByRoom(ctx, room.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	classics, err := h.database.Classics().All(ctx)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	report := insights.BuildReport(requests, history, classics)
	writeJSON(w, http.StatusOK, reportResponse{
		WinningDecade:   report.WinningDecade,
		SureThings:      report.SureThings,
		HiddenGems:      report.HiddenGems,
		VerifiedBangers: report.VerifiedBangers,
	})
}

// HostRemoveRequest lets the room owner prune any request.
func (h *Handlers) HostRemoveRequest(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.ownedRoomFromPath(w, r); !ok {
		return
	}

	requestID, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{"invalid request id"})
		return
	}

	s := session.FromRequest(r)
	if err := h.queue.Remove(r.Context(), s.GuestID, requestID, true); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// ownedRoomFromPath resolves {code} and requires the caller to own it.
func (h *Handlers) ownedRoomFromPath(w http.ResponseWriter, r *http.Request) (*db.Room, bool) {
	s := session.FromRequest(r)
	if s.GuestID == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody{"no guest session"})
		return nil, false
	}

	room, err := h.rooms.ForOwner(r.Context(), chi.URLParam(r, "code"), s.GuestID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{"no such room"})
		return nil, false
	}
	return room, true
}
