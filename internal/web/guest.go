package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/crowdqueue/crowdqueue/internal/db"
	"github.com/crowdqueue/crowdqueue/internal/oauthstate"
	"github.com/crowdqueue/crowdqueue/internal/queue"
	"github.com/crowdqueue/crowdqueue/internal/session"
	"github.com/crowdqueue/crowdqueue/internal/spotify"
	"github.com/crowdqueue/crowdqueue/internal/tokens"
)

type sessionResponse struct {
	GuestID   string `json:"guestId"`
	RoomCode  string `json:"roomCode,omitempty"`
	Connected bool   `json:"connected"`
	Token     string `json:"tokenState"`
}

// GuestSession reports the caller's session as the cookies tell it.
func (h *Handlers) GuestSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.ensureGuest(w, r, "")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		GuestID:   s.GuestID,
		RoomCode:  s.RoomCode,
		Connected: s.Connected(),
		Token:     tokens.StateOf(s.Credential, time.Now()).String(),
	})
}

type joinRequest struct {
	Code string `json:"code"`
}

type roomResponse struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	EventDate time.Time `json:"eventDate"`
}

// JoinRoom puts the guest in the room behind a join code.
func (h *Handlers) JoinRoom(w http.ResponseWriter, r *http.Request) {
	var body joinRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Code == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{"a room code is required"})
		return
	}

	s, err := h.ensureGuest(w, r, "")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	room, err := h.rooms.ByCode(r.Context(), body.Code)
	if err != nil || !room.IsActive {
		writeJSON(w, http.StatusNotFound, errorBody{"no active room with that code"})
		return
	}

	s.RoomID = room.ID
	s.RoomCode = room.Code
	h.writer.WriteIdentity(w, s)

	writeJSON(w, http.StatusOK, roomResponse{
		Code:      room.Code,
		Name:      room.Name,
		EventDate: room.EventDate,
	})
}

// LeaveRoom detaches the guest from their room and drops the harvested
// snapshot they contributed to it.
func (h *Handlers) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	s := session.FromRequest(r)
	if s.InRoom() {
		if err := h.harvest.Forget(r.Context(), s.RoomID, s.GuestID); err != nil {
			h.logger.Warn("forgetting harvest on leave", "guest", s.GuestID, "err", err)
		}
	}
	h.writer.ClearRoom(w)
	writeJSON(w, http.StatusOK, nil)
}

// SpotifyLogin starts the guest OAuth flow. The state token carries the
// guest identity and room code across the provider round trip, so a
// guest without a room is sent back to join one instead of being handed
// a state the callback would reject.
func (h *Handlers) SpotifyLogin(w http.ResponseWriter, r *http.Request) {
	roomCode := r.URL.Query().Get("room")
	s, err := h.ensureGuest(w, r, roomCode)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if !s.InRoom() {
		http.Redirect(w, r, h.baseURL+"/?join=required", http.StatusFound)
		return
	}

	state := oauthstate.Encode(s.GuestID, s.RoomCode)
	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusFound)
}

// SpotifyCallback finishes the OAuth flow: validates state, exchanges
// the code, seals the tokens into cookies, records the guest profile,
// and kicks off the history harvest in the background.
func (h *Handlers) SpotifyCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if denied := q.Get("error"); denied != "" {
		h.logger.Info("guest declined spotify authorization", "reason", denied)
		http.Redirect(w, r, h.baseURL+"/?spotify=declined", http.StatusFound)
		return
	}

	payload, err := oauthstate.Decode(q.Get("state"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{"invalid state token"})
		return
	}

	tok, err := h.auth.Exchange(ctx, q.Get("code"))
	if err != nil {
		h.logger.Error("code exchange failed", "err", err)
		writeJSON(w, http.StatusBadGateway, errorBody{"spotify authorization failed"})
		return
	}

	// Rebuild the session from the state payload, not from cookies:
	// some in-app browsers drop cookies across the provider redirect.
	s := session.FromRequest(r)
	if s.GuestID == "" {
		s.GuestID = payload.GuestID
	}
	if _, err := h.resolver.Resolve(ctx, s, payload.RoomCode); err != nil {
		writeError(w, h.logger, err)
		return
	}

	cred, err := h.tokens.EncryptToken(tok)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	s.Credential = cred
	h.writer.WriteIdentity(w, s)
	h.writer.WriteCredential(w, cred)

	client := spotify.NewWithToken(ctx, tok.AccessToken)
	if profile, err := client.Profile(ctx); err != nil {
		h.logger.Warn("fetching guest profile", "err", err)
	} else {
		guest := &db.Guest{SpotifyID: profile.ID, DisplayName: profile.DisplayName}
		if profile.AvatarURL != "" {
			avatar := profile.AvatarURL
			guest.AvatarURL = &avatar
		}
		if s.InRoom() {
			roomID := s.RoomID
			guest.RoomID = &roomID
		}
		if err := h.database.Guests().Upsert(ctx, guest); err != nil {
			h.logger.Warn("recording guest profile", "err", err)
		}
	}

	if s.InRoom() {
		h.harvest.Go(s.RoomID, s.GuestID, client)
	}

	target := h.baseURL + "/"
	if s.RoomCode != "" {
		target = h.baseURL + "/?room=" + s.RoomCode
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// SpotifyDisconnect drops the guest's credential cookies, their
// harvested history, and the room association on their Spotify profile
// row. Cleanup is best-effort; the cookies are cleared regardless.
func (h *Handlers) SpotifyDisconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := session.FromRequest(r)

	if client, err := h.guestClient(ctx, w, s); err == nil {
		if profile, err := client.Profile(ctx); err != nil {
			h.logger.Warn("fetching profile on disconnect", "err", err)
		} else if err := h.database.Guests().Detach(ctx, profile.ID); err != nil {
			h.logger.Warn("detaching guest profile", "err", err)
		}
	}
	if s.InRoom() {
		if err := h.harvest.Forget(ctx, s.RoomID, s.GuestID); err != nil {
			h.logger.Warn("forgetting harvest on disconnect", "guest", s.GuestID, "err", err)
		}
	}
	h.writer.ClearCredential(w)
	writeJSON(w, http.StatusOK, nil)
}

type trackResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	AlbumArt    string `json:"albumArt,omitempty"`
	Popularity  int    `json:"popularity"`
	ReleaseYear int    `json:"releaseYear,omitempty"`
}

// Search proxies a track search through the guest's own token.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{"a search query is required"})
		return
	}

	s := session.FromRequest(r)
	client, err := h.guestClient(r.Context(), w, s)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	tracks, err := client.SearchTracks(r.Context(), query)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]trackResponse, len(tracks))
	for i, t := range tracks {
		out[i] = trackResponse{
			ID:          t.ID,
			Title:       t.Title,
			Artist:      t.Artist,
			AlbumArt:    t.AlbumArt,
			Popularity:  t.Popularity,
			ReleaseYear: t.ReleaseYear,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type queueEntry struct {
	ID          string    `json:"id"`
	TrackID     string    `json:"trackId"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	AlbumArt    string    `json:"albumArt,omitempty"`
	Score       int       `json:"score"`
	MyVote      int       `json:"myVote"`
	Mine        bool      `json:"mine"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Queue returns the room's ranked request queue.
func (h *Handlers) Queue(w http.ResponseWriter, r *http.Request) {
	s := session.FromRequest(r)
	room, ok := h.roomFromPath(w, r)
	if !ok {
		return
	}

	ranked, err := h.queue.Ranked(r.Context(), room.ID, s.GuestID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]queueEntry, len(ranked))
	for i, entry := range ranked {
		out[i] = queueEntry{
			ID:          entry.ID.String(),
			TrackID:     entry.TrackID,
			Title:       entry.Title,
			Artist:      entry.Artist,
			Score:       entry.Score,
			MyVote:      entry.MyVote,
			Mine:        entry.GuestID == s.GuestID,
			RequestedAt: entry.CreatedAt,
		}
		if entry.AlbumArt != nil {
			out[i].AlbumArt = *entry.AlbumArt
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type submitRequest struct {
	TrackID string `json:"trackId"`
}

// SubmitRequest adds a track to the room's queue. Track metadata comes
// from Spotify, not the client, so popularity and release year cannot
// be forged.
func (h *Handlers) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body submitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TrackID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{"a track id is required"})
		return
	}

	s, err := h.ensureGuest(w, r, "")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	room, ok := h.roomFromPath(w, r)
	if !ok {
		return
	}

	client, err := h.guestClient(r.Context(), w, s)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	track, err := client.Track(r.Context(), body.TrackID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	req, err := h.queue.Submit(r.Context(), room.ID, s.GuestID, *track)
	if err != nil {
		var dup *queue.DuplicateError
		if errors.As(err, &dup) {
			h.metrics.RecordDuplicate()
		}
		writeError(w, h.logger, err)
		return
	}

	h.metrics.RecordRequest()
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID.String()})
}

type voteRequest struct {
	Value int `json:"value"`
}

// Vote records the guest's vote on a request.
func (h *Handlers) Vote(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{"invalid request id"})
		return
	}

	var body voteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{"a vote value is required"})
		return
	}

	s := session.FromRequest(r)
	if s.GuestID == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody{"no guest session"})
		return
	}

	if err := h.queue.Vote(r.Context(), s.GuestID, requestID, body.Value); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.metrics.RecordVote()
	writeJSON(w, http.StatusOK, nil)
}

// RemoveRequest lets a guest withdraw their own request.
func (h *Handlers) RemoveRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{"invalid request id"})
		return
	}

	s := session.FromRequest(r)
	if err := h.queue.Remove(r.Context(), s.GuestID, requestID, false); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// roomFromPath resolves the {code} path segment to an active room.
func (h *Handlers) roomFromPath(w http.ResponseWriter, r *http.Request) (*db.Room, bool) {
	room, err := h.rooms.ByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil || !room.IsActive {
		writeJSON(w, http.StatusNotFound, errorBody{"no active room with that code"})
		return nil, false
	}
	return room, true
}
