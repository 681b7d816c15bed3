package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/crowdqueue/crowdqueue/internal/db"
	"github.com/crowdqueue/crowdqueue/internal/spotify"
)

// Sentinel errors.
var (
	// ErrForbidden means the guest may not perform the write, such as
	// voting on their own request.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidVote means the vote value is outside {-1, 0, 1}.
	ErrInvalidVote = errors.New("invalid vote value")
)

// DuplicateError reports that the track is already requested in the
// room. IsOwner distinguishes "you already asked for this" from
// "someone beat you to it" so the client can suggest voting instead.
type DuplicateError struct {
	ExistingID uuid.UUID
	IsOwner    bool
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("track already requested (request %s, owner %t)", e.ExistingID, e.IsOwner)
}

// RequestStore is the request persistence the service needs.
type RequestStore interface {
	Create(ctx context.Context, req *db.SongRequest) error
	Get(ctx context.Context, id uuid.UUID) (*db.SongRequest, error)
	GetByRoomAndTrack(ctx context.Context, roomID int64, trackID string) (*db.SongRequest, error)
	ListByRoom(ctx context.Context, roomID int64) ([]db.SongRequest, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// VoteStore is the vote persistence the service needs.
type VoteStore interface {
	Upsert(ctx context.Context, vote *db.Vote) error
	Delete(ctx context.Context, requestID uuid.UUID, guestID string) error
	ListByRoom(ctx context.Context, roomID int64) ([]db.Vote, error)
}

// Service coordinates queue reads and writes for a room.
type Service struct {
	requests RequestStore
	votes    VoteStore
	logger   *log.Logger
}

// NewService creates a queue Service.
func NewService(requests RequestStore, votes VoteStore, logger *log.Logger) *Service {
	return &Service{requests: requests, votes: votes, logger: logger}
}

// Submit adds a track to the room's queue. The room/track uniqueness is
// enforced by the store; on conflict the existing request is looked up
// and returned inside a DuplicateError, never surfaced as a bare
// constraint failure.
func (s *Service) Submit(ctx context.Context, roomID int64, guestID string, track spotify.Track) (*db.SongRequest, error) {
	req := &db.SongRequest{
		ID:         uuid.New(),
		RoomID:     roomID,
		GuestID:    guestID,
		TrackID:    track.ID,
		Title:      track.Title,
		Artist:     track.Artist,
		Popularity: track.Popularity,
	}
	if track.AlbumArt != "" {
		req.AlbumArt = &track.AlbumArt
	}
	if track.ReleaseYear != 0 {
		year := track.ReleaseYear
		req.ReleaseYear = &year
	}

	err := s.requests.Create(ctx, req)
	if errors.Is(err, db.ErrDuplicateKey) {
		existing, lookupErr := s.requests.GetByRoomAndTrack(ctx, roomID, track.ID)
		if lookupErr != nil {
			return nil, fmt.Errorf("resolving duplicate request: %w", lookupErr)
		}
		return nil, &DuplicateError{
			ExistingID: existing.ID,
			IsOwner:    existing.GuestID == guestID,
		}
	}
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	s.logger.Info("song requested", "room", roomID, "guest", guestID, "track", track.ID)
	return req, nil
}

// Vote records the guest's vote on a request. A zero value withdraws
// any existing vote; +1/-1 upsert, so re-voting the same way is a
// no-op and switching direction is a single write. Guests cannot vote
// on their own requests.
func (s *Service) Vote(ctx context.Context, guestID string, requestID uuid.UUID, value int) error {
	if value < -1 || value > 1 {
		return fmt.Errorf("%w: %d", ErrInvalidVote, value)
	}

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return fmt.Errorf("loading request: %w", err)
	}
	if req.GuestID == guestID {
		return fmt.Errorf("%w: cannot vote on own request", ErrForbidden)
	}

	if value == 0 {
		if err := s.votes.Delete(ctx, requestID, guestID); err != nil {
			return fmt.Errorf("withdrawing vote: %w", err)
		}
		return nil
	}

	vote := &db.Vote{RequestID: requestID, GuestID: guestID, Value: value}
	if err := s.votes.Upsert(ctx, vote); err != nil {
		return fmt.Errorf("recording vote: %w", err)
	}
	return nil
}

// Remove deletes a request. Guests may remove their own requests; the
// room host may remove any. Votes go with the request.
func (s *Service) Remove(ctx context.Context, guestID string, requestID uuid.UUID, isHost bool) error {
	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return fmt.Errorf("loading request: %w", err)
	}
	if !isHost && req.GuestID != guestID {
		return fmt.Errorf("%w: not the request owner", ErrForbidden)
	}

	if err := s.requests.Delete(ctx, requestID); err != nil {
		return fmt.Errorf("deleting request: %w", err)
	}
	s.logger.Info("song request removed", "room", req.RoomID, "request", requestID, "by_host", isHost)
	return nil
}

// Ranked returns the room's queue in display order, annotated with the
// viewing guest's own votes.
func (s *Service) Ranked(ctx context.Context, roomID int64, guestID string) ([]RankedRequest, error) {
	requests, err := s.requests.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	votes, err := s.votes.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("listing votes: %w", err)
	}

	ranked := Rank(requests, votes)

	mine := make(map[uuid.UUID]int, len(votes))
	for _, v := range votes {
		if v.GuestID == guestID {
			mine[v.RequestID] = v.Value
		}
	}
	for i := range ranked {
		ranked[i].MyVote = mine[ranked[i].ID]
	}
	return ranked, nil
}
