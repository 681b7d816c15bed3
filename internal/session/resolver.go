package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/crowdqueue/crowdqueue/internal/db"
)

// RoomLookup is the slice of the store the resolver needs.
type RoomLookup interface {
	GetByCode(ctx context.Context, code string) (*db.Room, error)
}

// Resolver establishes or recovers a guest's identity and room context.
// It never talks to Spotify; it is pure session bookkeeping against the
// external store.
type Resolver struct {
	rooms  RoomLookup
	logger *log.Logger
}

// NewResolver creates a Resolver.
func NewResolver(rooms RoomLookup, logger *log.Logger) *Resolver {
	return &Resolver{rooms: rooms, logger: logger}
}

// Resolve fills in the session's identity and room context. A missing
// guest id is minted fresh (IsNewGuest). Missing room cookies are
// repaired from roomCodeHint via a case-insensitive lookup of active
// rooms; an unknown or inactive room degrades to "no room resolved"
// rather than failing the operation.
func (r *Resolver) Resolve(ctx context.Context, s *Session, roomCodeHint string) (isNewGuest bool, err error) {
	if s.GuestID == "" {
		id, err := NewGuestID()
		if err != nil {
			return false, fmt.Errorf("minting guest id: %w", err)
		}
		s.GuestID = id
		isNewGuest = true
	}

	if !s.InRoom() && roomCodeHint != "" {
		room, err := r.rooms.GetByCode(ctx, roomCodeHint)
		switch {
		case errors.Is(err, db.ErrNotFound):
			r.logger.Debug("room hint did not resolve", "code", roomCodeHint)
		case err != nil:
			// Recovery is best-effort; the guest just stays roomless.
			r.logger.Warn("room recovery lookup failed", "code", roomCodeHint, "err", err)
		case !room.IsActive:
			r.logger.Debug("room hint resolved to inactive room", "code", roomCodeHint)
		default:
			s.RoomID = room.ID
			s.RoomCode = room.Code
		}
	}

	return isNewGuest, nil
}
