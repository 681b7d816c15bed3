// Package rooms manages the host-facing room lifecycle: creation with
// unique join codes, owner-scoped reads, and retention cleanup.
package rooms

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/crowdqueue/crowdqueue/internal/db"
)

// codeAlphabet excludes ambiguous characters (0/O, 1/I/L) so codes
// survive being read aloud at a party.
const (
	codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

// DefaultRetention is how long rooms live before the sweep removes
// them, along with their requests, votes, and harvested data.
const DefaultRetention = 30 * 24 * time.Hour

// ErrCodeSpaceExhausted is returned when code generation keeps
// colliding, which in practice means the rooms table is absurdly full.
var ErrCodeSpaceExhausted = errors.New("could not generate a unique room code")

// Store is the room persistence the service needs.
type Store interface {
	Create(ctx context.Context, room *db.Room) error
	GetByCode(ctx context.Context, code string) (*db.Room, error)
	GetByCodeForOwner(ctx context.Context, code, ownerID string) (*db.Room, error)
	ListByOwner(ctx context.Context, ownerID string) ([]db.Room, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service owns room lifecycle operations.
type Service struct {
	store     Store
	logger    *log.Logger
	retention time.Duration
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRetention overrides the room retention window.
func WithRetention(d time.Duration) Option {
	return func(s *Service) { s.retention = d }
}

// WithClock replaces the service clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a rooms Service.
func New(store Store, logger *log.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		logger:    logger,
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create makes a new active room with a fresh join code.
func (s *Service) Create(ctx context.Context, ownerID, name string, eventDate time.Time) (*db.Room, error) {
	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	room := &db.Room{
		Code:      code,
		Name:      name,
		OwnerID:   ownerID,
		IsActive:  true,
		EventDate: eventDate,
	}
	if err := s.store.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("creating room: %w", err)
	}

	s.logger.Info("room created", "room", room.ID, "code", room.Code, "owner", ownerID)
	return room, nil
}

// ForOwner returns the room only if ownerID created it.
func (s *Service) ForOwner(ctx context.Context, code, ownerID string) (*db.Room, error) {
	return s.store.GetByCodeForOwner(ctx, code, ownerID)
}

// ListForOwner returns all of the host's rooms, newest first.
func (s *Service) ListForOwner(ctx context.Context, ownerID string) ([]db.Room, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// ByCode resolves a join code case-insensitively.
func (s *Service) ByCode(ctx context.Context, code string) (*db.Room, error) {
	return s.store.GetByCode(ctx, code)
}

// Sweep deletes rooms older than the retention window. Foreign keys
// cascade, so requests, votes, and harvested snapshots go with them.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	deleted, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweeping expired rooms: %w", err)
	}
	if deleted > 0 {
		s.logger.Info("expired rooms swept", "deleted", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}

func (s *Service) uniqueCode(ctx context.Context) (string, error) {
	for range 10 {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		exists, err := s.store.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("checking code uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating room code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
