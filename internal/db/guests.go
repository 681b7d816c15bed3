package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GuestRepository handles guest profile database operations.
type GuestRepository struct {
	pool *pgxpool.Pool
}

// Upsert creates or updates a guest profile keyed by Spotify id. A
// reconnecting guest moves to the new room and refreshes their profile.
func (r *GuestRepository) Upsert(ctx context.Context, guest *Guest) error {
	query := `
		INSERT INTO guests (spotify_id, room_id, display_name, avatar_url, connected_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (spotify_id) DO UPDATE SET
			room_id = EXCLUDED.room_id,
			display_name = EXCLUDED.display_name,
			avatar_url = EXCLUDED.avatar_url,
			connected_at = EXCLUDED.connected_at
		RETURNING connected_at
	`
	err := r.pool.QueryRow(ctx, query,
		guest.SpotifyID,
		guest.RoomID,
		guest.DisplayName,
		guest.AvatarURL,
	).Scan(&guest.ConnectedAt)
	if err != nil {
		return fmt.Errorf("upserting guest: %w", err)
	}
	return nil
}

// Get retrieves a guest profile by Spotify id.
func (r *GuestRepository) Get(ctx context.Context, spotifyID string) (*Guest, error) {
	query := `
		SELECT spotify_id, room_id, display_name, avatar_url, connected_at
		FROM guests
		WHERE spotify_id = $1
	`
	var guest Guest
	err := r.pool.QueryRow(ctx, query, spotifyID).Scan(
		&guest.SpotifyID,
		&guest.RoomID,
		&guest.DisplayName,
		&guest.AvatarURL,
		&guest.ConnectedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying guest: %w", err)
	}
	return &guest, nil
}

// Detach clears a guest's room association, leaving the profile behind.
func (r *GuestRepository) Detach(ctx context.Context, spotifyID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE guests SET room_id = NULL WHERE spotify_id = $1`, spotifyID)
	if err != nil {
		return fmt.Errorf("detaching guest: %w", err)
	}
	return nil
}

// CountByRoom returns the number of connected guests in a room.
func (r *GuestRepository) CountByRoom(ctx context.Context, roomID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM guests WHERE room_id = $1`, roomID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting guests: %w", err)
	}
	return count, nil
}
