package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateKey is returned when an insert violates a uniqueness
// constraint, e.g. a second live request for the same (room, track).
var ErrDuplicateKey = errors.New("duplicate key")

// RequestRepository handles song request database operations.
type RequestRepository struct {
	pool *pgxpool.Pool
}

const requestColumns = `id, room_id, guest_id, track_id, song_title, artist_name, album_art, popularity, release_year, created_at`

// Create inserts a new song request. Returns ErrDuplicateKey when the
// (room, track) pair already has a live request.
func (r *RequestRepository) Create(ctx context.Context, req *SongRequest) error {
	query := `
		INSERT INTO room_requests (id, room_id, guest_id, track_id, song_title, artist_name, album_art, popularity, release_year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		req.ID,
		req.RoomID,
		req.GuestID,
		req.TrackID,
		req.Title,
		req.Artist,
		req.AlbumArt,
		req.Popularity,
		req.ReleaseYear,
	).Scan(&req.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateKey
		}
		return fmt.Errorf("inserting request: %w", err)
	}
	return nil
}

// Get retrieves a request by id.
func (r *RequestRepository) Get(ctx context.Context, id uuid.UUID) (*SongRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM room_requests WHERE id = $1`
	var req SongRequest
	err := scanRequest(r.pool.QueryRow(ctx, query, id), &req)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying request: %w", err)
	}
	return &req, nil
}

// GetByRoomAndTrack retrieves the live request for a (room, track) pair.
func (r *RequestRepository) GetByRoomAndTrack(ctx context.Context, roomID int64, trackID string) (*SongRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM room_requests WHERE room_id = $1 AND track_id = $2`
	var req SongRequest
	err := scanRequest(r.pool.QueryRow(ctx, query, roomID, trackID), &req)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying request: %w", err)
	}
	return &req, nil
}

// ListByRoom retrieves all requests in a room in submission order.
func (r *RequestRepository) ListByRoom(ctx context.Context, roomID int64) ([]SongRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM room_requests WHERE room_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("querying requests: %w", err)
	}
	defer rows.Close()

	var requests []SongRequest
	for rows.Next() {
		var req SongRequest
		if err := scanRequest(rows, &req); err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// Delete removes a request by id. Votes cascade.
func (r *RequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM room_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByRoom returns the number of live requests in a room.
func (r *RequestRepository) CountByRoom(ctx context.Context, roomID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM room_requests WHERE room_id = $1`, roomID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting requests: %w", err)
	}
	return count, nil
}

func scanRequest(row pgx.Row, req *SongRequest) error {
	return row.Scan(
		&req.ID,
		&req.RoomID,
		&req.GuestID,
		&req.TrackID,
		&req.Title,
		&req.Artist,
		&req.AlbumArt,
		&req.Popularity,
		&req.ReleaseYear,
		&req.CreatedAt,
	)
}
