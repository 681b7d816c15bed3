package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RoomRepository handles room database operations.
type RoomRepository struct {
	pool *pgxpool.Pool
}

const roomColumns = `id, code, name, owner_id, is_active, event_date, created_at`

// Create inserts a new room and fills in its generated id and created_at.
func (r *RoomRepository) Create(ctx context.Context, room *Room) error {
	query := `
		INSERT INTO rooms (code, name, owner_id, is_active, event_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		room.Code,
		room.Name,
		room.OwnerID,
		room.IsActive,
		room.EventDate,
	).Scan(&room.ID, &room.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting room: %w", err)
	}
	return nil
}

// GetByCode retrieves a room by its code, case-insensitively.
func (r *RoomRepository) GetByCode(ctx context.Context, code string) (*Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE LOWER(code) = LOWER($1)`
	return r.scanOne(r.pool.QueryRow(ctx, query, code))
}

// GetByCodeForOwner retrieves a room by code scoped to its owner.
// Returns ErrNotFound when the room exists but belongs to someone else,
// so hosts cannot probe other hosts' rooms.
func (r *RoomRepository) GetByCodeForOwner(ctx context.Context, code, ownerID string) (*Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE LOWER(code) = LOWER($1) AND owner_id = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, code, ownerID))
}

// ListByOwner retrieves all rooms owned by a host, newest first.
func (r *RoomRepository) ListByOwner(ctx context.Context, ownerID string) ([]Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		var room Room
		if err := scanRoom(rows, &room); err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// CodeExists reports whether a room code is already taken.
func (r *RoomRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM rooms WHERE LOWER(code) = LOWER($1))`
	if err := r.pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking room code: %w", err)
	}
	return exists, nil
}

// DeleteOlderThan removes rooms whose event date passed the cutoff.
// Dependent requests, votes, and harvested rows cascade. Returns the
// number of rooms deleted.
func (r *RoomRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rooms WHERE event_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting expired rooms: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *RoomRepository) scanOne(row pgx.Row) (*Room, error) {
	var room Room
	err := scanRoom(row, &room)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying room: %w", err)
	}
	return &room, nil
}

func scanRoom(row pgx.Row, room *Room) error {
	return row.Scan(
		&room.ID,
		&room.Code,
		&room.Name,
		&room.OwnerID,
		&room.IsActive,
		&room.EventDate,
		&room.CreatedAt,
	)
}
