package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VoteRepository handles vote database operations.
type VoteRepository struct {
	pool *pgxpool.Pool
}

// Upsert stores a guest's vote on a request, replacing any prior value.
func (r *VoteRepository) Upsert(ctx context.Context, vote *Vote) error {
	query := `
		INSERT INTO room_request_votes (request_id, guest_id, vote_val)
		VALUES ($1, $2, $3)
		ON CONFLICT (request_id, guest_id) DO UPDATE SET vote_val = EXCLUDED.vote_val
	`
	_, err := r.pool.Exec(ctx, query, vote.RequestID, vote.GuestID, vote.Value)
	if err != nil {
		return fmt.Errorf("upserting vote: %w", err)
	}
	return nil
}

// Delete removes a guest's vote on a request. Deleting an absent vote
// is not an error: a zero vote is represented by row absence.
func (r *VoteRepository) Delete(ctx context.Context, requestID uuid.UUID, guestID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM room_request_votes WHERE request_id = $1 AND guest_id = $2`,
		requestID, guestID)
	if err != nil {
		return fmt.Errorf("deleting vote: %w", err)
	}
	return nil
}

// ListByRoom retrieves all votes on a room's requests.
func (r *VoteRepository) ListByRoom(ctx context.Context, roomID int64) ([]Vote, error) {
	query := `
		SELECT v.request_id, v.guest_id, v.vote_val
		FROM room_request_votes v
		JOIN room_requests rr ON rr.id = v.request_id
		WHERE rr.room_id = $1
	`
	rows, err := r.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("querying votes: %w", err)
	}
	defer rows.Close()

	var votes []Vote
	for rows.Next() {
		var vote Vote
		if err := rows.Scan(&vote.RequestID, &vote.GuestID, &vote.Value); err != nil {
			return nil, fmt.Errorf("scanning vote: %w", err)
		}
		votes = append(votes, vote)
	}
	return votes, rows.Err()
}
