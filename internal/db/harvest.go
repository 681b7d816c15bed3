package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HarvestRepository handles harvested top-track and top-artist rows.
type HarvestRepository struct {
	pool *pgxpool.Pool
}

// UpsertTracks inserts or updates a guest's top-tracks snapshot
// efficiently. Re-running a harvest for the same guest is a no-op
// beyond refreshing the rows.
func (r *HarvestRepository) UpsertTracks(ctx context.Context, tracks []HarvestedTrack) error {
	if len(tracks) == 0 {
		return nil
	}

	query := `
		INSERT INTO guest_top_tracks (room_id, guest_id, track_id, track_name, artist_name, image_url, rank, release_year, energy, valence, danceability, tempo)
		SELECT * FROM unnest($1::bigint[], $2::text[], $3::text[], $4::text[], $5::text[], $6::text[], $7::int[], $8::int[], $9::float8[], $10::float8[], $11::float8[], $12::float8[])
		ON CONFLICT (guest_id, track_id) DO UPDATE SET
			room_id = EXCLUDED.room_id,
			track_name = EXCLUDED.track_name,
			artist_name = EXCLUDED.artist_name,
			image_url = EXCLUDED.image_url,
			rank = EXCLUDED.rank,
			release_year = EXCLUDED.release_year,
			energy = EXCLUDED.energy,
			valence = EXCLUDED.valence,
			danceability = EXCLUDED.danceability,
			tempo = EXCLUDED.tempo
	`

	roomIDs := make([]int64, len(tracks))
	guestIDs := make([]string, len(tracks))
	trackIDs := make([]string, len(tracks))
	names := make([]string, len(tracks))
	artists := make([]string, len(tracks))
	images := make([]*string, len(tracks))
	ranks := make([]int, len(tracks))
	years := make([]*int, len(tracks))
	energies := make([]*float64, len(tracks))
	valences := make([]*float64, len(tracks))
	dances := make([]*float64, len(tracks))
	tempos := make([]*float64, len(tracks))

	for i, t := range tracks {
		roomIDs[i] = t.RoomID
		guestIDs[i] = t.GuestID
		trackIDs[i] = t.TrackID
		names[i] = t.Title
		artists[i] = t.Artist
		images[i] = t.ImageURL
		ranks[i] = t.Rank
		years[i] = t.ReleaseYear
		energies[i] = t.Energy
		valences[i] = t.Valence
		dances[i] = t.Danceability
		tempos[i] = t.Tempo
	}

	_, err := r.pool.Exec(ctx, query, roomIDs, guestIDs, trackIDs, names, artists, images, ranks, years, energies, valences, dances, tempos)
	if err != nil {
		return fmt.Errorf("batch upserting harvested tracks: %w", err)
	}
	return nil
}

// UpsertArtists inserts or updates a guest's top-artists snapshot.
func (r *HarvestRepository) UpsertArtists(ctx context.Context, artists []HarvestedArtist) error {
	if len(artists) == 0 {
		return nil
	}

	query := `
		INSERT INTO guest_top_artists (room_id, guest_id, artist_id, artist_name, image_url, genre, rank)
		SELECT * FROM unnest($1::bigint[], $2::text[], $3::text[], $4::text[], $5::text[], $6::text[], $7::int[])
		ON CONFLICT (guest_id, artist_id) DO UPDATE SET
			room_id = EXCLUDED.room_id,
			artist_name = EXCLUDED.artist_name,
			image_url = EXCLUDED.image_url,
			genre = EXCLUDED.genre,
			rank = EXCLUDED.rank
	`

	roomIDs := make([]int64, len(artists))
	guestIDs := make([]string, len(artists))
	artistIDs := make([]string, len(artists))
	names := make([]string, len(artists))
	images := make([]*string, len(artists))
	genres := make([]*string, len(artists))
	ranks := make([]int, len(artists))

	for i, a := range artists {
		roomIDs[i] = a.RoomID
		guestIDs[i] = a.GuestID
		artistIDs[i] = a.ArtistID
		names[i] = a.Name
		images[i] = a.ImageURL
		genres[i] = a.Genre
		ranks[i] = a.Rank
	}

	_, err := r.pool.Exec(ctx, query, roomIDs, guestIDs, artistIDs, names, images, genres, ranks)
	if err != nil {
		return fmt.Errorf("batch upserting harvested artists: %w", err)
	}
	return nil
}

// TracksByRoom retrieves all harvested tracks for a room.
func (r *HarvestRepository) TracksByRoom(ctx context.Context, roomID int64) ([]HarvestedTrack, error) {
	query := `
		SELECT room_id, guest_id, track_id, track_name, artist_name, image_url, rank, release_year, energy, valence, danceability, tempo
		FROM guest_top_tracks
		WHERE room_id = $1
	`
	rows, err := r.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("querying harvested tracks: %w", err)
	}
	defer rows.Close()

	var tracks []HarvestedTrack
	for rows.Next() {
		var t HarvestedTrack
		if err := rows.Scan(
			&t.RoomID,
			&t.GuestID,
			&t.TrackID,
			&t.Title,
			&t.Artist,
			&t.ImageURL,
			&t.Rank,
			&t.ReleaseYear,
			&t.Energy,
			&t.Valence,
			&t.Danceability,
			&t.Tempo,
		); err != nil {
			return nil, fmt.Errorf("scanning harvested track: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// ArtistsByRoom retrieves all harvested artists for a room.
func (r *HarvestRepository) ArtistsByRoom(ctx context.Context, roomID int64) ([]HarvestedArtist, error) {
	query := `
		SELECT room_id, guest_id, artist_id, artist_name, image_url, genre, rank
		FROM guest_top_artists
		WHERE room_id = $1
	`
	rows, err := r.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("querying harvested artists: %w", err)
	}
	defer rows.Close()

	var artists []HarvestedArtist
	for rows.Next() {
		var a HarvestedArtist
		if err := rows.Scan(
			&a.RoomID,
			&a.GuestID,
			&a.ArtistID,
			&a.Name,
			&a.ImageURL,
			&a.Genre,
			&a.Rank,
		); err != nil {
			return nil, fmt.Errorf("scanning harvested artist: %w", err)
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

// DeleteForGuest removes a guest's harvested rows in one room. Used
// when a guest leaves or disconnects.
func (r *HarvestRepository) DeleteForGuest(ctx context.Context, roomID int64, guestID string) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM guest_top_tracks WHERE room_id = $1 AND guest_id = $2`,
		roomID, guestID); err != nil {
		return fmt.Errorf("deleting harvested tracks: %w", err)
	}
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM guest_top_artists WHERE room_id = $1 AND guest_id = $2`,
		roomID, guestID); err != nil {
		return fmt.Errorf("deleting harvested artists: %w", err)
	}
	return nil
}
