package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ClassicsRepository handles the curated reference chart.
type ClassicsRepository struct {
	pool *pgxpool.Pool
}

// UpsertBatch inserts or updates curated chart entries.
func (r *ClassicsRepository) UpsertBatch(ctx context.Context, classics []CuratedClassic) error {
	if len(classics) == 0 {
		return nil
	}

	query := `
		INSERT INTO curated_classics (clean_signature, category, song_title, artist_name)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::text[])
		ON CONFLICT (clean_signature, category) DO UPDATE SET
			song_title = EXCLUDED.song_title,
			artist_name = EXCLUDED.artist_name
	`

	sigs := make([]string, len(classics))
	cats := make([]string, len(classics))
	titles := make([]string, len(classics))
	artists := make([]string, len(classics))
	for i, c := range classics {
		sigs[i] = c.Signature
		cats[i] = c.Category
		titles[i] = c.Title
		artists[i] = c.Artist
	}

	_, err := r.pool.Exec(ctx, query, sigs, cats, titles, artists)
	if err != nil {
		return fmt.Errorf("batch upserting classics: %w", err)
	}
	return nil
}

// All retrieves every curated chart entry.
func (r *ClassicsRepository) All(ctx context.Context) ([]CuratedClassic, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT clean_signature, category, song_title, artist_name FROM curated_classics`)
	if err != nil {
		return nil, fmt.Errorf("querying classics: %w", err)
	}
	defer rows.Close()

	var classics []CuratedClassic
	for rows.Next() {
		var c CuratedClassic
		if err := rows.Scan(&c.Signature, &c.Category, &c.Title, &c.Artist); err != nil {
			return nil, fmt.Errorf("scanning classic: %w", err)
		}
		classics = append(classics, c)
	}
	return classics, rows.Err()
}
