// Package db provides PostgreSQL database access for CrowdQueue.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors.
var (
	ErrNotFound = errors.New("not found")
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Pool returns the underlying connection pool for advanced operations.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Rooms returns a RoomRepository.
func (db *DB) Rooms() *RoomRepository {
	return &RoomRepository{pool: db.pool}
}

// Guests returns a GuestRepository.
func (db *DB) Guests() *GuestRepository {
	return &GuestRepository{pool: db.pool}
}

// Requests returns a RequestRepository.
func (db *DB) Requests() *RequestRepository {
	return &RequestRepository{pool: db.pool}
}

// Votes returns a VoteRepository.
func (db *DB) Votes() *VoteRepository {
	return &VoteRepository{pool: db.pool}
}

// Harvest returns a HarvestRepository.
func (db *DB) Harvest() *HarvestRepository {
	return &HarvestRepository{pool: db.pool}
}

// Classics returns a ClassicsRepository.
func (db *DB) Classics() *ClassicsRepository {
	return &ClassicsRepository{pool: db.pool}
}
