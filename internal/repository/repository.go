package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when the requested game does not exist.
	ErrNotFound = errors.New("game session not found")
	// ErrVersionConflict is returned when a compare-and-swap update lost
	// the race: the session changed since the caller read it. The caller
	// must re-fetch; the repository never retries on its own.
	ErrVersionConflict = errors.New("game session was modified concurrently")
)

type Queries struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Queries {
	return &Queries{db: db}
}
