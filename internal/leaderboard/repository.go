package leaderboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the ranked leaderboard.
type Repository interface {
	List(ctx context.Context) ([]Entry, error)
}

// PostgresRepository implements Repository on top of the leaderboard view.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// List returns every team ordered by rank.
func (r *PostgresRepository) List(ctx context.Context) ([]Entry, error) {
	query := `
		SELECT team_id, team_name, score, last_solve_timestamp, rank
		FROM leaderboard
		ORDER BY rank, team_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.TeamID, &e.TeamName, &e.Score, &e.LastSolve, &e.Rank)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning leaderboard: %w", err)
	}

	return entries, nil
}
