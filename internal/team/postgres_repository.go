package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// CountByName returns how many teams carry exactly the given name.
func (r *PostgresRepository) CountByName(ctx context.Context, name string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM team WHERE name = $1", name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting teams by name: %w", err)
	}
	return count, nil
}

// Create inserts a new team record.
func (r *PostgresRepository) Create(ctx context.Context, t *Team) error {
	query := `
		INSERT INTO team (name)
		VALUES ($1)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, t.Name).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateTeamName
		}
		return fmt.Errorf("inserting team: %w", err)
	}

	return nil
}

// Delete removes a team by id. Memberships cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM team WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting team: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTeamNotFound
	}

	return nil
}

// AddMembers inserts all membership rows in one batch inside a transaction,
// so either every row lands or none does.
func (r *PostgresRepository) AddMembers(ctx context.Context, members []Member) error {
	if len(members) == 0 {
		return ErrNoMembers
	}

	query := `
		INSERT INTO team_members (team_id, user_id, user_email, registration_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i := range members {
			m := &members[i]
			batch.Queue(query, m.TeamID, m.UserID, m.Email, m.RegistrationNumber).QueryRow(func(row pgx.Row) error {
				return row.Scan(&m.ID, &m.CreatedAt)
			})
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting team members: %w", err)
		}
		return nil
	})
}

// GetByUserID returns the team the given account belongs to.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Team, error) {
	query := `
		SELECT t.id, t.name, t.created_at
		FROM team t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = $1`

	var t Team
	err := r.pool.QueryRow(ctx, query, userID).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team by user: %w", err)
	}

	return &t, nil
}

// Stats returns score, rank and solve counts for a team.
func (r *PostgresRepository) Stats(ctx context.Context, teamID int64) (*Stats, error) {
	query := `
		SELECT l.team_id, l.team_name, l.score, l.rank,
		       (SELECT COUNT(*) FROM team),
		       (SELECT COUNT(*) FROM solve WHERE team_id = l.team_id),
		       (SELECT COUNT(*) FROM challenge)
		FROM leaderboard l
		WHERE l.team_id = $1`

	var s Stats
	err := r.pool.QueryRow(ctx, query, teamID).Scan(
		&s.TeamID, &s.Name, &s.Score, &s.Rank,
		&s.TotalTeams, &s.SolvedChallenges, &s.TotalChallenges,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team stats: %w", err)
	}

	return &s, nil
}
