package challenge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

// ListByCategory returns the category's challenges with the team's solve state,
// links and hints, cheapest first.
func (r *PostgresRepository) ListByCategory(ctx context.Context, teamID int64, category string) ([]Challenge, error) {
	query := `
		SELECT c.id, c.name, c.description, c.difficulty::text, c.points, c.category, s.solved_at
		FROM challenge c
		LEFT JOIN solve s ON s.challenge_id = c.id AND s.team_id = $1
		WHERE c.category = $2
		ORDER BY c.points ASC, c.id ASC`

	rows, err := r.pool.Query(ctx, query, teamID, category)
	if err != nil {
		return nil, fmt.Errorf("listing challenges: %w", err)
	}
	defer rows.Close()

	challenges := []Challenge{}
	index := map[int64]int{}
	for rows.Next() {
		var c Challenge
		var solvedAt *time.Time
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Difficulty, &c.Points, &c.Category, &solvedAt); err != nil {
			return nil, fmt.Errorf("scanning challenge row: %w", err)
		}
		c.Solved = solvedAt != nil
		c.SolvedAt = solvedAt
		index[c.ID] = len(challenges)
		challenges = append(challenges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating challenge rows: %w", err)
	}

	if len(challenges) == 0 {
		return challenges, nil
	}

	ids := make([]int64, 0, len(challenges))
	for _, c := range challenges {
		ids = append(ids, c.ID)
	}
	if err := r.attachLinks(ctx, ids, challenges, index); err != nil {
		return nil, err
	}
	if err := r.attachHints(ctx, ids, challenges, index); err != nil {
		return nil, err
	}

	return challenges, nil
}

func (r *PostgresRepository) attachLinks(ctx context.Context, ids []int64, challenges []Challenge, index map[int64]int) error {
	rows, err := r.pool.Query(ctx, `
		SELECT challenge_id, name, url
		FROM challenge_link
		WHERE challenge_id = ANY($1)
		ORDER BY id ASC`, ids)
	if err != nil {
		return fmt.Errorf("listing challenge links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var l Link
		if err := rows.Scan(&id, &l.Name, &l.URL); err != nil {
			return fmt.Errorf("scanning challenge link row: %w", err)
		}
		c := &challenges[index[id]]
		c.Links = append(c.Links, l)
	}
	return rows.Err()
}

func (r *PostgresRepository) attachHints(ctx context.Context, ids []int64, challenges []Challenge, index map[int64]int) error {
	rows, err := r.pool.Query(ctx, `
		SELECT challenge_id, body
		FROM challenge_hint
		WHERE challenge_id = ANY($1)
		ORDER BY position ASC, id ASC`, ids)
	if err != nil {
		return fmt.Errorf("listing challenge hints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var hint string
		if err := rows.Scan(&id, &hint); err != nil {
			return fmt.Errorf("scanning challenge hint row: %w", err)
		}
		c := &challenges[index[id]]
		c.Hints = append(c.Hints, hint)
	}
	return rows.Err()
}

// GetByID retrieves a challenge without team-specific state.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Challenge, error) {
	query := `
		SELECT id, name, description, difficulty::text, points, category
		FROM challenge
		WHERE id = $1`

	var c Challenge
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &c.Difficulty, &c.Points, &c.Category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying challenge: %w", err)
	}

	return &c, nil
}

// CategoryStats counts solved and total challenges per category for a team.
func (r *PostgresRepository) CategoryStats(ctx context.Context, teamID int64) (map[string]Stats, error) {
	query := `
		SELECT c.category, COUNT(s.id), COUNT(c.id)
		FROM challenge c
		LEFT JOIN solve s ON s.challenge_id = c.id AND s.team_id = $1
		GROUP BY c.category`

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("counting challenges: %w", err)
	}
	defer rows.Close()

	stats := map[string]Stats{}
	for rows.Next() {
		var category string
		var s Stats
		if err := rows.Scan(&category, &s.Solved, &s.Total); err != nil {
			return nil, fmt.Errorf("scanning category stats: %w", err)
		}
		stats[category] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category stats: %w", err)
	}

	return stats, nil
}

// SubmitFlag calls the backend's submit_flag function, which owns flag
// comparison and solve recording.
func (r *PostgresRepository) SubmitFlag(ctx context.Context, challengeID, teamID int64, userID uuid.UUID, flag string) (SubmitStatus, error) {
	var status string
	err := r.pool.QueryRow(ctx, "SELECT submit_flag($1, $2, $3, $4)", challengeID, teamID, userID, flag).Scan(&status)
	if err != nil {
		return "", fmt.Errorf("submitting flag: %w", err)
	}
	return SubmitStatus(status), nil
}
