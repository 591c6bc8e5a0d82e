package challenge

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a challenge record is not found.
var ErrNotFound = errors.New("challenge not found")

// Repository reads challenges and forwards flag submissions to the backend.
type Repository interface {
	ListByCategory(ctx context.Context, teamID int64, category string) ([]Challenge, error)
	GetByID(ctx context.Context, id int64) (*Challenge, error)
	CategoryStats(ctx context.Context, teamID int64) (map[string]Stats, error)
	SubmitFlag(ctx context.Context, challengeID, teamID int64, userID uuid.UUID, flag string) (SubmitStatus, error)
}
