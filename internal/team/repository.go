package team

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTeamNotFound is returned when a team record is not found.
var ErrTeamNotFound = errors.New("team not found")

// ErrDuplicateTeamName is returned when a team with the same name already exists.
var ErrDuplicateTeamName = errors.New("team name already exists")

// ErrNoMembers is returned when AddMembers is called with an empty slice.
var ErrNoMembers = errors.New("no members to insert")

// Repository provides operations on the team and team_members tables.
type Repository interface {
	CountByName(ctx context.Context, name string) (int, error)
	Create(ctx context.Context, team *Team) error
	Delete(ctx context.Context, id int64) error
	AddMembers(ctx context.Context, members []Member) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Team, error)
	Stats(ctx context.Context, teamID int64) (*Stats, error)
}
