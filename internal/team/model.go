package team

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a row in the team table.
type Team struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Member links one identity-service account to a team.
type Member struct {
	ID                 int64
	TeamID             int64
	UserID             uuid.UUID
	Email              string
	RegistrationNumber int64
	CreatedAt          time.Time
}

// Stats is the dashboard summary for a single team.
type Stats struct {
	TeamID           int64
	Name             string
	Score            int
	Rank             int
	TotalTeams       int
	SolvedChallenges int
	TotalChallenges  int
}
