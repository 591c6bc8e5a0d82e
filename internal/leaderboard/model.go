package leaderboard

import "time"

// Entry is one row of the leaderboard view.
type Entry struct {
	TeamID    int64      `json:"teamId"`
	TeamName  string     `json:"teamName"`
	Score     int        `json:"score"`
	LastSolve *time.Time `json:"lastSolve,omitempty"`
	Rank      int        `json:"rank"`
}
