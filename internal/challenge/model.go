package challenge

import "time"

// Difficulty mirrors the difficulty enum of the challenge table.
type Difficulty string

const (
	DifficultyVeryEasy Difficulty = "very easy"
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
)

// Link is an external resource attached to a challenge.
type Link struct {
	Name string
	URL  string
}

// Challenge is a challenge as seen by one team.
type Challenge struct {
	ID          int64
	Name        string
	Description string
	Difficulty  Difficulty
	Points      int
	Category    string
	Solved      bool
	SolvedAt    *time.Time
	Links       []Link
	Hints       []string
}

// Stats counts solved and total challenges in one category for one team.
type Stats struct {
	Solved int
	Total  int
}

// SubmitStatus is the verdict returned by the submit_flag function.
type SubmitStatus string

const (
	StatusSuccess       SubmitStatus = "SUCCESS"
	StatusAlreadySolved SubmitStatus = "ALREADY_SOLVED"
	StatusWrongFlag     SubmitStatus = "WRONG_FLAG"
)
