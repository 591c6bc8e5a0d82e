package leaderboard

import (
	"cmp"
	"slices"
	"strings"
)

// Sort orders for Arrange.
const (
	SortRank  = "rank"
	SortScore = "score"
	SortName  = "name"
)

// PodiumSize is the number of ranks shown on the podium.
const PodiumSize = 3

// Row is an Entry as presented to one viewer.
type Row struct {
	Entry
	Current bool
}

// Board is the leaderboard arranged for display.
type Board struct {
	Podium     []Row
	Others     []Row
	ShowPodium bool
	Total      int
}

// ValidSort reports whether s names a supported sort order. The empty string
// means SortRank.
func ValidSort(s string) bool {
	switch s {
	case "", SortRank, SortScore, SortName:
		return true
	}
	return false
}

// Arrange filters entries by a case-insensitive name query, sorts them and
// splits off the podium. The podium holds every team ranked 1 to 3 and is
// only shown when it has at least three teams and no query is active;
// otherwise every team lands in Others. Tied ranks (1, 1, 3 or an all-zero
// board) still fill the podium.
func Arrange(entries []Entry, query, sortBy string, currentTeamID int64) Board {
	q := strings.ToLower(strings.TrimSpace(query))

	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		if q != "" && !strings.Contains(strings.ToLower(e.TeamName), q) {
			continue
		}
		rows = append(rows, Row{Entry: e, Current: currentTeamID != 0 && e.TeamID == currentTeamID})
	}

	sortRows(rows, sortBy)

	board := Board{Total: len(rows)}

	var podium []Row
	if q == "" {
		for _, r := range rows {
			if r.Rank >= 1 && r.Rank <= PodiumSize {
				podium = append(podium, r)
			}
		}
	}

	if len(podium) >= PodiumSize {
		slices.SortStableFunc(podium, func(a, b Row) int { return cmp.Compare(a.Rank, b.Rank) })
		board.Podium = podium
		board.ShowPodium = true
		for _, r := range rows {
			if r.Rank > PodiumSize {
				board.Others = append(board.Others, r)
			}
		}
		return board
	}

	board.Others = rows
	return board
}

func sortRows(rows []Row, sortBy string) {
	switch sortBy {
	case SortScore:
		slices.SortStableFunc(rows, func(a, b Row) int {
			return cmp.Or(cmp.Compare(b.Score, a.Score), cmp.Compare(a.Rank, b.Rank))
		})
	case SortName:
		slices.SortStableFunc(rows, func(a, b Row) int {
			return cmp.Compare(strings.ToLower(a.TeamName), strings.ToLower(b.TeamName))
		})
	default:
		slices.SortStableFunc(rows, func(a, b Row) int { return cmp.Compare(a.Rank, b.Rank) })
	}
}
