package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mahectf/ctfboard/internal/api/middleware"
	"github.com/mahectf/ctfboard/internal/api/response"
	"github.com/mahectf/ctfboard/internal/leaderboard"
	"github.com/mahectf/ctfboard/internal/team"
)

// LeaderboardLister returns the ranked teams.
type LeaderboardLister interface {
	List(ctx context.Context) ([]leaderboard.Entry, error)
}

type leaderboardRow struct {
	TeamID    int64   `json:"teamId"`
	TeamName  string  `json:"teamName"`
	Score     int     `json:"score"`
	Rank      int     `json:"rank"`
	LastSolve *string `json:"lastSolve"`
	Current   bool    `json:"current"`
}

type leaderboardResponse struct {
	Podium     []leaderboardRow `json:"podium"`
	Others     []leaderboardRow `json:"others"`
	ShowPodium bool             `json:"showPodium"`
	Total      int              `json:"total"`
}

func toLeaderboardRows(rows []leaderboard.Row) []leaderboardRow {
	out := make([]leaderboardRow, 0, len(rows))
	for _, r := range rows {
		row := leaderboardRow{
			TeamID:   r.TeamID,
			TeamName: r.TeamName,
			Score:    r.Score,
			Rank:     r.Rank,
			Current:  r.Current,
		}
		if r.LastSolve != nil {
			s := formatTime(*r.LastSolve)
			row.LastSolve = &s
		}
		out = append(out, row)
	}
	return out
}

// LeaderboardHandler serves the ranked scoreboard.
type LeaderboardHandler struct {
	board LeaderboardLister
	teams TeamLookup
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(board LeaderboardLister, teams TeamLookup) *LeaderboardHandler {
	return &LeaderboardHandler{board: board, teams: teams}
}

// List handles GET /api/leaderboard?q=&sort=rank|score|name.
func (h *LeaderboardHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	query := r.URL.Query().Get("q")
	sortBy := r.URL.Query().Get("sort")
	if !leaderboard.ValidSort(sortBy) {
		response.Err(w, http.StatusBadRequest, "INVALID_SORT", "sort must be one of: rank, score, name", requestID)
		return
	}

	entries, err := h.board.List(r.Context())
	if err != nil {
		slog.Error("failed to load leaderboard", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load leaderboard", requestID)
		return
	}

	var currentTeamID int64
	if account := middleware.GetAccount(r.Context()); account != nil {
		t, err := h.teams.GetByUserID(r.Context(), account.ID)
		switch {
		case err == nil:
			currentTeamID = t.ID
		case errors.Is(err, team.ErrTeamNotFound):
		default:
			slog.Warn("failed to resolve current team for leaderboard", "error", err)
		}
	}

	board := leaderboard.Arrange(entries, query, sortBy, currentTeamID)

	response.Success(w, http.StatusOK, leaderboardResponse{
		Podium:     toLeaderboardRows(board.Podium),
		Others:     toLeaderboardRows(board.Others),
		ShowPodium: board.ShowPodium,
		Total:      board.Total,
	}, requestID)
}
