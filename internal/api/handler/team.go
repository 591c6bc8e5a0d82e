package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mahectf/ctfboard/internal/api/middleware"
	"github.com/mahectf/ctfboard/internal/api/response"
	"github.com/mahectf/ctfboard/internal/team"
)

// TeamLookup resolves the team an account belongs to.
type TeamLookup interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*team.Team, error)
}

// TeamReader serves the dashboard summary of a team.
type TeamReader interface {
	TeamLookup
	Stats(ctx context.Context, teamID int64) (*team.Stats, error)
}

type teamStatsResponse struct {
	TeamID           int64  `json:"teamId"`
	Name             string `json:"name"`
	Score            int    `json:"score"`
	Rank             int    `json:"rank"`
	TotalTeams       int    `json:"totalTeams"`
	SolvedChallenges int    `json:"solvedChallenges"`
	TotalChallenges  int    `json:"totalChallenges"`
}

// TeamHandler serves the caller's own team.
type TeamHandler struct {
	teams TeamReader
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teams TeamReader) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// Me handles GET /api/teams/me.
func (h *TeamHandler) Me(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	t, ok := resolveTeam(w, r, h.teams)
	if !ok {
		return
	}

	stats, err := h.teams.Stats(r.Context(), t.ID)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return
		}
		slog.Error("failed to load team stats", "error", err, "teamId", t.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load team stats", requestID)
		return
	}

	response.Success(w, http.StatusOK, teamStatsResponse{
		TeamID:           stats.TeamID,
		Name:             stats.Name,
		Score:            stats.Score,
		Rank:             stats.Rank,
		TotalTeams:       stats.TotalTeams,
		SolvedChallenges: stats.SolvedChallenges,
		TotalChallenges:  stats.TotalChallenges,
	}, requestID)
}

// resolveTeam finds the authenticated caller's team, writing the error
// response itself when it cannot.
func resolveTeam(w http.ResponseWriter, r *http.Request, teams TeamLookup) (*team.Team, bool) {
	requestID := middleware.GetRequestID(r.Context())

	account := middleware.GetAccount(r.Context())
	if account == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication is required", requestID)
		return nil, false
	}

	t, err := teams.GetByUserID(r.Context(), account.ID)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusForbidden, "NO_TEAM", "You are not a member of any team", requestID)
			return nil, false
		}
		slog.Error("failed to resolve team", "error", err, "userId", account.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve team", requestID)
		return nil, false
	}

	return t, true
}

func teamVariant(teamID int64) string {
	return fmt.Sprintf("team:%d", teamID)
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
