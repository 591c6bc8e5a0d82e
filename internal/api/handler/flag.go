package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mahectf/ctfboard/internal/api/middleware"
	"github.com/mahectf/ctfboard/internal/api/response"
	"github.com/mahectf/ctfboard/internal/api/validation"
	"github.com/mahectf/ctfboard/internal/challenge"
	"github.com/mahectf/ctfboard/internal/flag"
)

// FlagSubmitter checks a submitted flag.
type FlagSubmitter interface {
	Submit(ctx context.Context, userID uuid.UUID, challengeID, teamID int64, flag string) (flag.Result, error)
}

type submitFlagRequest struct {
	ChallengeID int64  `json:"challengeId"`
	Flag        string `json:"flag"`
}

// FlagHandler handles flag submissions.
type FlagHandler struct {
	submitter FlagSubmitter
	teams     TeamLookup
}

// NewFlagHandler creates a new FlagHandler.
func NewFlagHandler(submitter FlagSubmitter, teams TeamLookup) *FlagHandler {
	return &FlagHandler{submitter: submitter, teams: teams}
}

// Submit handles POST /api/flags. Verdicts, wrong flags included, are
// answered with 200 and a success flag.
func (h *FlagHandler) Submit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	var req submitFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if fieldErrors := validation.ValidateFlagSubmissionRequest(validation.FlagSubmissionRequest{ChallengeID: req.ChallengeID}); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	t, ok := resolveTeam(w, r, h.teams)
	if !ok {
		return
	}
	account := middleware.GetAccount(r.Context())

	result, err := h.submitter.Submit(r.Context(), account.ID, req.ChallengeID, t.ID, req.Flag)
	if err != nil {
		if errors.Is(err, challenge.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Challenge not found", requestID)
			return
		}
		slog.Error("flag submission failed", "error", err, "challengeId", req.ChallengeID, "teamId", t.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", flag.MsgUnexpected, requestID)
		return
	}

	response.Success(w, http.StatusOK, result, requestID)
}
