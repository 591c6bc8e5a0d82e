// Package flag implements flag submission for a team member.
package flag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mahectf/ctfboard/internal/cache"
	"github.com/mahectf/ctfboard/internal/challenge"
	"github.com/mahectf/ctfboard/internal/leaderboard"
	"github.com/mahectf/ctfboard/internal/metrics"
)

// Caller-facing messages.
const (
	MsgRequired      = "Flag is required."
	MsgCorrect       = "Correct flag!"
	MsgAlreadySolved = "Challenge already solved by your team! Please refresh the page."
	MsgIncorrect     = "Incorrect flag."
	MsgUnexpected    = "Something went wrong. Please try again."
)

// Result is the outcome of one submission.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Service checks submitted flags.
type Service struct {
	challenges challenge.Repository
	listings   cache.Listing
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewService creates a flag Service. listings and m may be nil.
func NewService(challenges challenge.Repository, listings cache.Listing, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{challenges: challenges, listings: listings, logger: logger, metrics: m}
}

// Submit checks flag for challengeID on behalf of userID's team. Verdicts are
// reported in Result; an error means the check itself could not be made.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, challengeID, teamID int64, flag string) (Result, error) {
	if strings.TrimSpace(flag) == "" {
		return Result{Success: false, Message: MsgRequired}, nil
	}

	ch, err := s.challenges.GetByID(ctx, challengeID)
	if err != nil {
		return Result{}, fmt.Errorf("loading challenge %d: %w", challengeID, err)
	}

	status, err := s.challenges.SubmitFlag(ctx, challengeID, teamID, userID, flag)
	if err != nil {
		s.metrics.FlagSubmission("error")
		return Result{}, fmt.Errorf("submitting flag: %w", err)
	}

	switch status {
	case challenge.StatusSuccess:
		s.metrics.FlagSubmission("success")
		s.logger.Info("challenge solved",
			"challenge_id", challengeID,
			"team_id", teamID,
			"user_id", userID,
		)
		s.invalidate(ctx, challenge.ListingPath(ch.Category), challenge.OverviewPath, leaderboard.ListingPath)
		return Result{Success: true, Message: MsgCorrect}, nil
	case challenge.StatusAlreadySolved:
		s.metrics.FlagSubmission("already_solved")
		return Result{Success: false, Message: MsgAlreadySolved}, nil
	case challenge.StatusWrongFlag:
		s.metrics.FlagSubmission("wrong_flag")
		return Result{Success: false, Message: MsgIncorrect}, nil
	default:
		s.metrics.FlagSubmission("other")
		s.logger.Warn("unexpected flag submission status",
			"status", string(status),
			"challenge_id", challengeID,
			"team_id", teamID,
		)
		return Result{Success: false, Message: MsgUnexpected}, nil
	}
}

func (s *Service) invalidate(ctx context.Context, paths ...string) {
	if s.listings == nil {
		return
	}
	if err := s.listings.Invalidate(ctx, paths...); err != nil {
		s.logger.Warn("failed to invalidate listings", "paths", paths, "error", err)
	}
}
