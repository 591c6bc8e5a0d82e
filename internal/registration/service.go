package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mahectf/ctfboard/internal/cache"
	"github.com/mahectf/ctfboard/internal/identity"
	"github.com/mahectf/ctfboard/internal/leaderboard"
	"github.com/mahectf/ctfboard/internal/metrics"
	"github.com/mahectf/ctfboard/internal/saga"
	"github.com/mahectf/ctfboard/internal/team"
)

// ErrInconsistentState marks a defect inside the workflow itself, as opposed
// to bad input or a backend failure.
var ErrInconsistentState = errors.New("registration state is inconsistent")

// TeamStore is the caller-privilege data handle: team and membership writes.
type TeamStore interface {
	CountByName(ctx context.Context, name string) (int, error)
	Create(ctx context.Context, t *team.Team) error
	Delete(ctx context.Context, id int64) error
	AddMembers(ctx context.Context, members []team.Member) error
}

// AccountAdmin is the elevated identity handle. It is only used to create
// accounts and to delete them again during compensation.
type AccountAdmin interface {
	CreateAccount(ctx context.Context, email, password string) (*identity.Account, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

// Member is one member entry of a registration request.
type Member struct {
	Email              string
	Password           string
	ConfirmPassword    string
	RegistrationNumber string
}

// Request is a team registration request. Inputs are expected to have passed
// validation already.
type Request struct {
	TeamName string
	TeamSize int
	Members  []Member
}

// Service provisions a team and its member accounts.
type Service struct {
	teams        TeamStore
	accounts     AccountAdmin
	logger       *slog.Logger
	metrics      *metrics.Metrics
	listings     cache.Listing
	rollbackTeam bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithListings invalidates the cached leaderboard after a team registers, so
// the new team appears in the ranking right away.
func WithListings(listings cache.Listing) Option {
	return func(s *Service) {
		s.listings = listings
	}
}

// WithTeamRollback makes a membership failure also delete the team row.
// Without it the member-less team row is left behind.
func WithTeamRollback(enabled bool) Option {
	return func(s *Service) {
		s.rollbackTeam = enabled
	}
}

// NewService creates a registration Service from its two backend handles.
func NewService(teams TeamStore, accounts AccountAdmin, opts ...Option) *Service {
	s := &Service{
		teams:    teams,
		accounts: accounts,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates one account per member, then the team, then the
// memberships. Any failure after the first account exists unwinds the
// created accounts. The returned error is a *FieldError or a *GeneralError.
func (s *Service) Register(ctx context.Context, req Request) (*Result, error) {
	res, err := s.register(ctx, req)
	s.metrics.Registration(outcome(err))
	return res, err
}

func (s *Service) register(ctx context.Context, req Request) (*Result, error) {
	if req.TeamSize < 1 || len(req.Members) != req.TeamSize {
		return nil, &GeneralError{
			Message: "Team size does not match the number of members.",
			Err:     fmt.Errorf("%w: team size %d with %d members", ErrInconsistentState, req.TeamSize, len(req.Members)),
		}
	}

	count, err := s.teams.CountByName(ctx, req.TeamName)
	if err != nil {
		s.logger.Error("failed to check team name", "team", req.TeamName, "error", err)
		return nil, &GeneralError{Message: "Failed to check team name availability.", Err: err}
	}
	if count > 0 {
		return nil, &FieldError{Path: TeamNameField, Message: "Team name already exists"}
	}

	undo := saga.New(s.logger)
	res, err := s.provision(ctx, req, undo)
	if err != nil {
		s.logger.Error("registration failed", "team", req.TeamName, "error", err)
		s.compensate(ctx, undo, err)
		return nil, err
	}

	s.logger.Info("team registered", "team", res.Team.Name, "teamId", res.Team.ID, "members", res.MemberCount)
	if s.listings != nil {
		if err := s.listings.Invalidate(ctx, leaderboard.ListingPath); err != nil {
			s.logger.Warn("failed to invalidate leaderboard listing", "team", res.Team.Name, "error", err)
		}
	}
	return res, nil
}

func (s *Service) provision(ctx context.Context, req Request, undo *saga.Log) (*Result, error) {
	accounts := make([]identity.Account, 0, len(req.Members))

	for i, m := range req.Members {
		email := strings.ToLower(m.Email)

		acct, err := s.accounts.CreateAccount(ctx, email, m.Password)
		if err != nil {
			s.logger.Error("failed to create account", "email", email, "error", err)
			if errors.Is(err, identity.ErrEmailExists) {
				return nil, &FieldError{
					Path:    MemberEmailField(i),
					Message: fmt.Sprintf("Email \"%s\" is already registered.", m.Email),
				}
			}
			return nil, &GeneralError{
				Message: fmt.Sprintf("Failed to register member %s. Please check details and try again.", m.Email),
				Err:     err,
			}
		}
		if acct == nil || acct.ID == uuid.Nil {
			return nil, &GeneralError{
				Message: fmt.Sprintf("User data missing for %s after creation attempt.", email),
				Err:     identity.ErrMissingUser,
			}
		}

		id := acct.ID
		undo.Push("accounts", acct.Email, func(ctx context.Context) error {
			return s.accounts.DeleteAccount(ctx, id)
		})
		accounts = append(accounts, *acct)
		s.logger.Info("account created", "email", acct.Email, "userId", acct.ID)
	}

	t := &team.Team{Name: req.TeamName}
	if err := s.teams.Create(ctx, t); err != nil {
		if errors.Is(err, team.ErrDuplicateTeamName) {
			return nil, &FieldError{Path: TeamNameField, Message: "Team name already exists"}
		}
		return nil, &GeneralError{
			Message: fmt.Sprintf("Failed to save team details to the database: %v", err),
			Err:     err,
		}
	}
	if s.rollbackTeam {
		teamID := t.ID
		undo.Push("team", t.Name, func(ctx context.Context) error {
			return s.teams.Delete(ctx, teamID)
		})
	}

	members, err := buildMembers(t.ID, req.Members, accounts)
	if err != nil {
		return nil, &GeneralError{Message: err.Error(), Err: err}
	}

	if err := s.teams.AddMembers(ctx, members); err != nil {
		return nil, &GeneralError{
			Message: fmt.Sprintf("Failed to save team member details to the database: %v", err),
			Err:     err,
		}
	}

	return &Result{
		Team:        t,
		MemberCount: len(members),
		Message:     fmt.Sprintf("Team \"%s\" and %d members registered successfully.", t.Name, len(members)),
	}, nil
}

// buildMembers pairs every requested member with its created account by
// case-folded email.
func buildMembers(teamID int64, requested []Member, accounts []identity.Account) ([]team.Member, error) {
	members := make([]team.Member, 0, len(requested))
	for _, m := range requested {
		var acct *identity.Account
		for i := range accounts {
			if strings.EqualFold(accounts[i].Email, m.Email) {
				acct = &accounts[i]
				break
			}
		}
		if acct == nil {
			return nil, fmt.Errorf("%w: no account found for %s", ErrInconsistentState, m.Email)
		}

		regNum, err := strconv.ParseInt(strings.TrimSpace(m.RegistrationNumber), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid registration number format for %s", ErrInconsistentState, m.Email)
		}

		members = append(members, team.Member{
			TeamID:             teamID,
			UserID:             acct.ID,
			Email:              acct.Email,
			RegistrationNumber: regNum,
		})
	}
	return members, nil
}

func (s *Service) compensate(ctx context.Context, undo *saga.Log, cause error) {
	if undo.Len() == 0 {
		s.logger.Info("no accounts needed cleanup")
		return
	}

	s.logger.Warn("cleaning up after failed registration", "actions", undo.Len(), "cause", cause)
	report := undo.Unwind(ctx)
	s.metrics.Compensations(report.Attempted()-report.Failed(), report.Failed())
}

func outcome(err error) string {
	var fieldErr *FieldError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &fieldErr):
		return "field_error"
	default:
		return "general_error"
	}
}
