package flag_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahectf/ctfboard/internal/cache"
	"github.com/mahectf/ctfboard/internal/challenge"
	"github.com/mahectf/ctfboard/internal/flag"
)

type mockChallenges struct {
	getByIDFn    func(ctx context.Context, id int64) (*challenge.Challenge, error)
	submitFlagFn func(ctx context.Context, challengeID, teamID int64, userID uuid.UUID, flag string) (challenge.SubmitStatus, error)
	submitCalls  int
}

func (m *mockChallenges) ListByCategory(context.Context, int64, string) ([]challenge.Challenge, error) {
	return nil, nil
}

func (m *mockChallenges) GetByID(ctx context.Context, id int64) (*challenge.Challenge, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &challenge.Challenge{ID: id, Category: "web"}, nil
}

func (m *mockChallenges) CategoryStats(context.Context, int64) (map[string]challenge.Stats, error) {
	return nil, nil
}

func (m *mockChallenges) SubmitFlag(ctx context.Context, challengeID, teamID int64, userID uuid.UUID, f string) (challenge.SubmitStatus, error) {
	m.submitCalls++
	return m.submitFlagFn(ctx, challengeID, teamID, userID, f)
}

type recordingCache struct {
	invalidated []string
	err         error
}

func (c *recordingCache) Get(context.Context, string, string) (cache.Entry, error) {
	return cache.Entry{}, nil
}

func (c *recordingCache) Set(context.Context, string, string, uint64, []byte) (bool, error) {
	return true, nil
}

func (c *recordingCache) Invalidate(_ context.Context, paths ...string) error {
	c.invalidated = append(c.invalidated, paths...)
	return c.err
}

func (c *recordingCache) Close() error { return nil }

func statusFn(status challenge.SubmitStatus) func(context.Context, int64, int64, uuid.UUID, string) (challenge.SubmitStatus, error) {
	return func(context.Context, int64, int64, uuid.UUID, string) (challenge.SubmitStatus, error) {
		return status, nil
	}
}

func TestSubmit_EmptyFlag(t *testing.T) {
	repo := &mockChallenges{}
	svc := flag.NewService(repo, nil, nil, nil)

	res, err := svc.Submit(context.Background(), uuid.New(), 1, 1, "   ")

	require.NoError(t, err)
	assert.Equal(t, flag.Result{Success: false, Message: flag.MsgRequired}, res)
	assert.Zero(t, repo.submitCalls)
}

func TestSubmit_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  challenge.SubmitStatus
		want    flag.Result
		refresh bool
	}{
		{"success", challenge.StatusSuccess, flag.Result{Success: true, Message: "Correct flag!"}, true},
		{"already solved", challenge.StatusAlreadySolved, flag.Result{Message: "Challenge already solved by your team! Please refresh the page."}, false},
		{"wrong flag", challenge.StatusWrongFlag, flag.Result{Message: "Incorrect flag."}, false},
		{"not a member", "NOT_A_MEMBER", flag.Result{Message: "Something went wrong. Please try again."}, false},
		{"unknown", "CHALLENGE_NOT_FOUND", flag.Result{Message: "Something went wrong. Please try again."}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockChallenges{submitFlagFn: statusFn(tt.status)}
			listings := &recordingCache{}
			svc := flag.NewService(repo, listings, nil, nil)

			res, err := svc.Submit(context.Background(), uuid.New(), 7, 3, "flag{x}")

			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
			if tt.refresh {
				assert.ElementsMatch(t, []string{"/challenges/web", "/challenges", "/leaderboard"}, listings.invalidated)
			} else {
				assert.Empty(t, listings.invalidated)
			}
		})
	}
}

func TestSubmit_PassesArguments(t *testing.T) {
	userID := uuid.New()
	var gotChallenge, gotTeam int64
	var gotUser uuid.UUID
	var gotFlag string
	repo := &mockChallenges{
		submitFlagFn: func(_ context.Context, challengeID, teamID int64, uid uuid.UUID, f string) (challenge.SubmitStatus, error) {
			gotChallenge, gotTeam, gotUser, gotFlag = challengeID, teamID, uid, f
			return challenge.StatusWrongFlag, nil
		},
	}
	svc := flag.NewService(repo, nil, nil, nil)

	_, err := svc.Submit(context.Background(), userID, 11, 42, "flag{abc}")

	require.NoError(t, err)
	assert.Equal(t, int64(11), gotChallenge)
	assert.Equal(t, int64(42), gotTeam)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, "flag{abc}", gotFlag)
}

func TestSubmit_InvalidationFailureIsNotSurfaced(t *testing.T) {
	repo := &mockChallenges{submitFlagFn: statusFn(challenge.StatusSuccess)}
	listings := &recordingCache{err: errors.New("redis down")}
	svc := flag.NewService(repo, listings, nil, nil)

	res, err := svc.Submit(context.Background(), uuid.New(), 1, 1, "flag{x}")

	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestSubmit_TransportError(t *testing.T) {
	repo := &mockChallenges{
		submitFlagFn: func(context.Context, int64, int64, uuid.UUID, string) (challenge.SubmitStatus, error) {
			return "", errors.New("connection refused")
		},
	}
	svc := flag.NewService(repo, nil, nil, nil)

	_, err := svc.Submit(context.Background(), uuid.New(), 1, 1, "flag{x}")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSubmit_ChallengeNotFound(t *testing.T) {
	repo := &mockChallenges{
		getByIDFn: func(context.Context, int64) (*challenge.Challenge, error) {
			return nil, challenge.ErrNotFound
		},
	}
	svc := flag.NewService(repo, nil, nil, nil)

	_, err := svc.Submit(context.Background(), uuid.New(), 99, 1, "flag{x}")

	assert.ErrorIs(t, err, challenge.ErrNotFound)
	assert.Zero(t, repo.submitCalls)
}
