package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahectf/ctfboard/internal/api/handler"
	"github.com/mahectf/ctfboard/internal/leaderboard"
)

type mockBoard struct {
	entries []leaderboard.Entry
	err     error
}

func (m *mockBoard) List(context.Context) ([]leaderboard.Entry, error) {
	return m.entries, m.err
}

func boardEntries() []leaderboard.Entry {
	return []leaderboard.Entry{
		{TeamID: 1, TeamName: "alpha", Score: 500, Rank: 1},
		{TeamID: 2, TeamName: "bravo", Score: 300, Rank: 2},
		{TeamID: 3, TeamName: "charlie", Score: 200, Rank: 3},
		{TeamID: 7, TeamName: "null pointers", Score: 100, Rank: 4},
	}
}

func TestLeaderboardList_Podium(t *testing.T) {
	t.Parallel()

	h := handler.NewLeaderboardHandler(&mockBoard{entries: boardEntries()}, &mockTeams{})

	req, w := makeChiRequest(http.MethodGet, "/api/leaderboard", nil, "/api/leaderboard", nil)
	h.List(w, asAccount(req, sampleAccount()))

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["showPodium"])
	assert.Len(t, data["podium"], 3)

	others := data["others"].([]interface{})
	require.Len(t, others, 1)
	row := others[0].(map[string]interface{})
	assert.Equal(t, "null pointers", row["teamName"])
	assert.Equal(t, true, row["current"])
}

func TestLeaderboardList_QueryAndSort(t *testing.T) {
	t.Parallel()

	h := handler.NewLeaderboardHandler(&mockBoard{entries: boardEntries()}, &mockTeams{getByUserIDFn: noTeam})

	req, w := makeChiRequest(http.MethodGet, "/api/leaderboard?q=AR&sort=name", nil, "/api/leaderboard", nil)
	h.List(w, asAccount(req, sampleAccount()))

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, false, data["showPodium"])
	others := data["others"].([]interface{})
	require.Len(t, others, 1)
	assert.Equal(t, "charlie", others[0].(map[string]interface{})["teamName"])
}

func TestLeaderboardList_InvalidSort(t *testing.T) {
	t.Parallel()

	h := handler.NewLeaderboardHandler(&mockBoard{}, &mockTeams{})

	req, w := makeChiRequest(http.MethodGet, "/api/leaderboard?sort=points", nil, "/api/leaderboard", nil)
	h.List(w, asAccount(req, sampleAccount()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_SORT", errorCode(t, w))
}

func TestLeaderboardList_RepositoryError(t *testing.T) {
	t.Parallel()

	h := handler.NewLeaderboardHandler(&mockBoard{err: errors.New("db down")}, &mockTeams{})

	req, w := makeChiRequest(http.MethodGet, "/api/leaderboard", nil, "/api/leaderboard", nil)
	h.List(w, asAccount(req, sampleAccount()))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
