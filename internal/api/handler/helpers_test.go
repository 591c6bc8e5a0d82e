package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mahectf/ctfboard/internal/api/middleware"
	"github.com/mahectf/ctfboard/internal/identity"
	"github.com/mahectf/ctfboard/internal/team"
)

func makeChiRequest(method, path string, body []byte, routePattern string, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		rctx.RoutePatterns = append(rctx.RoutePatterns, routePattern)
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req, w
}

// asAccount attaches an authenticated account to the request, as the
// Authenticate middleware would.
func asAccount(req *http.Request, account *identity.Account) *http.Request {
	return req.WithContext(middleware.WithAccount(req.Context(), account))
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err, "failed to parse response body")
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := parseEnvelope(t, w)
	errObj, ok := env["error"].(map[string]interface{})
	require.True(t, ok, "expected an error object, got %v", env)
	return errObj["code"].(string)
}

// --- Mock Team Repository ---

type mockTeams struct {
	getByUserIDFn func(ctx context.Context, userID uuid.UUID) (*team.Team, error)
	statsFn       func(ctx context.Context, teamID int64) (*team.Stats, error)
}

func (m *mockTeams) GetByUserID(ctx context.Context, userID uuid.UUID) (*team.Team, error) {
	if m.getByUserIDFn != nil {
		return m.getByUserIDFn(ctx, userID)
	}
	return &team.Team{ID: 7, Name: "null pointers"}, nil
}

func (m *mockTeams) Stats(ctx context.Context, teamID int64) (*team.Stats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, teamID)
	}
	return nil, team.ErrTeamNotFound
}

func noTeam(context.Context, uuid.UUID) (*team.Team, error) {
	return nil, team.ErrTeamNotFound
}

func sampleAccount() *identity.Account {
	return &identity.Account{ID: uuid.New(), Email: "ada@example.com"}
}
