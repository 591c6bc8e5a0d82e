package handler

import (
	"context"
	"net/http"

	"github.com/mahectf/ctfboard/internal/api/middleware"
	"github.com/mahectf/ctfboard/internal/api/response"
)

// DBPinger checks database connectivity.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IdentityChecker checks that the identity service is reachable.
type IdentityChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	db       DBPinger
	identity IdentityChecker
	version  string
}

// NewHealthHandler creates a new HealthHandler. Either checker may be nil.
func NewHealthHandler(db DBPinger, identity IdentityChecker, version string) *HealthHandler {
	return &HealthHandler{
		db:       db,
		identity: identity,
		version:  version,
	}
}

type dependencyStatus struct {
	Connected bool    `json:"connected"`
	Error     *string `json:"error,omitempty"`
}

type healthData struct {
	Status   string           `json:"status"`
	Version  string           `json:"version"`
	Database dependencyStatus `json:"database"`
	Identity dependencyStatus `json:"identity"`
}

// ServeHTTP handles the health check request. It always answers 200; a
// failing dependency only degrades the reported status.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	data := healthData{
		Status:  "healthy",
		Version: h.version,
	}

	if h.db != nil {
		data.Database = check(r.Context(), h.db.Ping)
	}
	if h.identity != nil {
		data.Identity = check(r.Context(), h.identity.Health)
	}
	if !data.Database.Connected || !data.Identity.Connected {
		data.Status = "degraded"
	}

	response.Success(w, http.StatusOK, data, requestID)
}

func check(ctx context.Context, fn func(context.Context) error) dependencyStatus {
	if err := fn(ctx); err != nil {
		msg := err.Error()
		return dependencyStatus{Connected: false, Error: &msg}
	}
	return dependencyStatus{Connected: true}
}
