package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mahectf/ctfboard/internal/api/middleware"
	"github.com/mahectf/ctfboard/internal/api/response"
	"github.com/mahectf/ctfboard/internal/api/validation"
	"github.com/mahectf/ctfboard/internal/cache"
)

type revalidateRequest struct {
	Paths []string `json:"paths"`
}

type revalidateResponse struct {
	Revalidated []string `json:"revalidated"`
}

// RevalidateHandler lets operators mark listing pages stale, e.g. after
// editing challenges directly in the database.
type RevalidateHandler struct {
	listings cache.Listing
}

// NewRevalidateHandler creates a new RevalidateHandler.
func NewRevalidateHandler(listings cache.Listing) *RevalidateHandler {
	return &RevalidateHandler{listings: listings}
}

// Revalidate handles POST /admin/revalidate.
func (h *RevalidateHandler) Revalidate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	var req revalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if fieldErrors := validation.ValidateRevalidatePaths(req.Paths); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if err := h.listings.Invalidate(r.Context(), req.Paths...); err != nil {
		slog.Error("failed to revalidate listings", "error", err, "paths", req.Paths)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to revalidate listings", requestID)
		return
	}

	slog.Info("listings revalidated", "paths", req.Paths, "requestId", requestID)
	response.Success(w, http.StatusOK, revalidateResponse{Revalidated: req.Paths}, requestID)
}
