package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mahectf/ctfboard/internal/api/middleware"
	"github.com/mahectf/ctfboard/internal/api/response"
	"github.com/mahectf/ctfboard/internal/api/validation"
	"github.com/mahectf/ctfboard/internal/registration"
)

// Registrar provisions a team with its member accounts.
type Registrar interface {
	Register(ctx context.Context, req registration.Request) (*registration.Result, error)
}

type registrationMember struct {
	Email              string `json:"email"`
	Password           string `json:"password"`
	ConfirmPassword    string `json:"confirmPassword"`
	RegistrationNumber string `json:"registrationNumber"`
}

type registrationRequest struct {
	TeamName string               `json:"teamName"`
	TeamSize string               `json:"teamSize"`
	Members  []registrationMember `json:"members"`
}

// RegistrationHandler handles team sign-up.
type RegistrationHandler struct {
	registrar Registrar
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(registrar Registrar) *RegistrationHandler {
	return &RegistrationHandler{registrar: registrar}
}

// Register handles POST /api/teams/register. Workflow failures carry the
// full ActionResult in error.details, the same shape a success returns in data.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	vreq := validation.RegistrationRequest{TeamName: req.TeamName, TeamSize: req.TeamSize}
	for _, m := range req.Members {
		vreq.Members = append(vreq.Members, validation.RegistrationMember(m))
	}
	if fieldErrors := validation.ValidateRegistrationRequest(vreq); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", validation.ToMap(fieldErrors), requestID)
		return
	}

	size, _ := strconv.Atoi(req.TeamSize)
	in := registration.Request{
		TeamName: strings.TrimSpace(req.TeamName),
		TeamSize: size,
		Members:  make([]registration.Member, 0, len(req.Members)),
	}
	for _, m := range req.Members {
		in.Members = append(in.Members, registration.Member{
			Email:              strings.TrimSpace(m.Email),
			Password:           m.Password,
			ConfirmPassword:    m.ConfirmPassword,
			RegistrationNumber: strings.TrimSpace(m.RegistrationNumber),
		})
	}

	res, err := h.registrar.Register(r.Context(), in)
	result := registration.NewActionResult(res, err)
	if err == nil {
		response.Success(w, http.StatusCreated, result, requestID)
		return
	}

	var fieldErr *registration.FieldError
	if errors.As(err, &fieldErr) {
		response.ErrWithDetails(w, http.StatusConflict, "CONFLICT", fieldErr.Message, result, requestID)
		return
	}

	slog.Error("team registration failed", "error", err, "team", in.TeamName, "requestId", requestID)
	response.ErrWithDetails(w, http.StatusInternalServerError, "REGISTRATION_FAILED", result.Errors[registration.GeneralField], result, requestID)
}
