package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mahectf/ctfboard/internal/api/middleware"
	"github.com/mahectf/ctfboard/internal/api/response"
	"github.com/mahectf/ctfboard/internal/cache"
	"github.com/mahectf/ctfboard/internal/challenge"
)

type categoryResponse struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Solved      int    `json:"solved"`
	Total       int    `json:"total"`
}

type linkResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type challengeResponse struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Difficulty  string         `json:"difficulty"`
	Points      int            `json:"points"`
	Category    string         `json:"category"`
	Solved      bool           `json:"solved"`
	SolvedAt    *string        `json:"solvedAt"`
	Links       []linkResponse `json:"links"`
	Hints       []string       `json:"hints"`
}

type categoryListingResponse struct {
	Category categoryResponse    `json:"category"`
	Unsolved []challengeResponse `json:"unsolved"`
	Solved   []challengeResponse `json:"solved"`
}

func toChallengeResponse(c *challenge.Challenge) challengeResponse {
	resp := challengeResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Difficulty:  string(c.Difficulty),
		Points:      c.Points,
		Category:    c.Category,
		Solved:      c.Solved,
		Links:       make([]linkResponse, 0, len(c.Links)),
		Hints:       c.Hints,
	}
	if c.SolvedAt != nil {
		s := formatTime(*c.SolvedAt)
		resp.SolvedAt = &s
	}
	for _, l := range c.Links {
		resp.Links = append(resp.Links, linkResponse(l))
	}
	if resp.Hints == nil {
		resp.Hints = []string{}
	}
	return resp
}

// ChallengeHandler serves the challenge listings of the caller's team.
type ChallengeHandler struct {
	challenges challenge.Repository
	teams      TeamLookup
	listings   cache.Listing
}

// NewChallengeHandler creates a new ChallengeHandler. listings may be nil.
func NewChallengeHandler(challenges challenge.Repository, teams TeamLookup, listings cache.Listing) *ChallengeHandler {
	return &ChallengeHandler{challenges: challenges, teams: teams, listings: listings}
}

// Categories handles GET /api/challenges.
func (h *ChallengeHandler) Categories(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	t, ok := resolveTeam(w, r, h.teams)
	if !ok {
		return
	}

	data, err := cachedListing(r.Context(), h.listings, challenge.OverviewPath, teamVariant(t.ID), func(ctx context.Context) (any, error) {
		stats, err := h.challenges.CategoryStats(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		items := make([]categoryResponse, 0, len(challenge.Categories))
		for _, c := range challenge.Categories {
			s := stats[c.Name]
			items = append(items, categoryResponse{
				Name:        c.Name,
				Label:       c.Label,
				Title:       c.Title,
				Description: c.Description,
				Solved:      s.Solved,
				Total:       s.Total,
			})
		}
		return items, nil
	})
	if err != nil {
		slog.Error("failed to list categories", "error", err, "teamId", t.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load challenges", requestID)
		return
	}

	response.Cached(w, http.StatusOK, data, requestID)
}

// ListByCategory handles GET /api/challenges/{category}.
func (h *ChallengeHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	cat, found := challenge.LookupCategory(chi.URLParam(r, "category"))
	if !found {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Category not found", requestID)
		return
	}

	t, ok := resolveTeam(w, r, h.teams)
	if !ok {
		return
	}

	data, err := cachedListing(r.Context(), h.listings, challenge.ListingPath(cat.Name), teamVariant(t.ID), func(ctx context.Context) (any, error) {
		list, err := h.challenges.ListByCategory(ctx, t.ID, cat.Name)
		if err != nil {
			return nil, err
		}
		resp := categoryListingResponse{
			Category: categoryResponse{
				Name:        cat.Name,
				Label:       cat.Label,
				Title:       cat.Title,
				Description: cat.Description,
				Total:       len(list),
			},
			Unsolved: []challengeResponse{},
			Solved:   []challengeResponse{},
		}
		for i := range list {
			c := toChallengeResponse(&list[i])
			if c.Solved {
				resp.Solved = append(resp.Solved, c)
				resp.Category.Solved++
			} else {
				resp.Unsolved = append(resp.Unsolved, c)
			}
		}
		return resp, nil
	})
	if err != nil {
		slog.Error("failed to list challenges", "error", err, "category", cat.Name, "teamId", t.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load challenges", requestID)
		return
	}

	response.Cached(w, http.StatusOK, data, requestID)
}
