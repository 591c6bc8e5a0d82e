package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mahectf/ctfboard/internal/api/handler"
	"github.com/mahectf/ctfboard/internal/api/middleware"
	"github.com/mahectf/ctfboard/internal/cache"
	"github.com/mahectf/ctfboard/internal/challenge"
	"github.com/mahectf/ctfboard/internal/identity"
	"github.com/mahectf/ctfboard/internal/metrics"
)

// RouterDeps holds all dependencies needed by the router. Route groups whose
// dependencies are nil are not mounted.
type RouterDeps struct {
	DBPinger        handler.DBPinger
	IdentityChecker handler.IdentityChecker
	Version         string
	OpenAPISpec     []byte

	Verifier    identity.Verifier
	Accounts    handler.AccountService
	SiteURL     string
	Registrar   handler.Registrar
	Teams       handler.TeamReader
	Challenges  challenge.Repository
	Flags       handler.FlagSubmitter
	Leaderboard handler.LeaderboardLister
	Listings    cache.Listing

	OperatorKeyHash []byte

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	if deps.Metrics != nil {
		r.Use(middleware.Instrument(deps.Metrics))
	}

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.IdentityChecker, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		if deps.Accounts != nil {
			authHandler := handler.NewAuthHandler(deps.Accounts, deps.SiteURL)
			r.Route("/auth", func(r chi.Router) {
				r.Post("/sign-up", authHandler.SignUp)
				r.Post("/sign-in", authHandler.SignIn)
				r.Post("/sign-out", authHandler.SignOut)
				r.Post("/forgot-password", authHandler.ForgotPassword)
				if deps.Verifier != nil {
					r.With(middleware.Authenticate(deps.Verifier)).Put("/password", authHandler.UpdatePassword)
				}
			})
		}

		if deps.Registrar != nil {
			registrationHandler := handler.NewRegistrationHandler(deps.Registrar)
			r.Post("/teams/register", registrationHandler.Register)
		}

		if deps.Verifier == nil || deps.Teams == nil {
			return
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(deps.Verifier))

			teamHandler := handler.NewTeamHandler(deps.Teams)
			r.Get("/teams/me", teamHandler.Me)

			if deps.Challenges != nil {
				challengeHandler := handler.NewChallengeHandler(deps.Challenges, deps.Teams, deps.Listings)
				r.Get("/challenges", challengeHandler.Categories)
				r.Get("/challenges/{category}", challengeHandler.ListByCategory)
			}

			if deps.Flags != nil {
				flagHandler := handler.NewFlagHandler(deps.Flags, deps.Teams)
				r.Post("/flags", flagHandler.Submit)
			}

			if deps.Leaderboard != nil {
				leaderboardHandler := handler.NewLeaderboardHandler(deps.Leaderboard, deps.Teams)
				r.Get("/leaderboard", leaderboardHandler.List)
			}
		})
	})

	if len(deps.OperatorKeyHash) > 0 && deps.Listings != nil {
		revalidateHandler := handler.NewRevalidateHandler(deps.Listings)
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireOperatorKey(deps.OperatorKeyHash))
			r.Post("/revalidate", revalidateHandler.Revalidate)
		})
	}

	return r
}
