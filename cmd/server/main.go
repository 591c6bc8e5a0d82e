package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	apispec "github.com/mahectf/ctfboard/api"
	"github.com/mahectf/ctfboard/internal/api"
	"github.com/mahectf/ctfboard/internal/cache"
	"github.com/mahectf/ctfboard/internal/challenge"
	"github.com/mahectf/ctfboard/internal/config"
	"github.com/mahectf/ctfboard/internal/database"
	"github.com/mahectf/ctfboard/internal/flag"
	"github.com/mahectf/ctfboard/internal/identity"
	"github.com/mahectf/ctfboard/internal/leaderboard"
	"github.com/mahectf/ctfboard/internal/metrics"
	"github.com/mahectf/ctfboard/internal/refresher"
	"github.com/mahectf/ctfboard/internal/registration"
	"github.com/mahectf/ctfboard/internal/team"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	idp, err := identity.NewClient(cfg.IdentityURL, cfg.IdentityAnonKey, cfg.IdentityServiceKey,
		identity.WithTimeout(cfg.IdentityTimeout))
	if err != nil {
		slog.Error("failed to create identity client", "error", err)
		os.Exit(1)
	}

	var verifier identity.Verifier = identity.NewRemoteVerifier(idp)
	if cfg.JWTSecret != "" {
		verifier = identity.NewJWTVerifier(cfg.JWTSecret)
	}

	listings, err := initListingCache(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize listing cache", "error", err)
		os.Exit(1)
	}
	defer listings.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	logger := slog.Default()
	teamRepo := team.NewRepository(db.Pool())
	challengeRepo := challenge.NewRepository(db.Pool())
	board := leaderboard.NewCachedRepository(leaderboard.NewRepository(db.Pool()), listings, logger)

	registrar := registration.NewService(teamRepo, idp.Admin(),
		registration.WithLogger(logger),
		registration.WithMetrics(m),
		registration.WithTeamRollback(cfg.RollbackOrphanTeam),
		registration.WithListings(listings),
	)
	flags := flag.NewService(challengeRepo, listings, logger, m)

	router := api.NewRouter(api.RouterDeps{
		DBPinger:        db,
		IdentityChecker: idp,
		Version:         cfg.Version,
		OpenAPISpec:     apispec.OpenAPISpec,
		Verifier:        verifier,
		Accounts:        idp,
		SiteURL:         cfg.SiteURL,
		Registrar:       registrar,
		Teams:           teamRepo,
		Challenges:      challengeRepo,
		Flags:           flags,
		Leaderboard:     board,
		Listings:        listings,
		OperatorKeyHash: []byte(cfg.OperatorKeyHash),
		Metrics:         m,
		Gatherer:        reg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	if cfg.LeaderboardRefreshInterval > 0 {
		r := refresher.New(leaderboard.ListingPath, refresher.LoaderFunc(func(ctx context.Context) error {
			_, err := board.Refresh(ctx)
			return err
		}), cfg.LeaderboardRefreshInterval)
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Start(ctx)
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting ctfboard server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		stop()
		wg.Wait()
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	wg.Wait()

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

func initListingCache(ctx context.Context, cfg *config.Config) (cache.Listing, error) {
	if cfg.RedisAddr == "" {
		slog.Info("using in-memory listing cache", "ttl", cfg.CacheTTL.String())
		return cache.NewMemory(cfg.CacheTTL), nil
	}
	c, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}
	slog.Info("using redis listing cache", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL.String())
	return c, nil
}
