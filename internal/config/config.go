package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"VERSION" default:"dev"`

	DatabaseURL    string `envconfig:"DATABASE_URL" required:"true"`
	MigrateOnStart bool   `envconfig:"MIGRATE_ON_START" default:"false"`

	IdentityURL        string        `envconfig:"IDENTITY_URL" required:"true"`
	IdentityAnonKey    string        `envconfig:"IDENTITY_ANON_KEY" default:""`
	IdentityServiceKey string        `envconfig:"IDENTITY_SERVICE_KEY" required:"true"`
	IdentityTimeout    time.Duration `envconfig:"IDENTITY_TIMEOUT" default:"15s"`
	JWTSecret          string        `envconfig:"JWT_SECRET" default:""`
	SiteURL            string        `envconfig:"SITE_URL" default:"http://localhost:3000"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"60s"`

	LeaderboardRefreshInterval time.Duration `envconfig:"LEADERBOARD_REFRESH_INTERVAL" default:"30s"`

	// OperatorKeyHash is a bcrypt hash; an empty value disables the /admin routes.
	OperatorKeyHash string `envconfig:"OPERATOR_KEY_HASH" default:""`

	// RollbackOrphanTeam makes registration delete the team row when membership
	// insertion fails. Off by default: the orphaned row is kept for operators.
	RollbackOrphanTeam bool `envconfig:"ROLLBACK_ORPHAN_TEAM" default:"false"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
