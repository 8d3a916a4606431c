package config

import (
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Server struct {

	// Addr is the listen address of the HTTP server
	Addr string `env:"ADDR" env-default:":8080"`

	// Timezone is the IANA name of the campus timezone; every
	// classification runs in it
	Timezone string `env:"TIMEZONE" env-default:"Europe/Rome"`

	// SoonWindowMinutes is how close to the end of its last covering
	// lesson a room must be to count as available soon
	SoonWindowMinutes int `env:"SOON_WINDOW_MINUTES" env-default:"30"`

	// RulesPath points at a JSON opening-hours table; empty means the
	// built-in table
	RulesPath string `env:"OPENING_RULES_PATH" env-default:""`

	// RegistryPath is the CSV file listing known rooms
	RegistryPath string `env:"ROOMS_REGISTRY_PATH" env-default:"rooms.csv"`

	// RedisAddr enables the shared calendar cache; empty means a
	// per-process in-memory cache
	RedisAddr     string `env:"REDIS_ADDR" env-default:""`
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`

	// UpstreamTimeoutSeconds bounds every call to the scheduling platform
	UpstreamTimeoutSeconds int `env:"UPSTREAM_TIMEOUT_SECONDS" env-default:"30"`

	// AllowedOrigins is handed to the CORS middleware
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-default:"*"`
}

func NewServerConfig() (*Server, error) {
	// A local .env file is a convenience, not a requirement.
	_ = godotenv.Load()

	var cfg Server
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
