package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env string `env:"APP_ENV" env-default:"development"`

	// APIBaseURL is the root of the backend API, e.g. "https://school.example.com/api".
	APIBaseURL string `env:"API_BASE_URL"`

	// RouterBase prefixes client-side route paths.
	RouterBase string `env:"BASE_URL" env-default:"/"`

	// SessionStorePath points at the sqlite file holding the persisted
	// session keys. Empty means in-memory only.
	SessionStorePath string `env:"SESSION_STORE_PATH"`

	BadgePollInterval time.Duration `env:"BADGE_POLL_INTERVAL" env-default:"15s"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad is Load for program entry points: missing required settings
// abort the process.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %v", err)
	}
	if cfg.APIBaseURL == "" {
		log.Fatal("API_BASE_URL is required")
	}
	return cfg
}
