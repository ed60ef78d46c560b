package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Telemetry TelemetryConfig
}

type HTTPConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL           string
	RunMigrations bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type AuthConfig struct {
	APIKey string
}

type TelemetryConfig struct {
	OTLPEndpoint string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Enabled reports whether the response cache should be wired at all.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

func (t TelemetryConfig) Enabled() bool {
	return t.OTLPEndpoint != ""
}

// Load reads configuration from the environment, after loading a local .env
// file if one is present. Missing required settings fail startup.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			RunMigrations: getEnvBool("RUN_MIGRATIONS", false),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
			CacheTTL: getEnvDuration("CACHE_TTL", time.Minute),
		},
		Auth: AuthConfig{
			APIKey: os.Getenv("API_KEY"),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
	}

	if cfg.Database.URL == "" {
		url, err := databaseURLFromParts()
		if err != nil {
			return nil, err
		}
		cfg.Database.URL = url
	}

	if cfg.Auth.APIKey == "" {
		return nil, fmt.Errorf("API_KEY is required")
	}

	return cfg, nil
}

// databaseURLFromParts assembles a connection string from the discrete DB_*
// variables used by local compose setups.
func databaseURLFromParts() (string, error) {
	required := map[string]string{
		"DB_USER": os.Getenv("DB_USER"),
		"DB_PASS": os.Getenv("DB_PASS"),
		"DB_HOST": os.Getenv("DB_HOST"),
		"DB_PORT": os.Getenv("DB_PORT"),
		"DB_NAME": os.Getenv("DB_NAME"),
	}
	for name, value := range required {
		if value == "" {
			return "", fmt.Errorf("either DATABASE_URL or %s is required", name)
		}
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		required["DB_USER"], required["DB_PASS"],
		required["DB_HOST"], required["DB_PORT"], required["DB_NAME"],
	), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
