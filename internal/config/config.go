package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// DSN renders the lib/pq connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

type Config struct {
	ServiceName string
	Env         string
	Addr        string

	DB        Database
	RedisAddr string

	// GatewaySecret is the shared secret for callback signature verification.
	// Required; it must never be defaulted, logged, or echoed.
	GatewaySecret string

	UploadDir     string
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

// Load reads configuration from the environment, after best-effort loading of
// a local .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName: getenvDefault("SERVICE_NAME", "backoffice"),
		Env:         getenvDefault("ENV", "dev"),
		Addr:        getenvDefault("ADDR", ":8080"),
		DB: Database{
			Host:     getenvDefault("DB_HOST", "localhost"),
			Port:     getenvDefault("DB_PORT", "5432"),
			User:     getenvDefault("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getenvDefault("DB_NAME", "backoffice"),
		},
		RedisAddr:     getenvDefault("REDIS_ADDR", "localhost:6379"),
		GatewaySecret: os.Getenv("GATEWAY_SECRET"),
		UploadDir:     getenvDefault("UPLOAD_DIR", "public/uploads"),
	}

	if cfg.GatewaySecret == "" {
		return nil, fmt.Errorf("config: GATEWAY_SECRET is required")
	}

	var err error
	if cfg.SessionTTL, err = durationDefault("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = durationDefault("SWEEP_INTERVAL", time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
