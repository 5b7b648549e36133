package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Username string
	Password string
}

func (c SMTPConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// Config is built once at startup and passed into constructors; no
// component reads environment variables on its own.
type Config struct {
	Env           string
	HTTPAddr      string
	MySQLDSN      string
	RedisAddr     string
	JWTSecret     string
	TokenTTL      time.Duration
	NotifyTimeout time.Duration
	MigrationsDir string
	SMTP          SMTPConfig
}

func Load() (Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := Config{
		Env:           getEnv("APP_ENV", "dev"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		MySQLDSN:      getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/storefront?parseTime=true&multiStatements=true"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnv("SMTP_PORT", "1025"),
			From:     getEnv("SMTP_FROM", "orders@vamazon.test"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.NotifyTimeout, err = getDuration("NOTIFY_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
