package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string
	OpsAddr     string
	Location    *time.Location
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string
	Release     string
	BotToken    string // пусто: бот не запускается

	// AttendanceWindowDays is the trailing window shown on the parent dashboard.
	AttendanceWindowDays int
}

func Load() (*Config, error) {
	tz := getenv("TZ", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	window, err := parsePositiveInt(getenv("ATTENDANCE_WINDOW_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("ATTENDANCE_WINDOW_DAYS: %w", err)
	}

	cfg := &Config{
		DatabaseURL:          mustEnv("DATABASE_URL"),
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		OpsAddr:              getenv("OPS_ADDR", ":9090"),
		Location:             loc,
		LogLevel:             getenv("LOG_LEVEL", "info"),
		Env:                  getenv("ENV", "dev"),
		SentryDSN:            os.Getenv("SENTRY_DSN"),
		Release:              getenv("RELEASE", "dev"),
		BotToken:             strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		AttendanceWindowDays: window,
	}
	return cfg, nil
}

func (c *Config) IsProd() bool { return strings.EqualFold(c.Env, "prod") }

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}
