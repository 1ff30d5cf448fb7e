package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		Port         string
		Host         string
		DeployDomain string
		Debug        bool
	}
	Auth struct {
		SessionSecret string
		AdminUsername string
		AdminPassword string
	}
	Database struct {
		DSN      string
		RedisURI string
	}
	Sentry struct {
		DSN string
	}
	Feedback struct {
		// DedupWindow is the trailing period during which a repeat
		// person+email submission is rejected. Zero disables the guard.
		DedupWindow time.Duration
		// Units are the gym locations collaborators can belong to.
		Units []string
	}
}

func Load() (*Config, error) {

	envStack := os.Getenv("ENV_STACK")

	if envStack != "" {
		filePath := "./env-files/.env." + envStack
		err := godotenv.Load(filePath)
		if err != nil {
			fmt.Printf("Error loading .env file: %s\n", err)
		}
	}

	c := &Config{}

	// Server configuration with environment variable support
	c.Server.Port = os.Getenv("SERVER_PORT")
	if c.Server.Port == "" {
		c.Server.Port = "1926"
	}

	c.Server.Host = os.Getenv("SERVER_HOST")
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}

	c.Server.DeployDomain = os.Getenv("DEPLOY_DOMAIN")
	if c.Server.DeployDomain == "" {
		c.Server.DeployDomain = c.Server.Host + ":" + c.Server.Port
	}

	c.Server.Debug = os.Getenv("ENABLE_DEBUG_ENDPOINTS") == "true"

	c.Auth.SessionSecret = os.Getenv("SESSION_SECRET")

	c.Auth.AdminUsername = os.Getenv("ADMIN_USERNAME")
	if c.Auth.AdminUsername == "" {
		c.Auth.AdminUsername = "admin"
	}
	c.Auth.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	if c.Auth.AdminPassword == "" {
		c.Auth.AdminPassword = "admin"
	}

	c.Database.DSN = os.Getenv("DATABASE_DSN")
	c.Database.RedisURI = os.Getenv("REDIS_URI")

	c.Sentry.DSN = os.Getenv("SENTRY_DSN")

	// Feedback policy. The dedup window is product policy, not an invariant,
	// so it stays configurable.
	dedupDays := 7
	if raw := os.Getenv("DEDUP_WINDOW_DAYS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c, fmt.Errorf("DEDUP_WINDOW_DAYS must be a non-negative integer, got: %s", raw)
		}
		dedupDays = parsed
	}
	c.Feedback.DedupWindow = time.Duration(dedupDays) * 24 * time.Hour

	units := os.Getenv("GYM_UNITS")
	if units == "" {
		units = "Unidade Centro,Unidade Perimetral"
	}
	for _, unit := range strings.Split(units, ",") {
		unit = strings.TrimSpace(unit)
		if unit != "" {
			c.Feedback.Units = append(c.Feedback.Units, unit)
		}
	}

	return c, nil
}
