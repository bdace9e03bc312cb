// internal/config/config.go
//
// Runtime configuration read from the environment (after godotenv has loaded
// any .env file). Every setting has a development default; Load only fails on
// values that are present but malformed.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

const defaultJWTSecret = "dev_secret_change_me"

type Config struct {
	Port             string
	DBPath           string
	StoreDriver      string
	LogLevel         string
	LogPretty        bool
	JWTSecret        string
	JWTTTL           time.Duration
	CookieName       string
	ClientOrigin     string
	Env              string
	RequestTimeout   time.Duration
	LeaderboardLimit int
}

// Production reports whether APP_ENV is "production". Cookies are marked
// Secure and SameSite=None there.
func (c Config) Production() bool { return c.Env == "production" }

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	get := func(k, def string) string {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
		return def
	}

	c := Config{
		Port:         get("PORT", "8080"),
		DBPath:       get("DB_PATH", "./data/battleship.db"),
		StoreDriver:  strings.ToLower(get("STORE_DRIVER", DriverSQLite)),
		LogLevel:     get("LOG_LEVEL", "info"),
		JWTSecret:    get("JWT_SECRET", defaultJWTSecret),
		CookieName:   get("COOKIE_NAME", "battleship_token"),
		ClientOrigin: get("CLIENT_ORIGIN", "http://localhost:5173"),
		Env:          get("APP_ENV", "development"),
	}

	var err error
	if c.LogPretty, err = strconv.ParseBool(get("LOG_PRETTY", "false")); err != nil {
		return Config{}, errors.Wrap(err, "LOG_PRETTY")
	}

	days, err := strconv.Atoi(get("JWT_EXPIRES_DAYS", "14"))
	if err != nil {
		return Config{}, errors.Wrap(err, "JWT_EXPIRES_DAYS")
	}
	if days <= 0 {
		return Config{}, errors.Newf("JWT_EXPIRES_DAYS must be positive, got %d", days)
	}
	c.JWTTTL = time.Duration(days) * 24 * time.Hour

	if c.RequestTimeout, err = time.ParseDuration(get("REQUEST_TIMEOUT", "10s")); err != nil {
		return Config{}, errors.Wrap(err, "REQUEST_TIMEOUT")
	}
	if c.RequestTimeout <= 0 {
		return Config{}, errors.Newf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}

	if c.LeaderboardLimit, err = strconv.Atoi(get("LEADERBOARD_LIMIT", "10")); err != nil {
		return Config{}, errors.Wrap(err, "LEADERBOARD_LIMIT")
	}
	if c.LeaderboardLimit <= 0 {
		return Config{}, errors.Newf("LEADERBOARD_LIMIT must be positive, got %d", c.LeaderboardLimit)
	}

	switch c.StoreDriver {
	case DriverSQLite, DriverMemory:
	default:
		return Config{}, errors.Newf("STORE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverMemory, c.StoreDriver)
	}

	if c.Production() && c.JWTSecret == defaultJWTSecret {
		return Config{}, errors.New("JWT_SECRET must be set in production")
	}
	return c, nil
}
