package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	c, err := load(env(nil))
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, DriverSQLite, c.StoreDriver)
	assert.Equal(t, 14*24*time.Hour, c.JWTTTL)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, 10, c.LeaderboardLimit)
	assert.Equal(t, "battleship_token", c.CookieName)
	assert.False(t, c.LogPretty)
	assert.False(t, c.Production())
}

func TestLoad_Overrides(t *testing.T) {
	c, err := load(env(map[string]string{
		"PORT":              "9000",
		"STORE_DRIVER":      "Memory",
		"LOG_PRETTY":        "true",
		"JWT_EXPIRES_DAYS":  "1",
		"REQUEST_TIMEOUT":   "2s",
		"LEADERBOARD_LIMIT": "25",
		"APP_ENV":           "production",
		"JWT_SECRET":        "s3cret",
	}))
	require.NoError(t, err)
	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, DriverMemory, c.StoreDriver)
	assert.True(t, c.LogPretty)
	assert.Equal(t, 24*time.Hour, c.JWTTTL)
	assert.Equal(t, 2*time.Second, c.RequestTimeout)
	assert.Equal(t, 25, c.LeaderboardLimit)
	assert.True(t, c.Production())
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"driver":        {"STORE_DRIVER": "postgres"},
		"pretty":        {"LOG_PRETTY": "maybe"},
		"days":          {"JWT_EXPIRES_DAYS": "soon"},
		"zero days":     {"JWT_EXPIRES_DAYS": "0"},
		"timeout":       {"REQUEST_TIMEOUT": "10"},
		"limit":         {"LEADERBOARD_LIMIT": "-1"},
		"prod secret":   {"APP_ENV": "production"},
		"limit not int": {"LEADERBOARD_LIMIT": "ten"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := load(env(vars))
			assert.Error(t, err)
		})
	}
}
