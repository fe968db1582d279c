package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "bid-service")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "8083", cfg.HTTPPort)
	assert.Equal(t, "9099", cfg.MetricsPort)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"admin"}, cfg.AdminUsernames)
	assert.Equal(t, 10, cfg.DBMaxOpenConns)
	assert.Equal(t, 5, cfg.DBMaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.DBConnMaxIdleTime)
	assert.Equal(t, StakeConfig{
		AmountLeague: 50, AmountSemi: 100, AmountFinal: 200,
		LimitLeague: 30, LimitSemi: 2, LimitFinal: 1,
	}, cfg.Stakes)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "live-service")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("BID_AMOUNT_SEMI", "150")
	t.Setenv("BID_LIMIT_FINAL", "3")
	t.Setenv("ADMIN_USERNAMES", " Root , ops,,")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("SEED_FIXTURES", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "8084", cfg.HTTPPort)
	assert.Equal(t, int64(150), cfg.Stakes.AmountSemi)
	assert.Equal(t, 3, cfg.Stakes.LimitFinal)
	assert.Equal(t, []string{"root", "ops"}, cfg.AdminUsernames)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.SeedFixtures)
	assert.True(t, cfg.IsAdminUsername("ROOT"))
	assert.False(t, cfg.IsAdminUsername("guest"))
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"BID_AMOUNT_LEAGUE": "fifty",
		"BID_LIMIT_SEMI":    "2.5",
		"TOKEN_TTL":         "a week",
		"SEED_FIXTURES":     "maybe",
		"DB_DRIVER":         "mysql",
		"DB_MAX_OPEN_CONNS": "many",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
